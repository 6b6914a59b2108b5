package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"flighttrack/internal/models"
	"flighttrack/internal/storage/interfaces"
)

// SQLiteStore keeps both stores in one SQLite file. Timestamps are stored as
// UTC unix nanoseconds so ordering is numeric. Archived paths are stored as
// compressed JSON blobs.
type SQLiteStore struct {
	db         *sql.DB
	compressor interfaces.CompressorInterface
}

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(path string, compressor interfaces.CompressorInterface) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps writers from racing on the file lock.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := createSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLiteStore{db: db, compressor: compressor}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func createSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS position_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		flight_id TEXT NOT NULL,
		latitude REAL NOT NULL,
		longitude REAL NOT NULL,
		altitude INTEGER NOT NULL DEFAULT 0,
		ts INTEGER NOT NULL,
		status TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_position_reports_flight_ts ON position_reports(flight_id, ts);

	CREATE TABLE IF NOT EXISTS flight_logs (
		id TEXT PRIMARY KEY,
		flight_id TEXT NOT NULL,
		departure_time INTEGER NOT NULL,
		arrival_time INTEGER NOT NULL,
		logged_at INTEGER NOT NULL,
		path BLOB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_flight_logs_flight ON flight_logs(flight_id, logged_at);
	`
	_, err := db.Exec(schema)
	return err
}

func toNanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func (s *SQLiteStore) Append(ctx context.Context, report *models.PositionReport) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO position_reports (flight_id, latitude, longitude, altitude, ts, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, report.FlightID, report.Latitude, report.Longitude, report.Altitude, toNanos(report.Timestamp), report.Status)
	if err != nil {
		return storageErr("insert position report", err)
	}
	return nil
}

func (s *SQLiteStore) Latest(ctx context.Context, flightID string, atOrBefore *time.Time) (*models.PositionReport, error) {
	query := `
		SELECT flight_id, latitude, longitude, altitude, ts, status
		FROM position_reports
		WHERE flight_id = ?`
	args := []interface{}{flightID}
	if atOrBefore != nil {
		query += ` AND ts <= ?`
		args = append(args, toNanos(*atOrBefore))
	}
	query += ` ORDER BY ts DESC, id DESC LIMIT 1`

	var r models.PositionReport
	var ts int64
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&r.FlightID, &r.Latitude, &r.Longitude, &r.Altitude, &ts, &r.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("query latest position", err)
	}
	r.Timestamp = fromNanos(ts)
	return &r, nil
}

func (s *SQLiteStore) AllFor(ctx context.Context, flightID string) ([]*models.PositionReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT flight_id, latitude, longitude, altitude, ts, status
		FROM position_reports
		WHERE flight_id = ?
		ORDER BY ts ASC, id ASC
	`, flightID)
	if err != nil {
		return nil, storageErr("query positions", err)
	}
	defer rows.Close()

	var reports []*models.PositionReport
	for rows.Next() {
		var r models.PositionReport
		var ts int64
		if err := rows.Scan(&r.FlightID, &r.Latitude, &r.Longitude, &r.Altitude, &ts, &r.Status); err != nil {
			return nil, storageErr("scan position", err)
		}
		r.Timestamp = fromNanos(ts)
		reports = append(reports, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate positions", err)
	}
	return reports, nil
}

func (s *SQLiteStore) Clear(ctx context.Context, flightID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM position_reports WHERE flight_id = ?`, flightID)
	if err != nil {
		return storageErr("delete positions", err)
	}
	return nil
}

func (s *SQLiteStore) Insert(ctx context.Context, flight *models.ArchivedFlight) error {
	pathJSON, err := json.Marshal(flight.Path)
	if err != nil {
		return storageErr("marshal path", err)
	}
	blob, err := s.compressor.Compress(pathJSON)
	if err != nil {
		return storageErr("compress path", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO flight_logs (id, flight_id, departure_time, arrival_time, logged_at, path)
		VALUES (?, ?, ?, ?, ?, ?)
	`, flight.ID, flight.FlightID, toNanos(flight.DepartureTime), toNanos(flight.ArrivalTime), toNanos(flight.LoggedAt), blob)
	if err != nil {
		return storageErr("insert flight log", err)
	}
	return nil
}

func (s *SQLiteStore) FindLatest(ctx context.Context, flightID string) (*models.ArchivedFlight, error) {
	var a models.ArchivedFlight
	var departure, arrival, loggedAt int64
	var blob []byte
	err := s.db.QueryRowContext(ctx, `
		SELECT id, flight_id, departure_time, arrival_time, logged_at, path
		FROM flight_logs
		WHERE flight_id = ?
		ORDER BY logged_at DESC, rowid DESC
		LIMIT 1
	`, flightID).Scan(&a.ID, &a.FlightID, &departure, &arrival, &loggedAt, &blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("query flight log", err)
	}

	pathJSON, err := s.compressor.Decompress(blob)
	if err != nil {
		return nil, storageErr("decompress path", err)
	}
	if err := json.Unmarshal(pathJSON, &a.Path); err != nil {
		return nil, storageErr("unmarshal path", err)
	}
	a.DepartureTime = fromNanos(departure)
	a.ArrivalTime = fromNanos(arrival)
	a.LoggedAt = fromNanos(loggedAt)
	return &a, nil
}
