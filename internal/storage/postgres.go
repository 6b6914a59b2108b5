package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"flighttrack/internal/models"
	"flighttrack/internal/structures"
)

// PostgresStore keeps both stores in PostgreSQL. TIMESTAMPTZ has microsecond precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres opens a connection pool and creates the schema.
func OpenPostgres(ctx context.Context, cfg structures.PostgresConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.MaxConnLifetime = time.Hour
	poolCfg.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.CreateSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) CreateSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS position_reports (
		id          BIGSERIAL PRIMARY KEY,
		flight_id   TEXT NOT NULL,
		latitude    DOUBLE PRECISION NOT NULL,
		longitude   DOUBLE PRECISION NOT NULL,
		altitude    INTEGER NOT NULL DEFAULT 0,
		ts          TIMESTAMPTZ NOT NULL,
		status      TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_position_reports_flight_ts ON position_reports(flight_id, ts DESC, id DESC);

	CREATE TABLE IF NOT EXISTS flight_logs (
		id              TEXT PRIMARY KEY,
		seq             BIGSERIAL,
		flight_id       TEXT NOT NULL,
		departure_time  TIMESTAMPTZ NOT NULL,
		arrival_time    TIMESTAMPTZ NOT NULL,
		logged_at       TIMESTAMPTZ NOT NULL,
		path            JSONB NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_flight_logs_flight ON flight_logs(flight_id, logged_at DESC);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

func (s *PostgresStore) Append(ctx context.Context, report *models.PositionReport) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO position_reports (flight_id, latitude, longitude, altitude, ts, status)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, report.FlightID, report.Latitude, report.Longitude, report.Altitude, report.Timestamp.UTC(), report.Status)
	if err != nil {
		return storageErr("insert position report", err)
	}
	return nil
}

func (s *PostgresStore) Latest(ctx context.Context, flightID string, atOrBefore *time.Time) (*models.PositionReport, error) {
	var r models.PositionReport
	err := s.pool.QueryRow(ctx, `
		SELECT flight_id, latitude, longitude, altitude, ts, status
		FROM position_reports
		WHERE flight_id = $1 AND ($2::timestamptz IS NULL OR ts <= $2)
		ORDER BY ts DESC, id DESC
		LIMIT 1
	`, flightID, atOrBefore).Scan(&r.FlightID, &r.Latitude, &r.Longitude, &r.Altitude, &r.Timestamp, &r.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("query latest position", err)
	}
	r.Timestamp = r.Timestamp.UTC()
	return &r, nil
}

func (s *PostgresStore) AllFor(ctx context.Context, flightID string) ([]*models.PositionReport, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT flight_id, latitude, longitude, altitude, ts, status
		FROM position_reports
		WHERE flight_id = $1
		ORDER BY ts ASC, id ASC
	`, flightID)
	if err != nil {
		return nil, storageErr("query positions", err)
	}
	defer rows.Close()

	var reports []*models.PositionReport
	for rows.Next() {
		var r models.PositionReport
		if err := rows.Scan(&r.FlightID, &r.Latitude, &r.Longitude, &r.Altitude, &r.Timestamp, &r.Status); err != nil {
			return nil, storageErr("scan position", err)
		}
		r.Timestamp = r.Timestamp.UTC()
		reports = append(reports, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate positions", err)
	}
	return reports, nil
}

func (s *PostgresStore) Clear(ctx context.Context, flightID string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM position_reports WHERE flight_id = $1`, flightID); err != nil {
		return storageErr("delete positions", err)
	}
	return nil
}

func (s *PostgresStore) Insert(ctx context.Context, flight *models.ArchivedFlight) error {
	pathJSON, err := json.Marshal(flight.Path)
	if err != nil {
		return storageErr("marshal path", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO flight_logs (id, flight_id, departure_time, arrival_time, logged_at, path)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, flight.ID, flight.FlightID, flight.DepartureTime.UTC(), flight.ArrivalTime.UTC(), flight.LoggedAt.UTC(), pathJSON)
	if err != nil {
		return storageErr("insert flight log", err)
	}
	return nil
}

func (s *PostgresStore) FindLatest(ctx context.Context, flightID string) (*models.ArchivedFlight, error) {
	var a models.ArchivedFlight
	var pathJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT id, flight_id, departure_time, arrival_time, logged_at, path
		FROM flight_logs
		WHERE flight_id = $1
		ORDER BY logged_at DESC, seq DESC
		LIMIT 1
	`, flightID).Scan(&a.ID, &a.FlightID, &a.DepartureTime, &a.ArrivalTime, &a.LoggedAt, &pathJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, storageErr("query flight log", err)
	}
	if err := json.Unmarshal(pathJSON, &a.Path); err != nil {
		return nil, storageErr("unmarshal path", err)
	}
	a.DepartureTime = a.DepartureTime.UTC()
	a.ArrivalTime = a.ArrivalTime.UTC()
	a.LoggedAt = a.LoggedAt.UTC()
	return &a, nil
}
