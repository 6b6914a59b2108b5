// Package storage holds the active track and archive stores and their backends.
package storage

import (
	"context"
	"time"

	"flighttrack/internal/models"
)

const (
	DriverMemory   = "memory"
	DriverSqlite   = "sqlite"
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
)

// ActiveTrackStore holds the position reports of flights that have not been archived yet.
// Every error returned for a backend problem wraps models.ErrStorageFailure.
type ActiveTrackStore interface {
	// Append inserts one report. Duplicate timestamps are accepted.
	Append(ctx context.Context, report *models.PositionReport) error
	// Latest returns the report with the greatest timestamp not after atOrBefore,
	// or the absolute latest when atOrBefore is nil. Equal timestamps resolve to the
	// most recently inserted report. Returns models.ErrNotFound when nothing qualifies.
	Latest(ctx context.Context, flightID string, atOrBefore *time.Time) (*models.PositionReport, error)
	// AllFor returns every report of the flight ordered by timestamp ascending,
	// then by insertion order.
	AllFor(ctx context.Context, flightID string) ([]*models.PositionReport, error)
	// Clear removes all reports of the flight. Clearing an unknown flight is a no-op.
	Clear(ctx context.Context, flightID string) error
}

// ArchiveStore holds immutable archived flights.
type ArchiveStore interface {
	Insert(ctx context.Context, flight *models.ArchivedFlight) error
	// FindLatest returns the most recently logged archive of the flight or models.ErrNotFound.
	FindLatest(ctx context.Context, flightID string) (*models.ArchivedFlight, error)
}

// Stores bundles the handles opened for the configured driver.
type Stores struct {
	Driver  string
	Active  ActiveTrackStore
	Archive ArchiveStore
	// Memory is set only for the memory driver and backs the snapshot scheduler.
	Memory *MemoryStore
	close  func() error
}

func (s *Stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
