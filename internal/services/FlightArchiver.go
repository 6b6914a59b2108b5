package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"flighttrack/internal/events"
	"flighttrack/internal/models"
	"flighttrack/internal/providers"
	"flighttrack/internal/storage"
)

// PathCacheKey is the cache key of a flight's serialized full path.
func PathCacheKey(flightID string) string {
	return "path:" + flightID
}

type FlightArchiverInterface interface {
	// Archive moves the active reports of a flight into a new archive record.
	// The caller must hold the flight's lock.
	Archive(ctx context.Context, flightID string) (*models.ArchivedFlight, error)
}

type FlightArchiver struct {
	active    storage.ActiveTrackStore
	archive   storage.ArchiveStore
	publisher events.Publisher
	cache     providers.CacheProviderInterface
	metrics   providers.MetricsProviderInterface
	logger    providers.Logger
	now       func() time.Time
}

// Archive writes the archive before clearing the active reports, so a failure
// between the two steps leaves duplicated data but never loses any.
func (fa *FlightArchiver) Archive(ctx context.Context, flightID string) (*models.ArchivedFlight, error) {
	reports, err := fa.active.AllFor(ctx, flightID)
	if err != nil {
		fa.metrics.IncArchiveOutcome(providers.ArchiveOutcomeReadFailed)
		return nil, err
	}
	if len(reports) == 0 {
		fa.metrics.IncArchiveOutcome(providers.ArchiveOutcomeNoActiveTrack)
		return nil, fmt.Errorf("%w: %s", models.ErrNoActiveTrack, flightID)
	}

	previous, err := fa.archive.FindLatest(ctx, flightID)
	switch {
	case errors.Is(err, models.ErrNotFound):
	case err != nil:
		fa.metrics.IncArchiveOutcome(providers.ArchiveOutcomeReadFailed)
		return nil, err
	default:
		reports = unresolved(reports, previous)
	}
	if len(reports) == 0 {
		return nil, fa.clearResolved(ctx, flightID, previous)
	}

	flight := buildArchive(flightID, reports, fa.now().UTC())

	if err := fa.archive.Insert(ctx, flight); err != nil {
		fa.metrics.IncArchiveOutcome(providers.ArchiveOutcomeWriteFailed)
		fa.logger.Errorf(providers.TypeApp, "Archive of flight %s failed, %d active reports kept: %s", flightID, len(reports), err)
		return nil, fmt.Errorf("%w: %w", models.ErrArchiveWriteFailed, err)
	}
	fa.cache.Del(PathCacheKey(flightID))

	if err := fa.active.Clear(ctx, flightID); err != nil {
		cleanupErr := fmt.Errorf("%w: archive %s of flight %s: %w", models.ErrPartialArchiveCleanup, flight.ID, flightID, err)
		fa.metrics.IncArchiveOutcome(providers.ArchiveOutcomePartialCleanup)
		fa.logger.Errorf(providers.TypeApp, "%s", cleanupErr)
	} else {
		fa.metrics.IncArchiveOutcome(providers.ArchiveOutcomeArchived)
	}

	if err := fa.publisher.PublishArchived(ctx, flight.Event()); err != nil {
		fa.logger.Warnf(providers.TypeApp, "Archive event for flight %s not published: %s", flightID, err)
	}

	fa.logger.Infof(providers.TypeApp, "Archived flight %s as %s with %d points", flightID, flight.ID, len(flight.Path))
	return flight, nil
}

type pointKey struct {
	lat, lon float64
	alt      int
	ts       int64
}

func keyOf(p models.PathPoint) pointKey {
	return pointKey{lat: p.Lat, lon: p.Lon, alt: p.Alt, ts: p.Ts.UnixNano()}
}

// unresolved drops reports already present in the previous archive of the
// flight. They are left behind when that archive's cleanup failed.
func unresolved(reports []*models.PositionReport, previous *models.ArchivedFlight) []*models.PositionReport {
	archived := make(map[pointKey]struct{}, len(previous.Path))
	for _, p := range previous.Path {
		archived[keyOf(p)] = struct{}{}
	}
	fresh := reports[:0:0]
	for _, r := range reports {
		if _, ok := archived[keyOf(r.ToPathPoint())]; !ok {
			fresh = append(fresh, r)
		}
	}
	return fresh
}

// clearResolved removes leftovers of an earlier partial cleanup. There is
// nothing new to archive whether or not the clear succeeds.
func (fa *FlightArchiver) clearResolved(ctx context.Context, flightID string, previous *models.ArchivedFlight) error {
	if err := fa.active.Clear(ctx, flightID); err != nil {
		fa.metrics.IncArchiveOutcome(providers.ArchiveOutcomePartialCleanup)
		fa.logger.Errorf(providers.TypeApp, "%s", fmt.Errorf("%w: archive %s of flight %s: %w", models.ErrPartialArchiveCleanup, previous.ID, flightID, err))
	} else {
		fa.metrics.IncArchiveOutcome(providers.ArchiveOutcomeNoActiveTrack)
		fa.logger.Infof(providers.TypeApp, "Cleared leftover reports of flight %s already archived as %s", flightID, previous.ID)
	}
	return fmt.Errorf("%w: %s already archived as %s", models.ErrNoActiveTrack, flightID, previous.ID)
}

// buildArchive expects reports ordered by timestamp ascending.
func buildArchive(flightID string, reports []*models.PositionReport, loggedAt time.Time) *models.ArchivedFlight {
	path := make([]models.PathPoint, len(reports))
	for i, r := range reports {
		path[i] = r.ToPathPoint()
	}
	return &models.ArchivedFlight{
		ID:            uuid.NewString(),
		FlightID:      flightID,
		DepartureTime: path[0].Ts,
		ArrivalTime:   path[len(path)-1].Ts,
		Path:          path,
		LoggedAt:      loggedAt,
	}
}

// IsNothingToArchive reports whether err only means the flight had no active reports.
func IsNothingToArchive(err error) bool {
	return errors.Is(err, models.ErrNoActiveTrack)
}

func NewFlightArchiver(
	active storage.ActiveTrackStore,
	archive storage.ArchiveStore,
	publisher events.Publisher,
	cache providers.CacheProviderInterface,
	metrics providers.MetricsProviderInterface,
	logger providers.Logger,
) FlightArchiverInterface {
	return &FlightArchiver{
		active:    active,
		archive:   archive,
		publisher: publisher,
		cache:     cache,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}
