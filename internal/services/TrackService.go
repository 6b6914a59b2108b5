package services

import (
	"context"
	"fmt"

	"go.uber.org/atomic"

	"flighttrack/internal/models"
	"flighttrack/internal/providers"
	"flighttrack/internal/storage"
)

type IngestResult struct {
	Report   *models.PositionReport
	Archived *models.ArchivedFlight
}

type ServiceStats struct {
	ReportsIngested  int64
	FlightsArchived  int64
	ArchiveFailures  int64
	FlightsInProcess int
}

type TrackServiceInterface interface {
	// Ingest validates and stores one report and archives the flight when it reports arrival.
	Ingest(ctx context.Context, update *models.LocationUpdate) (*IngestResult, error)
	// ArchiveFlight re-runs the archiving transition for a flight.
	ArchiveFlight(ctx context.Context, flightID string) (*models.ArchivedFlight, error)
	Stats() ServiceStats
}

// TrackService holds the per-flight lock around every write, so an append can
// never land between the archiver's read and its clear.
type TrackService struct {
	active   storage.ActiveTrackStore
	archiver FlightArchiverInterface
	locker   *FlightLocker
	metrics  providers.MetricsProviderInterface
	logger   providers.Logger

	reportsIngested atomic.Int64
	flightsArchived atomic.Int64
	archiveFailures atomic.Int64
}

func (ts *TrackService) Ingest(ctx context.Context, update *models.LocationUpdate) (*IngestResult, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	report := update.ToReport()

	unlock, err := ts.locker.Lock(ctx, report.FlightID)
	if err != nil {
		return nil, fmt.Errorf("%w: lock flight %s: %w", models.ErrStorageFailure, report.FlightID, err)
	}
	defer unlock()

	if err := ts.active.Append(ctx, report); err != nil {
		ts.logger.Errorf(providers.TypePost, "Append for flight %s failed: %s", report.FlightID, err)
		return nil, err
	}
	ts.reportsIngested.Inc()
	ts.metrics.IncReportsIngested()

	result := &IngestResult{Report: report}
	if !update.DestinationReached {
		return result, nil
	}

	archived, err := ts.archive(ctx, report.FlightID)
	if err != nil {
		return result, err
	}
	result.Archived = archived
	return result, nil
}

func (ts *TrackService) ArchiveFlight(ctx context.Context, flightID string) (*models.ArchivedFlight, error) {
	unlock, err := ts.locker.Lock(ctx, flightID)
	if err != nil {
		return nil, fmt.Errorf("%w: lock flight %s: %w", models.ErrStorageFailure, flightID, err)
	}
	defer unlock()

	return ts.archive(ctx, flightID)
}

func (ts *TrackService) archive(ctx context.Context, flightID string) (*models.ArchivedFlight, error) {
	archived, err := ts.archiver.Archive(ctx, flightID)
	if err != nil {
		if !IsNothingToArchive(err) {
			ts.archiveFailures.Inc()
		}
		return nil, err
	}
	ts.flightsArchived.Inc()
	return archived, nil
}

func (ts *TrackService) Stats() ServiceStats {
	return ServiceStats{
		ReportsIngested:  ts.reportsIngested.Load(),
		FlightsArchived:  ts.flightsArchived.Load(),
		ArchiveFailures:  ts.archiveFailures.Load(),
		FlightsInProcess: ts.locker.Len(),
	}
}

func NewTrackService(
	active storage.ActiveTrackStore,
	archiver FlightArchiverInterface,
	locker *FlightLocker,
	metrics providers.MetricsProviderInterface,
	logger providers.Logger,
) TrackServiceInterface {
	return &TrackService{
		active:   active,
		archiver: archiver,
		locker:   locker,
		metrics:  metrics,
		logger:   logger,
	}
}
