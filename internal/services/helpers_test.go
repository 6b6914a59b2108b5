package services

import (
	"context"
	"sync"
	"time"

	"flighttrack/internal/models"
	"flighttrack/internal/storage"
	"flighttrack/internal/testutil"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func f64(v float64) *float64 { return &v }
func intp(v int) *int         { return &v }

func update(flightID string, ts time.Time, lat float64, arrived bool) *models.LocationUpdate {
	return &models.LocationUpdate{
		FlightID:           flightID,
		Latitude:           f64(lat),
		Longitude:          f64(-74.0),
		Altitude:           intp(30000),
		Timestamp:          ts,
		DestinationReached: arrived,
	}
}

func report(flightID string, ts time.Time, lat float64) *models.PositionReport {
	return &models.PositionReport{
		FlightID:  flightID,
		Latitude:  lat,
		Longitude: -74.0,
		Altitude:  30000,
		Timestamp: ts,
		Status:    models.DefaultStatus,
	}
}

// recordingArchive keeps every inserted archive.
type recordingArchive struct {
	storage.ArchiveStore
	mu      sync.Mutex
	flights []*models.ArchivedFlight
}

func (r *recordingArchive) Insert(ctx context.Context, flight *models.ArchivedFlight) error {
	if err := r.ArchiveStore.Insert(ctx, flight); err != nil {
		return err
	}
	r.mu.Lock()
	r.flights = append(r.flights, flight)
	r.mu.Unlock()
	return nil
}

func (r *recordingArchive) all() []*models.ArchivedFlight {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.ArchivedFlight(nil), r.flights...)
}

type fixture struct {
	mem       *storage.MemoryStore
	active    *testutil.FaultyActiveStore
	archive   *testutil.FaultyArchiveStore
	cache     *testutil.MockCache
	metrics   *testutil.MockMetrics
	logger    *testutil.MockLogger
	publisher *testutil.MockPublisher
	archiver  *FlightArchiver
}

func newFixture() *fixture {
	mem := storage.NewMemoryStore()
	f := &fixture{
		mem:       mem,
		active:    &testutil.FaultyActiveStore{Next: mem},
		archive:   &testutil.FaultyArchiveStore{Next: mem},
		cache:     testutil.NewMockCache(),
		metrics:   &testutil.MockMetrics{},
		logger:    &testutil.MockLogger{},
		publisher: &testutil.MockPublisher{},
	}
	f.archiver = NewFlightArchiver(f.active, f.archive, f.publisher, f.cache, f.metrics, f.logger).(*FlightArchiver)
	f.archiver.now = func() time.Time { return base.Add(3 * time.Hour) }
	return f
}

func (f *fixture) service() TrackServiceInterface {
	return NewTrackService(f.active, f.archiver, NewFlightLocker(), f.metrics, f.logger)
}
