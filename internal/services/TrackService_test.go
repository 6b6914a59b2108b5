package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flighttrack/internal/models"
)

func TestIngest_UA1Scenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.service()
	q := NewTrackQueryEngine(f.mem, f.mem)

	first := update("UA1", base, 40.0, false)
	res, err := svc.Ingest(ctx, first)
	require.NoError(t, err)
	assert.Nil(t, res.Archived)
	assert.Equal(t, models.DefaultStatus, res.Report.Status)

	second := &models.LocationUpdate{
		FlightID:           "UA1",
		Latitude:           f64(41.0),
		Longitude:          f64(-75.0),
		Altitude:           intp(31000),
		Timestamp:          base.Add(time.Hour),
		DestinationReached: true,
	}
	res, err = svc.Ingest(ctx, second)
	require.NoError(t, err)
	require.NotNil(t, res.Archived)
	assert.Len(t, res.Archived.Path, 2)
	assert.Equal(t, base, res.Archived.DepartureTime)
	assert.Equal(t, base.Add(time.Hour), res.Archived.ArrivalTime)

	_, err = q.TrackActiveOrArchived(ctx, "UA1", TrackOptions{})
	assert.ErrorIs(t, err, models.ErrNotFound)

	track, err := q.TrackActiveOrArchived(ctx, "UA1", TrackOptions{FullPath: true})
	require.NoError(t, err)
	require.Len(t, track.Archive.Path, 2)
	assert.Equal(t, models.PathPoint{Lat: 40.0, Lon: -74.0, Alt: 30000, Ts: base}, track.Archive.Path[0])
	assert.Equal(t, models.PathPoint{Lat: 41.0, Lon: -75.0, Alt: 31000, Ts: base.Add(time.Hour)}, track.Archive.Path[1])

	stats := svc.Stats()
	assert.Equal(t, int64(2), stats.ReportsIngested)
	assert.Equal(t, int64(1), stats.FlightsArchived)
	assert.Zero(t, stats.ArchiveFailures)
	assert.Equal(t, 2, f.metrics.ReportsIngested)
}

func TestIngest_FlightReuseAfterArchive(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	svc := f.service()

	_, err := svc.Ingest(ctx, update("UA1", base, 1, true))
	require.NoError(t, err)
	_, err = svc.Ingest(ctx, update("UA1", base.Add(48*time.Hour), 2, false))
	require.NoError(t, err)

	active, err := f.mem.AllFor(ctx, "UA1")
	require.NoError(t, err)
	assert.Len(t, active, 1)
	_, err = f.mem.FindLatest(ctx, "UA1")
	assert.NoError(t, err)
}

func TestIngest_InvalidUpdate(t *testing.T) {
	f := newFixture()
	bad := update("UA1", base, 91, false)

	_, err := f.service().Ingest(context.Background(), bad)
	assert.ErrorIs(t, err, models.ErrInvalidReport)

	reports, err := f.mem.AllFor(context.Background(), "UA1")
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestIngest_AppendFailure(t *testing.T) {
	f := newFixture()
	f.active.AppendErr = errBackend
	svc := f.service()

	_, err := svc.Ingest(context.Background(), update("UA1", base, 1, true))
	assert.ErrorIs(t, err, models.ErrStorageFailure)
	assert.Zero(t, f.archive.Inserts)
	assert.Zero(t, svc.Stats().ReportsIngested)
}

func TestIngest_ArchiveFailureSurfaces(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.archive.InsertErr = errBackend
	svc := f.service()

	_, err := svc.Ingest(ctx, update("UA1", base, 1, false))
	require.NoError(t, err)
	res, err := svc.Ingest(ctx, update("UA1", base.Add(time.Hour), 2, true))
	assert.ErrorIs(t, err, models.ErrArchiveWriteFailed)
	require.NotNil(t, res)
	assert.Nil(t, res.Archived)

	reports, err := f.mem.AllFor(ctx, "UA1")
	require.NoError(t, err)
	assert.Len(t, reports, 2)
	assert.Equal(t, int64(1), svc.Stats().ArchiveFailures)

	f.archive.InsertErr = nil
	flight, err := svc.ArchiveFlight(ctx, "UA1")
	require.NoError(t, err)
	assert.Len(t, flight.Path, 2)
	assert.Equal(t, int64(1), svc.Stats().FlightsArchived)
}

func TestArchiveFlight_NothingToArchive(t *testing.T) {
	f := newFixture()
	svc := f.service()

	_, err := svc.ArchiveFlight(context.Background(), "UA1")
	assert.True(t, IsNothingToArchive(err))
	assert.Zero(t, svc.Stats().ArchiveFailures)
}

func TestIngest_LockWaitCancelled(t *testing.T) {
	f := newFixture()
	locker := NewFlightLocker()
	svc := NewTrackService(f.active, f.archiver, locker, f.metrics, f.logger)

	unlock, err := locker.Lock(context.Background(), "UA1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = svc.Ingest(ctx, update("UA1", base, 1, false))
	assert.ErrorIs(t, err, models.ErrStorageFailure)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIngest_ConcurrentAppendsDuringArchiveLoseNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	recorder := &recordingArchive{ArchiveStore: f.mem}
	archiver := NewFlightArchiver(f.mem, recorder, f.publisher, f.cache, f.metrics, f.logger)
	svc := NewTrackService(f.mem, archiver, NewFlightLocker(), f.metrics, f.logger)

	const writers, perWriter = 8, 25
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				ts := base.Add(time.Duration(w*perWriter+i) * time.Second)
				_, err := svc.Ingest(ctx, update("UA1", ts, float64(i), i%10 == 9))
				assert.NoError(t, err, fmt.Sprintf("writer %d report %d", w, i))
			}
		}(w)
	}
	wg.Wait()

	total := 0
	for _, a := range recorder.all() {
		total += len(a.Path)
	}
	remaining, err := f.mem.AllFor(ctx, "UA1")
	require.NoError(t, err)
	total += len(remaining)
	assert.Equal(t, writers*perWriter, total)
}
