package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flighttrack/internal/models"
	"flighttrack/internal/storage"
)

func TestTrack_AtOrBeforeSelection(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	q := NewTrackQueryEngine(mem, mem)
	t1, t2, t3 := base, base.Add(time.Hour), base.Add(2*time.Hour)
	for i, ts := range []time.Time{t1, t2, t3} {
		require.NoError(t, mem.Append(ctx, report("UA1", ts, float64(i+1))))
	}

	res, err := q.TrackActiveOrArchived(ctx, "UA1", TrackOptions{AtTime: &t2})
	require.NoError(t, err)
	require.NotNil(t, res.Point)
	assert.Nil(t, res.Archive)
	assert.Equal(t, 2.0, res.Point.Latitude)

	between := t1.Add(30 * time.Minute)
	res, err = q.TrackActiveOrArchived(ctx, "UA1", TrackOptions{AtTime: &between})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Point.Latitude)

	before := t1.Add(-time.Minute)
	_, err = q.TrackActiveOrArchived(ctx, "UA1", TrackOptions{AtTime: &before})
	assert.ErrorIs(t, err, models.ErrNotFound)

	res, err = q.TrackActiveOrArchived(ctx, "UA1", TrackOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.Point.Latitude)
	assert.Equal(t, res.Point, res.Value())
}

func TestTrack_DefaultsStatus(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	r := report("UA1", base, 1)
	r.Status = ""
	require.NoError(t, mem.Append(ctx, r))

	res, err := NewTrackQueryEngine(mem, mem).TrackActiveOrArchived(ctx, "UA1", TrackOptions{})
	require.NoError(t, err)
	assert.Equal(t, models.DefaultStatus, res.Point.Status)
	assert.Equal(t, "UA1", res.Point.FlightID)
	assert.Equal(t, 30000, res.Point.Altitude)
}

func TestTrack_FullPathIgnoresAtTime(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	flight := &models.ArchivedFlight{ID: "a1", FlightID: "UA1", DepartureTime: base, ArrivalTime: base, LoggedAt: base,
		Path: []models.PathPoint{{Lat: 1, Ts: base}}}
	require.NoError(t, mem.Insert(ctx, flight))
	require.NoError(t, mem.Append(ctx, report("UA1", base.Add(24*time.Hour), 9)))

	long := base.Add(-time.Hour)
	res, err := NewTrackQueryEngine(mem, mem).TrackActiveOrArchived(ctx, "UA1", TrackOptions{FullPath: true, AtTime: &long})
	require.NoError(t, err)
	require.NotNil(t, res.Archive)
	assert.Nil(t, res.Point)
	assert.Equal(t, "a1", res.Archive.ID)
	assert.Equal(t, res.Archive, res.Value())
}

func TestTrack_NotFound(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStore()
	q := NewTrackQueryEngine(mem, mem)

	_, err := q.TrackActiveOrArchived(ctx, "ZZ9", TrackOptions{})
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = q.TrackActiveOrArchived(ctx, "ZZ9", TrackOptions{FullPath: true})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestTrack_StorageFailurePropagates(t *testing.T) {
	f := newFixture()
	f.active.LatestErr = errBackend
	f.archive.FindErr = errBackend
	q := NewTrackQueryEngine(f.active, f.archive)

	_, err := q.TrackActiveOrArchived(context.Background(), "UA1", TrackOptions{})
	assert.ErrorIs(t, err, models.ErrStorageFailure)
	_, err = q.TrackActiveOrArchived(context.Background(), "UA1", TrackOptions{FullPath: true})
	assert.ErrorIs(t, err, models.ErrStorageFailure)
}
