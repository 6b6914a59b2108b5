package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flighttrack/internal/models"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newFlightID() string {
	return "FL-" + uuid.NewString()
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

func ptr(t time.Time) *time.Time {
	return &t
}

// runActiveStoreSuite checks the ActiveTrackStore contract against any backend.
func runActiveStoreSuite(t *testing.T, store ActiveTrackStore) {
	ctx := context.Background()

	t.Run("LatestUnconstrained", func(t *testing.T) {
		id := newFlightID()
		require.NoError(t, store.Append(ctx, report(id, base.Add(time.Hour), 2)))
		require.NoError(t, store.Append(ctx, report(id, base, 1)))

		got, err := store.Latest(ctx, id, nil)
		require.NoError(t, err)
		assert.Equal(t, id, got.FlightID)
		assert.Equal(t, 2.0, got.Latitude)
		assert.True(t, got.Timestamp.Equal(base.Add(time.Hour)))
	})

	t.Run("AtOrBeforeSelection", func(t *testing.T) {
		id := newFlightID()
		t1, t2, t3 := base, base.Add(time.Hour), base.Add(2*time.Hour)
		require.NoError(t, store.Append(ctx, report(id, t3, 3)))
		require.NoError(t, store.Append(ctx, report(id, t1, 1)))
		require.NoError(t, store.Append(ctx, report(id, t2, 2)))

		got, err := store.Latest(ctx, id, ptr(t2))
		require.NoError(t, err)
		assert.Equal(t, 2.0, got.Latitude)

		got, err = store.Latest(ctx, id, ptr(t1.Add(30*time.Minute)))
		require.NoError(t, err)
		assert.Equal(t, 1.0, got.Latitude)

		_, err = store.Latest(ctx, id, ptr(t1.Add(-time.Second)))
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("LatestUnknownFlight", func(t *testing.T) {
		_, err := store.Latest(ctx, newFlightID(), nil)
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("AllForSortsOutOfOrderArrivals", func(t *testing.T) {
		id := newFlightID()
		for _, offset := range []int{3, 1, 4, 0, 2} {
			require.NoError(t, store.Append(ctx, report(id, base.Add(time.Duration(offset)*time.Minute), float64(offset))))
		}

		reports, err := store.AllFor(ctx, id)
		require.NoError(t, err)
		require.Len(t, reports, 5)
		for i, r := range reports {
			assert.Equal(t, float64(i), r.Latitude)
			assert.True(t, r.Timestamp.Equal(base.Add(time.Duration(i)*time.Minute)))
		}
	})

	t.Run("DuplicateTimestampsAreKept", func(t *testing.T) {
		id := newFlightID()
		require.NoError(t, store.Append(ctx, report(id, base, 1)))
		require.NoError(t, store.Append(ctx, report(id, base, 2)))

		reports, err := store.AllFor(ctx, id)
		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, 1.0, reports[0].Latitude)
		assert.Equal(t, 2.0, reports[1].Latitude)

		for i := 0; i < 3; i++ {
			got, err := store.Latest(ctx, id, nil)
			require.NoError(t, err)
			assert.Equal(t, 2.0, got.Latitude, "equal timestamps resolve to the last insert")
		}
	})

	t.Run("ClearIsIdempotent", func(t *testing.T) {
		id := newFlightID()
		other := newFlightID()
		require.NoError(t, store.Append(ctx, report(id, base, 1)))
		require.NoError(t, store.Append(ctx, report(other, base, 1)))

		require.NoError(t, store.Clear(ctx, id))
		require.NoError(t, store.Clear(ctx, id))

		reports, err := store.AllFor(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, reports)
		_, err = store.Latest(ctx, id, nil)
		assert.ErrorIs(t, err, models.ErrNotFound)

		reports, err = store.AllFor(ctx, other)
		require.NoError(t, err)
		assert.Len(t, reports, 1)
	})

	t.Run("ClearUnknownFlight", func(t *testing.T) {
		assert.NoError(t, store.Clear(ctx, newFlightID()))
	})
}

func archived(flightID string, loggedAt time.Time) *models.ArchivedFlight {
	return &models.ArchivedFlight{
		ID:            uuid.NewString(),
		FlightID:      flightID,
		DepartureTime: base,
		ArrivalTime:   base.Add(time.Hour),
		Path: []models.PathPoint{
			{Lat: 40, Lon: -74, Alt: 30000, Ts: base},
			{Lat: 41, Lon: -75, Alt: 31000, Ts: base.Add(time.Hour)},
		},
		LoggedAt: loggedAt,
	}
}

// runArchiveStoreSuite checks the ArchiveStore contract against any backend.
func runArchiveStoreSuite(t *testing.T, store ArchiveStore) {
	ctx := context.Background()

	t.Run("InsertAndFind", func(t *testing.T) {
		id := newFlightID()
		want := archived(id, base.Add(2*time.Hour))
		require.NoError(t, store.Insert(ctx, want))

		got, err := store.FindLatest(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, id, got.FlightID)
		assert.True(t, got.DepartureTime.Equal(want.DepartureTime))
		assert.True(t, got.ArrivalTime.Equal(want.ArrivalTime))
		assert.True(t, got.LoggedAt.Equal(want.LoggedAt))
		require.Len(t, got.Path, 2)
		assert.Equal(t, 40.0, got.Path[0].Lat)
		assert.Equal(t, 31000, got.Path[1].Alt)
		assert.True(t, got.Path[1].Ts.Equal(base.Add(time.Hour)))
	})

	t.Run("FindReturnsMostRecentlyLogged", func(t *testing.T) {
		id := newFlightID()
		older := archived(id, base.Add(2*time.Hour))
		newer := archived(id, base.Add(48*time.Hour))
		require.NoError(t, store.Insert(ctx, newer))
		require.NoError(t, store.Insert(ctx, older))

		got, err := store.FindLatest(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, newer.ID, got.ID)
	})

	t.Run("FindUnknownFlight", func(t *testing.T) {
		_, err := store.FindLatest(ctx, newFlightID())
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}
