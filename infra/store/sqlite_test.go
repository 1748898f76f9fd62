package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evroute/auth"
	"github.com/kilianp07/evroute/config"
	"github.com/kilianp07/evroute/core/model"
)

func newMemStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func createUser(t *testing.T, s Store, name string) model.User {
	t.Helper()
	u := model.User{Username: name, Email: name + "@example.com", PasswordHash: "hash", DriveMode: "Normal"}
	require.NoError(t, s.CreateUser(context.Background(), &u))
	require.NotZero(t, u.ID)
	return u
}

func TestSQLiteUsers(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()
	u := createUser(t, s, "asha")

	got, err := s.UserByUsername(ctx, "asha")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "asha@example.com", got.Email)
	assert.Nil(t, got.LastLogin)

	at := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.TouchLogin(ctx, u.ID, at))
	got, err = s.UserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastLogin)
	assert.True(t, at.Equal(*got.LastLogin))

	dup := model.User{Username: "asha", Email: "other@example.com", PasswordHash: "x"}
	assert.ErrorIs(t, s.CreateUser(ctx, &dup), auth.ErrUserExists)

	_, err = s.UserByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
	_, err = s.UserByID(ctx, 999)
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestSQLiteTripsNewestFirst(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()
	u := createUser(t, s, "ravi")
	other := createUser(t, s, "meera")

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 12; i++ {
		rec := &model.TripRecord{
			UserID:        u.ID,
			StartLocation: "Bangalore",
			EndLocation:   "Mysore",
			DistanceKm:    100,
			EnergyKWh:     15,
			ChargingCost:  120,
			DriveMode:     "Normal",
			SoCStart:      80,
			SoCEnd:        30,
			RouteType:     "driving",
			Timestamp:     base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, s.SaveTrip(ctx, rec))
		assert.NotZero(t, rec.ID)
	}
	require.NoError(t, s.SaveTrip(ctx, &model.TripRecord{UserID: other.ID, DistanceKm: 10, EnergyKWh: 2}))

	trips, err := s.ListTrips(ctx, u.ID, 0)
	require.NoError(t, err)
	require.Len(t, trips, 10)
	assert.True(t, trips[0].Timestamp.Equal(base.Add(11*time.Hour)))
	assert.True(t, trips[0].Timestamp.After(trips[1].Timestamp))
	assert.Equal(t, "Mysore", trips[0].EndLocation)

	trips, err = s.ListTrips(ctx, u.ID, 3)
	require.NoError(t, err)
	assert.Len(t, trips, 3)

	st, err := s.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, st.TotalTrips)
	assert.InDelta(t, 1200, st.TotalDistanceKm, 1e-9)
	assert.InDelta(t, 180, st.TotalEnergyKWh, 1e-9)
	assert.InDelta(t, 1440, st.TotalCost, 1e-9)
	assert.InDelta(t, 0.15, st.AvgKWhPerKm, 1e-9)
}

func TestSQLiteStatsEmpty(t *testing.T) {
	s := newMemStore(t)
	u := createUser(t, s, "empty")
	st, err := s.Stats(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, model.TripStats{}, st)

	trips, err := s.ListTrips(context.Background(), u.ID, 5)
	require.NoError(t, err)
	assert.Empty(t, trips)
	assert.NotNil(t, trips)
}

func TestSQLiteStatsIgnoresZeroDistance(t *testing.T) {
	s := newMemStore(t)
	ctx := context.Background()
	u := createUser(t, s, "zero")
	require.NoError(t, s.SaveTrip(ctx, &model.TripRecord{UserID: u.ID, DistanceKm: 0, EnergyKWh: 1}))
	require.NoError(t, s.SaveTrip(ctx, &model.TripRecord{UserID: u.ID, DistanceKm: 50, EnergyKWh: 10}))
	st, err := s.Stats(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalTrips)
	assert.InDelta(t, 0.2, st.AvgKWhPerKm, 1e-9)
}

func TestSQLiteFilePersists(t *testing.T) {
	path := t.TempDir() + "/trips.db"
	s, err := NewSQLiteStore(path)
	require.NoError(t, err)
	u := createUser(t, s, "disk")
	require.NoError(t, s.Close())

	s, err = NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	got, err := s.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "disk", got.Username)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, config.StorageConfig{Backend: "memory"})
	require.NoError(t, err)
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Close())

	_, err = Open(ctx, config.StorageConfig{Backend: "redis"})
	assert.Error(t, err)
}
