package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"backend-drivemate/internal/config"
	"backend-drivemate/internal/triplog"

	"github.com/alicebob/miniredis/v2"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var errStore = errors.New("store error")

func sampleTrip(id string, end time.Time) triplog.TripRecord {
	return triplog.TripRecord{
		ID:           id,
		StartTime:    end.Add(-5 * time.Minute),
		EndTime:      end,
		Duration:     300,
		DistanceKm:   2.345,
		AvgSpeedKmh:  28.14,
		SpeedSamples: []float64{0, 27.5, 31.02},
	}
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestSQLiteStoreMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(ctx, openSQLite(t))
	require.NoError(t, err)

	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.Save(ctx, "driver-1", sampleTrip("trip-a", base)))
	require.NoError(t, s.Save(ctx, "driver-1", sampleTrip("trip-b", base.Add(time.Hour))))
	require.NoError(t, s.Save(ctx, "driver-2", sampleTrip("trip-c", base)))

	trips, err := s.Recent(ctx, "driver-1", 0)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "trip-b", trips[0].ID)
	assert.Equal(t, "trip-a", trips[1].ID)
	assert.Equal(t, sampleTrip("trip-a", base), trips[1])

	limited, err := s.Recent(ctx, "driver-1", 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "trip-b", limited[0].ID)

	got, err := s.Get(ctx, "driver-2", "trip-c")
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 27.5, 31.02}, got.SpeedSamples)

	_, err = s.Get(ctx, "driver-1", "trip-c")
	assert.ErrorIs(t, err, ErrTripNotFound)

	empty, err := s.Recent(ctx, "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSQLiteStoreDuplicateID(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLite(ctx, openSQLite(t))
	require.NoError(t, err)

	rec := sampleTrip("trip-a", time.Now())
	require.NoError(t, s.Save(ctx, "driver-1", rec))
	assert.Error(t, s.Save(ctx, "driver-1", rec))
}

func TestRedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	s := NewRedis(client, 0)
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	for _, id := range []string{"trip-a", "trip-b", "trip-c"} {
		require.NoError(t, s.Save(ctx, "driver-1", sampleTrip(id, base)))
	}

	trips, err := s.Recent(ctx, "driver-1", 2)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "trip-c", trips[0].ID)
	assert.Equal(t, "trip-b", trips[1].ID)
	assert.True(t, trips[0].EndTime.Equal(base))

	got, err := s.Get(ctx, "driver-1", "trip-a")
	require.NoError(t, err)
	assert.Equal(t, 2.345, got.DistanceKm)

	_, err = s.Get(ctx, "driver-1", "missing")
	assert.ErrorIs(t, err, ErrTripNotFound)
}

func TestRedisStoreCap(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	s := NewRedis(client, 2)
	for _, id := range []string{"trip-a", "trip-b", "trip-c"} {
		require.NoError(t, s.Save(ctx, "driver-1", sampleTrip(id, time.Now())))
	}
	trips, err := s.Recent(ctx, "driver-1", 0)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "trip-c", trips[0].ID)
}

func TestRedisStoreDecodeError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	_, err := mr.Lpush(tripsKey("driver-1"), "{not json")
	require.NoError(t, err)

	_, err = NewRedis(client, 0).Recent(context.Background(), "driver-1", 0)
	assert.Error(t, err)
}

func TestPostgresStore(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	ctx := context.Background()
	s := NewPostgres(mock)
	rec := sampleTrip("trip-a", time.Now().UTC())

	mock.ExpectExec(`INSERT INTO driver_trips`).
		WithArgs("trip-a", "driver-1", rec.StartTime, rec.EndTime, int64(300), 2.345, 28.14, rec.SpeedSamples).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	require.NoError(t, s.Save(ctx, "driver-1", rec))

	cols := []string{"id", "start_time", "end_time", "duration_sec", "distance_km", "avg_speed_kmh", "speed_samples"}
	mock.ExpectQuery(`SELECT id, start_time, end_time, duration_sec, distance_km, avg_speed_kmh, speed_samples\s+FROM driver_trips WHERE driver_id=\$1\s+ORDER BY`).
		WithArgs("driver-1", 10).
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("trip-b", rec.StartTime, rec.EndTime, int64(60), 1.0, 60.0, []float64{0, 60}).
			AddRow("trip-a", rec.StartTime, rec.EndTime, int64(300), 2.345, 28.14, rec.SpeedSamples))
	trips, err := s.Recent(ctx, "driver-1", 10)
	require.NoError(t, err)
	require.Len(t, trips, 2)
	assert.Equal(t, "trip-b", trips[0].ID)
	assert.Equal(t, []float64{0, 60}, trips[0].SpeedSamples)

	mock.ExpectQuery(`FROM driver_trips WHERE driver_id=\$1 AND id=\$2`).
		WithArgs("driver-1", "trip-a").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("trip-a", rec.StartTime, rec.EndTime, int64(300), 2.345, 28.14, rec.SpeedSamples))
	got, err := s.Get(ctx, "driver-1", "trip-a")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreErrors(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer mock.Close()

	ctx := context.Background()
	s := NewPostgres(mock)

	mock.ExpectExec(`INSERT INTO driver_trips`).
		WithArgs(pgxmock.AnyArg(), "driver-1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errStore)
	assert.ErrorIs(t, s.Save(ctx, "driver-1", sampleTrip("trip-a", time.Now())), errStore)

	mock.ExpectQuery(`FROM driver_trips WHERE driver_id=\$1\s+ORDER BY`).
		WithArgs("driver-1", 2147483647).
		WillReturnError(errStore)
	_, err = s.Recent(ctx, "driver-1", 0)
	assert.ErrorIs(t, err, errStore)

	mock.ExpectQuery(`FROM driver_trips WHERE driver_id=\$1 AND id=\$2`).
		WithArgs("driver-1", "missing").
		WillReturnRows(pgxmock.NewRows([]string{"id", "start_time", "end_time", "duration_sec", "distance_km", "avg_speed_kmh", "speed_samples"}))
	_, err = s.Get(ctx, "driver-1", "missing")
	assert.ErrorIs(t, err, ErrTripNotFound)

	mock.ExpectQuery(`FROM driver_trips WHERE driver_id=\$1 AND id=\$2`).
		WithArgs("driver-1", "broken").
		WillReturnError(errStore)
	_, err = s.Get(ctx, "driver-1", "broken")
	assert.ErrorIs(t, err, errStore)

	require.NoError(t, mock.ExpectationsWereMet())
}

type memoryStore struct {
	mu    sync.Mutex
	trips map[string][]triplog.TripRecord
	err   error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{trips: map[string][]triplog.TripRecord{}}
}

func (m *memoryStore) Save(_ context.Context, driverID string, rec triplog.TripRecord) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trips[driverID] = append([]triplog.TripRecord{rec}, m.trips[driverID]...)
	return nil
}

func (m *memoryStore) Recent(_ context.Context, driverID string, _ int) ([]triplog.TripRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.trips[driverID], nil
}

func (m *memoryStore) Get(_ context.Context, driverID, tripID string) (triplog.TripRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.trips[driverID] {
		if r.ID == tripID {
			return r, nil
		}
	}
	return triplog.TripRecord{}, ErrTripNotFound
}

func TestFanoutWritesAllReadsFirst(t *testing.T) {
	ctx := context.Background()
	primary, secondary := newMemoryStore(), newMemoryStore()
	f := NewFanout(primary, secondary)

	rec := sampleTrip("trip-a", time.Now())
	require.NoError(t, f.Save(ctx, "driver-1", rec))
	assert.Len(t, primary.trips["driver-1"], 1)
	assert.Len(t, secondary.trips["driver-1"], 1)

	secondary.trips["driver-1"] = nil
	trips, err := f.Recent(ctx, "driver-1", 5)
	require.NoError(t, err)
	assert.Len(t, trips, 1)

	got, err := f.Get(ctx, "driver-1", "trip-a")
	require.NoError(t, err)
	assert.Equal(t, "trip-a", got.ID)
}

func TestFanoutSaveError(t *testing.T) {
	failing := newMemoryStore()
	failing.err = errStore
	f := NewFanout(newMemoryStore(), failing)

	err := f.Save(context.Background(), "driver-1", sampleTrip("trip-a", time.Now()))
	assert.ErrorIs(t, err, errStore)
}

func TestNewBuildsConfiguredStores(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s, err := New(ctx, config.Config{TripStores: "sqlite"}, nil, nil, openSQLite(t))
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, s)

	s, err = New(ctx, config.Config{TripStores: "redis,sqlite"}, nil, client, openSQLite(t))
	require.NoError(t, err)
	assert.IsType(t, &Fanout{}, s)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	s, err = New(ctx, config.Config{TripStores: "postgres"}, mock, nil, nil)
	require.NoError(t, err)
	assert.IsType(t, &Postgres{}, s)
}

func TestNewRejectsBadConfig(t *testing.T) {
	ctx := context.Background()

	_, err := New(ctx, config.Config{TripStores: ""}, nil, nil, nil)
	assert.Error(t, err)

	_, err = New(ctx, config.Config{TripStores: "postgres"}, nil, nil, nil)
	assert.Error(t, err)

	_, err = New(ctx, config.Config{TripStores: "redis"}, nil, nil, nil)
	assert.Error(t, err)

	_, err = New(ctx, config.Config{TripStores: "sqlite"}, nil, nil, nil)
	assert.Error(t, err)

	_, err = New(ctx, config.Config{TripStores: "cassandra"}, nil, nil, nil)
	assert.Error(t, err)
}
