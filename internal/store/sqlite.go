package store

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"backend-drivemate/internal/triplog"
)

//go:embed schema.sql
var sqliteSchema string

// SQLite is the on-device trip store. Insertion order defines recency, matching a list
// that new trips are prepended to.
type SQLite struct {
	conn    *sql.DB
	writeMu sync.Mutex
}

// NewSQLite ensures the schema exists and returns the store.
func NewSQLite(ctx context.Context, conn *sql.DB) (*SQLite, error) {
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("failed to create trip schema: %w", err)
	}
	return &SQLite{conn: conn}, nil
}

func (s *SQLite) Save(ctx context.Context, driverID string, rec triplog.TripRecord) error {
	samples, err := json.Marshal(rec.SpeedSamples)
	if err != nil {
		return fmt.Errorf("encode speed samples: %w", err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO driver_trips (id, driver_id, start_time, end_time, duration_sec, distance_km, avg_speed_kmh, speed_samples)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, driverID, rec.StartTime.UTC().Format(time.RFC3339Nano), rec.EndTime.UTC().Format(time.RFC3339Nano),
		rec.Duration, rec.DistanceKm, rec.AvgSpeedKmh, string(samples))
	if err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	return nil
}

func (s *SQLite) Recent(ctx context.Context, driverID string, limit int) ([]triplog.TripRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, start_time, end_time, duration_sec, distance_km, avg_speed_kmh, speed_samples
		FROM driver_trips WHERE driver_id = ?
		ORDER BY seq DESC
		LIMIT ?
	`, driverID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer rows.Close()

	trips := []triplog.TripRecord{}
	for rows.Next() {
		rec, err := scanSQLiteTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, rec)
	}
	return trips, rows.Err()
}

func (s *SQLite) Get(ctx context.Context, driverID, tripID string) (triplog.TripRecord, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT id, start_time, end_time, duration_sec, distance_km, avg_speed_kmh, speed_samples
		FROM driver_trips WHERE driver_id = ? AND id = ?
	`, driverID, tripID)
	rec, err := scanSQLiteTrip(row)
	if errors.Is(err, sql.ErrNoRows) {
		return triplog.TripRecord{}, ErrTripNotFound
	}
	return rec, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTrip(row rowScanner) (triplog.TripRecord, error) {
	var (
		rec        triplog.TripRecord
		start, end string
		samples    string
	)
	if err := row.Scan(&rec.ID, &start, &end, &rec.Duration, &rec.DistanceKm, &rec.AvgSpeedKmh, &samples); err != nil {
		return triplog.TripRecord{}, err
	}

	var err error
	if rec.StartTime, err = time.Parse(time.RFC3339Nano, start); err != nil {
		return triplog.TripRecord{}, fmt.Errorf("parse start_time: %w", err)
	}
	if rec.EndTime, err = time.Parse(time.RFC3339Nano, end); err != nil {
		return triplog.TripRecord{}, fmt.Errorf("parse end_time: %w", err)
	}
	if err := json.Unmarshal([]byte(samples), &rec.SpeedSamples); err != nil {
		return triplog.TripRecord{}, fmt.Errorf("decode speed samples: %w", err)
	}
	return rec, nil
}
