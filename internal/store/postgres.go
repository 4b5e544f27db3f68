package store

import (
	"context"
	"errors"
	"math"

	"backend-drivemate/internal/db"
	"backend-drivemate/internal/triplog"

	"github.com/jackc/pgx/v5"
)

type Postgres struct {
	db db.Querier
}

func NewPostgres(q db.Querier) *Postgres {
	return &Postgres{db: q}
}

func (p *Postgres) Save(ctx context.Context, driverID string, rec triplog.TripRecord) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO driver_trips (id, driver_id, start_time, end_time, duration_sec, distance_km, avg_speed_kmh, speed_samples)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, rec.ID, driverID, rec.StartTime, rec.EndTime, rec.Duration, rec.DistanceKm, rec.AvgSpeedKmh, rec.SpeedSamples)
	return err
}

func (p *Postgres) Recent(ctx context.Context, driverID string, limit int) ([]triplog.TripRecord, error) {
	if limit <= 0 {
		limit = math.MaxInt32
	}
	rows, err := p.db.Query(ctx, `
		SELECT id, start_time, end_time, duration_sec, distance_km, avg_speed_kmh, speed_samples
		FROM driver_trips WHERE driver_id=$1
		ORDER BY end_time DESC, id DESC
		LIMIT $2
	`, driverID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []triplog.TripRecord{}
	for rows.Next() {
		var r triplog.TripRecord
		if err := rows.Scan(&r.ID, &r.StartTime, &r.EndTime, &r.Duration, &r.DistanceKm, &r.AvgSpeedKmh, &r.SpeedSamples); err != nil {
			return nil, err
		}
		trips = append(trips, r)
	}
	return trips, rows.Err()
}

func (p *Postgres) Get(ctx context.Context, driverID, tripID string) (triplog.TripRecord, error) {
	row := p.db.QueryRow(ctx, `
		SELECT id, start_time, end_time, duration_sec, distance_km, avg_speed_kmh, speed_samples
		FROM driver_trips WHERE driver_id=$1 AND id=$2
	`, driverID, tripID)
	var r triplog.TripRecord
	if err := row.Scan(&r.ID, &r.StartTime, &r.EndTime, &r.Duration, &r.DistanceKm, &r.AvgSpeedKmh, &r.SpeedSamples); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return triplog.TripRecord{}, ErrTripNotFound
		}
		return triplog.TripRecord{}, err
	}
	return r, nil
}
