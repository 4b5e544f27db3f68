package store

import (
	"context"
	"encoding/json"
	"fmt"

	"backend-drivemate/internal/triplog"

	"github.com/redis/go-redis/v9"
)

// Redis keeps each driver's trips as a JSON list with the newest trip at the head.
type Redis struct {
	client *redis.Client
	// maxTrips caps the list length when positive.
	maxTrips int
}

func NewRedis(client *redis.Client, maxTrips int) *Redis {
	return &Redis{client: client, maxTrips: maxTrips}
}

func tripsKey(driverID string) string {
	return "drivemate:" + driverID + ":trips"
}

func (r *Redis) Save(ctx context.Context, driverID string, rec triplog.TripRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode trip: %w", err)
	}
	key := tripsKey(driverID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, key, payload)
		if r.maxTrips > 0 {
			pipe.LTrim(ctx, key, 0, int64(r.maxTrips-1))
		}
		return nil
	})
	return err
}

func (r *Redis) Recent(ctx context.Context, driverID string, limit int) ([]triplog.TripRecord, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	raw, err := r.client.LRange(ctx, tripsKey(driverID), 0, stop).Result()
	if err != nil {
		return nil, err
	}
	trips := make([]triplog.TripRecord, 0, len(raw))
	for _, item := range raw {
		var rec triplog.TripRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode trip: %w", err)
		}
		trips = append(trips, rec)
	}
	return trips, nil
}

func (r *Redis) Get(ctx context.Context, driverID, tripID string) (triplog.TripRecord, error) {
	trips, err := r.Recent(ctx, driverID, 0)
	if err != nil {
		return triplog.TripRecord{}, err
	}
	for _, rec := range trips {
		if rec.ID == tripID {
			return rec, nil
		}
	}
	return triplog.TripRecord{}, ErrTripNotFound
}
