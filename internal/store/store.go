package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"backend-drivemate/internal/config"
	"backend-drivemate/internal/db"
	"backend-drivemate/internal/triplog"

	"github.com/redis/go-redis/v9"
)

var ErrTripNotFound = errors.New("trip not found")

// TripStore persists completed trips and lists them most-recent-first.
type TripStore interface {
	Save(ctx context.Context, driverID string, rec triplog.TripRecord) error
	Recent(ctx context.Context, driverID string, limit int) ([]triplog.TripRecord, error)
	Get(ctx context.Context, driverID, tripID string) (triplog.TripRecord, error)
}

// New builds the stores named in cfg.TripStores. More than one backend yields a Fanout
// that writes to all of them and reads from the first.
func New(ctx context.Context, cfg config.Config, pg db.Querier, rdb *redis.Client, sqlite *sql.DB) (TripStore, error) {
	var stores []TripStore
	for _, name := range cfg.Stores() {
		switch name {
		case "postgres":
			if pg == nil {
				return nil, fmt.Errorf("trip store %q: postgres not connected", name)
			}
			stores = append(stores, NewPostgres(pg))
		case "redis":
			if rdb == nil {
				return nil, fmt.Errorf("trip store %q: redis not connected", name)
			}
			stores = append(stores, NewRedis(rdb, 0))
		case "sqlite":
			if sqlite == nil {
				return nil, fmt.Errorf("trip store %q: sqlite not connected", name)
			}
			s, err := NewSQLite(ctx, sqlite)
			if err != nil {
				return nil, err
			}
			stores = append(stores, s)
		default:
			return nil, fmt.Errorf("unknown trip store %q", name)
		}
	}

	switch len(stores) {
	case 0:
		return nil, errors.New("no trip store configured")
	case 1:
		return stores[0], nil
	default:
		return NewFanout(stores...), nil
	}
}
