package store

import (
	"context"

	"backend-drivemate/internal/triplog"

	"golang.org/x/sync/errgroup"
)

// Fanout writes every trip to all of its stores concurrently and serves reads from the first.
type Fanout struct {
	stores []TripStore
}

func NewFanout(stores ...TripStore) *Fanout {
	return &Fanout{stores: stores}
}

func (f *Fanout) Save(ctx context.Context, driverID string, rec triplog.TripRecord) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, s := range f.stores {
		s := s
		g.Go(func() error {
			return s.Save(ctx, driverID, rec)
		})
	}
	return g.Wait()
}

func (f *Fanout) Recent(ctx context.Context, driverID string, limit int) ([]triplog.TripRecord, error) {
	return f.stores[0].Recent(ctx, driverID, limit)
}

func (f *Fanout) Get(ctx context.Context, driverID, tripID string) (triplog.TripRecord, error) {
	return f.stores[0].Get(ctx, driverID, tripID)
}
