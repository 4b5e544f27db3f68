package trip

import (
	"context"
	"fmt"
	"math"

	"backend-drivemate/internal/profile"
	"backend-drivemate/internal/store"
	"backend-drivemate/internal/triplog"
)

const DefaultHistoryLimit = 10

type Service struct {
	trips    store.TripStore
	profiles *profile.Service
	cfg      triplog.Config
}

func NewService(trips store.TripStore, profiles *profile.Service) *Service {
	if profiles == nil {
		profiles = profile.NewService(nil)
	}
	return &Service{trips: trips, profiles: profiles, cfg: triplog.DefaultConfig()}
}

func (s *Service) History(ctx context.Context, driverID string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	records, err := s.trips.Recent(ctx, driverID, limit)
	if err != nil {
		return nil, fmt.Errorf("load trips: %w", err)
	}
	out := make([]Summary, 0, len(records))
	for _, rec := range records {
		out = append(out, summarize(rec))
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, driverID, tripID string) (Summary, error) {
	rec, err := s.trips.Get(ctx, driverID, tripID)
	if err != nil {
		return Summary{}, err
	}
	return summarize(rec), nil
}

// Insights recomputes the behavioral scores of a stored trip from its speed samples.
func (s *Service) Insights(ctx context.Context, driverID, tripID string) (TripInsights, error) {
	rec, err := s.trips.Get(ctx, driverID, tripID)
	if err != nil {
		return TripInsights{}, err
	}
	return TripInsights{TripID: rec.ID, Insights: s.cfg.Analyze(rec.SpeedSamples)}, nil
}

func (s *Service) Dashboard(ctx context.Context, driverID string, limit int) (Dashboard, error) {
	p, err := s.profiles.Get(ctx, driverID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load profile: %w", err)
	}
	recent, err := s.History(ctx, driverID, limit)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		DriverID:     driverID,
		DisplayName:  profile.DisplayName(p),
		ProfileImage: profile.ProfileImage(p),
		RecentTrips:  recent,
		Totals:       totals(recent),
	}
	if len(recent) > 0 {
		latest := recent[0]
		insights := s.cfg.Analyze(latest.SpeedSamples)
		d.LatestTrip = &latest
		d.LatestInsights = &insights
	}
	return d, nil
}

// totals sums the given trips; the average is distance over driving time when time is known.
func totals(trips []Summary) Totals {
	t := Totals{Trips: len(trips)}
	var avgSum float64
	for _, rec := range trips {
		t.DistanceKm += rec.DistanceKm
		t.DurationSec += rec.Duration
		avgSum += rec.AvgSpeedKmh
	}
	t.DistanceKm = round(t.DistanceKm, 3)
	t.DurationText = FormatDuration(t.DurationSec)
	switch {
	case t.DurationSec > 0:
		t.AvgSpeedKmh = round(t.DistanceKm/(float64(t.DurationSec)/3600), 2)
	case len(trips) > 0:
		t.AvgSpeedKmh = round(avgSum/float64(len(trips)), 2)
	}
	return t
}

func round(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
