package triplog

import (
	"math"
	"time"
)

// PositionFix is one location observation delivered by the platform location provider.
// Speed and accuracy are optional; nil means the provider did not report them.
type PositionFix struct {
	Latitude                 float64   `json:"latitude"`
	Longitude                float64   `json:"longitude"`
	SpeedMetersPerSecond     *float64  `json:"speed_mps,omitempty"`
	HorizontalAccuracyMeters *float64  `json:"accuracy_m,omitempty"`
	Timestamp                time.Time `json:"timestamp"`
}

// speedKmh converts the reported speed, treating missing or non-finite values as stationary.
func (f PositionFix) speedKmh() float64 {
	if f.SpeedMetersPerSecond == nil {
		return 0
	}
	mps := *f.SpeedMetersPerSecond
	if math.IsNaN(mps) || math.IsInf(mps, 0) {
		return 0
	}
	return math.Max(0, mps*3.6)
}

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
)

// TripRecord is the immutable summary emitted when a session stops.
type TripRecord struct {
	ID           string    `json:"id"`
	StartTime    time.Time `json:"start_time"`
	EndTime      time.Time `json:"end_time"`
	Duration     int64     `json:"duration_sec"`
	DistanceKm   float64   `json:"distance_km"`
	AvgSpeedKmh  float64   `json:"avg_speed_kmh"`
	SpeedSamples []float64 `json:"speed_samples"`
}

// Snapshot is a read-only view of a session's live metrics.
type Snapshot struct {
	Status          Status    `json:"status"`
	StartedAt       time.Time `json:"started_at"`
	ElapsedSeconds  int64     `json:"elapsed_sec"`
	DistanceKm      float64   `json:"distance_km"`
	AvgSpeedKmh     float64   `json:"avg_speed_kmh"`
	RecentSpeedsKmh []float64 `json:"recent_speeds_kmh"`
}

type coordinate struct {
	lat, lng float64
}

func roundTo(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(x*p) / p
}
