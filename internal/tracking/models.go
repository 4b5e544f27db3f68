package tracking

import (
	"errors"
	"time"

	"backend-drivemate/internal/triplog"
)

// LiveView is what a driver's screen shows while a trip is being logged.
type LiveView struct {
	DriverID string `json:"driver_id"`
	triplog.Snapshot
	Insights triplog.Insights `json:"insights"`
}

type FixResult struct {
	LiveView
	Accepted bool `json:"accepted"`
}

// StopResult carries the finished trip. Saved is false when persistence failed; the
// session has ended regardless.
type StopResult struct {
	DriverID string             `json:"driver_id"`
	Trip     triplog.TripRecord `json:"trip"`
	Insights triplog.Insights   `json:"insights"`
	Saved    bool               `json:"saved"`
}

// Event is the envelope pushed to live stream subscribers.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

const (
	EventStarted   = "started"
	EventTick      = "tick"
	EventFix       = "fix"
	EventStopped   = "stopped"
	EventAbandoned = "abandoned"
)

// tickRequest carries the client's clock; an empty body ticks with the server clock.
type tickRequest struct {
	Timestamp time.Time `json:"timestamp"`
}

type fixRequest struct {
	Latitude  *float64  `json:"latitude"`
	Longitude *float64  `json:"longitude"`
	SpeedMps  *float64  `json:"speed_mps"`
	AccuracyM *float64  `json:"accuracy_m"`
	Timestamp time.Time `json:"timestamp"`
}

var (
	errMissingCoordinates = errors.New("latitude and longitude required")
	errCoordinatesRange   = errors.New("latitude or longitude out of range")
)

func (r fixRequest) toFix(now time.Time) (triplog.PositionFix, error) {
	if r.Latitude == nil || r.Longitude == nil {
		return triplog.PositionFix{}, errMissingCoordinates
	}
	if *r.Latitude < -90 || *r.Latitude > 90 || *r.Longitude < -180 || *r.Longitude > 180 {
		return triplog.PositionFix{}, errCoordinatesRange
	}
	ts := r.Timestamp
	if ts.IsZero() {
		ts = now
	}
	return triplog.PositionFix{
		Latitude:                 *r.Latitude,
		Longitude:                *r.Longitude,
		SpeedMetersPerSecond:     r.SpeedMps,
		HorizontalAccuracyMeters: r.AccuracyM,
		Timestamp:                ts,
	}, nil
}
