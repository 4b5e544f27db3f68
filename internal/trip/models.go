package trip

import (
	"fmt"

	"backend-drivemate/internal/triplog"
)

// Summary is a stored trip as the history list shows it.
type Summary struct {
	triplog.TripRecord
	DurationText string `json:"duration_text"`
}

type TripInsights struct {
	TripID   string           `json:"trip_id"`
	Insights triplog.Insights `json:"insights"`
}

type Totals struct {
	Trips        int     `json:"trips"`
	DistanceKm   float64 `json:"distance_km"`
	DurationSec  int64   `json:"duration_sec"`
	DurationText string  `json:"duration_text"`
	AvgSpeedKmh  float64 `json:"avg_speed_kmh"`
}

type Dashboard struct {
	DriverID       string            `json:"driver_id"`
	DisplayName    string            `json:"display_name"`
	ProfileImage   string            `json:"profile_image,omitempty"`
	LatestTrip     *Summary          `json:"latest_trip"`
	LatestInsights *triplog.Insights `json:"latest_insights"`
	Totals         Totals            `json:"totals"`
	RecentTrips    []Summary         `json:"recent_trips"`
}

// FormatDuration renders seconds as "{h}h {m}m {s}s".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh %dm %ds", seconds/3600, seconds%3600/60, seconds%60)
}

func summarize(rec triplog.TripRecord) Summary {
	return Summary{TripRecord: rec, DurationText: FormatDuration(rec.Duration)}
}
