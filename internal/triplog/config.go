package triplog

// Config holds the filtering and scoring thresholds used by a session.
type Config struct {
	// Fixes reporting a horizontal accuracy above this are dropped.
	AccuracyGateMeters float64
	// Minimum displacement between accepted fixes before it counts toward distance.
	MinMovementKm float64
	// Maximum number of recent speed samples retained.
	WindowSize int

	SpeedLimitKmh     float64
	HardBrakeDropKmh  float64
	RapidAccelRiseKmh float64
}

func DefaultConfig() Config {
	return Config{
		AccuracyGateMeters: 50,
		MinMovementKm:      0.003,
		WindowSize:         20,
		SpeedLimitKmh:      85,
		HardBrakeDropKmh:   12,
		RapidAccelRiseKmh:  3,
	}
}
