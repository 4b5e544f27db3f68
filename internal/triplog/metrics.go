package triplog

import "math"

// Insights are the behavioral scores derived from a speed series.
type Insights struct {
	SpeedAdherence  int `json:"speed_adherence_pct"`
	HardBrakes      int `json:"hard_brakes"`
	RapidAccels     int `json:"rapid_accels"`
	SmoothnessScore int `json:"smoothness_pct"`
}

// SpeedAdherence is the rounded percentage of samples at or under the speed limit.
func (c Config) SpeedAdherence(speeds []float64) int {
	if len(speeds) == 0 {
		return 100
	}
	ok := 0
	for _, v := range speeds {
		if v <= c.SpeedLimitKmh {
			ok++
		}
	}
	return int(math.Round(float64(ok) / float64(len(speeds)) * 100))
}

func (c Config) HardBrakeCount(speeds []float64) int {
	n := 0
	for i := 1; i < len(speeds); i++ {
		if speeds[i-1]-speeds[i] > c.HardBrakeDropKmh {
			n++
		}
	}
	return n
}

func (c Config) RapidAccelCount(speeds []float64) int {
	n := 0
	for i := 1; i < len(speeds); i++ {
		if speeds[i]-speeds[i-1] > c.RapidAccelRiseKmh {
			n++
		}
	}
	return n
}

// SmoothnessScore subtracts the total absolute speed change from 100, floored at 0.
func (c Config) SmoothnessScore(speeds []float64) int {
	if len(speeds) == 0 {
		return 100
	}
	jerk := 0.0
	for i := 1; i < len(speeds); i++ {
		jerk += math.Abs(speeds[i] - speeds[i-1])
	}
	return int(math.Round(math.Max(0, 100-jerk)))
}

func (c Config) Analyze(speeds []float64) Insights {
	return Insights{
		SpeedAdherence:  c.SpeedAdherence(speeds),
		HardBrakes:      c.HardBrakeCount(speeds),
		RapidAccels:     c.RapidAccelCount(speeds),
		SmoothnessScore: c.SmoothnessScore(speeds),
	}
}

func SpeedAdherence(speeds []float64) int  { return DefaultConfig().SpeedAdherence(speeds) }
func HardBrakeCount(speeds []float64) int  { return DefaultConfig().HardBrakeCount(speeds) }
func RapidAccelCount(speeds []float64) int { return DefaultConfig().RapidAccelCount(speeds) }
func SmoothnessScore(speeds []float64) int { return DefaultConfig().SmoothnessScore(speeds) }
func Analyze(speeds []float64) Insights    { return DefaultConfig().Analyze(speeds) }
