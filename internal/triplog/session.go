package triplog

import (
	"errors"
	"math"
	"time"

	"backend-drivemate/internal/shared/geo"

	"github.com/google/uuid"
)

var (
	ErrAlreadyRunning = errors.New("trip session already running")
	ErrNotRunning     = errors.New("trip session not running")
)

// Session turns a stream of position fixes and clock ticks into live trip metrics.
// It is not safe for concurrent use; callers serialize Start, OnTick, OnFix and Stop.
type Session struct {
	cfg Config

	status         Status
	startedAt      time.Time
	elapsedSeconds int64
	distanceKm     float64
	lastAccepted   *coordinate
	speedSumKmh    float64
	speedSamples   int
	recent         *speedWindow
}

func NewSession(cfg Config) *Session {
	s := &Session{cfg: cfg}
	s.reset()
	return s
}

func (s *Session) reset() {
	s.status = StatusIdle
	s.startedAt = time.Time{}
	s.elapsedSeconds = 0
	s.distanceKm = 0
	s.lastAccepted = nil
	s.speedSumKmh = 0
	s.speedSamples = 0
	s.recent = newSpeedWindow(s.cfg.WindowSize)
}

func (s *Session) Status() Status {
	return s.status
}

func (s *Session) Start(now time.Time) error {
	if s.status == StatusRunning {
		return ErrAlreadyRunning
	}
	s.reset()
	s.recent = newSpeedWindow(s.cfg.WindowSize, 0)
	s.startedAt = now
	s.status = StatusRunning
	return nil
}

// OnTick recomputes elapsed time from the start instant, so replayed or late ticks never double-count.
func (s *Session) OnTick(now time.Time) {
	if s.status != StatusRunning {
		return
	}
	elapsed := int64(math.Floor(now.Sub(s.startedAt).Seconds()))
	if elapsed < 0 {
		elapsed = 0
	}
	s.elapsedSeconds = elapsed
}

// OnFix folds one position fix into the session. It reports false when the fix was
// dropped, either because the session is idle or because the fix failed the accuracy gate.
func (s *Session) OnFix(fix PositionFix) bool {
	if s.status != StatusRunning {
		return false
	}
	if acc := fix.HorizontalAccuracyMeters; acc != nil && *acc > s.cfg.AccuracyGateMeters {
		return false
	}

	curr := coordinate{lat: fix.Latitude, lng: fix.Longitude}
	if s.lastAccepted != nil {
		deltaKm := geo.HaversineKm(s.lastAccepted.lat, s.lastAccepted.lng, curr.lat, curr.lng)
		if deltaKm >= s.cfg.MinMovementKm {
			s.distanceKm += deltaKm
		}
	}

	speed := fix.speedKmh()
	s.recent.push(roundTo(speed, 2))
	s.speedSumKmh += speed
	s.speedSamples++

	s.lastAccepted = &curr
	return true
}

func (s *Session) avgSpeedKmh() float64 {
	return s.speedSumKmh / float64(max(1, s.speedSamples))
}

func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Status:          s.status,
		StartedAt:       s.startedAt,
		ElapsedSeconds:  s.elapsedSeconds,
		DistanceKm:      s.distanceKm,
		AvgSpeedKmh:     s.avgSpeedKmh(),
		RecentSpeedsKmh: s.recent.snapshot(),
	}
}

// Stop ends the session and returns its record. The session is Idle with cleared
// accumulators afterwards.
func (s *Session) Stop(now time.Time) (TripRecord, error) {
	if s.status != StatusRunning {
		return TripRecord{}, ErrNotRunning
	}

	record := TripRecord{
		ID:           uuid.Must(uuid.NewV7()).String(),
		StartTime:    s.startedAt.UTC(),
		EndTime:      now.UTC(),
		Duration:     s.elapsedSeconds,
		DistanceKm:   roundTo(s.distanceKm, 3),
		AvgSpeedKmh:  roundTo(s.avgSpeedKmh(), 2),
		SpeedSamples: s.recent.snapshot(),
	}
	s.reset()
	return record, nil
}
