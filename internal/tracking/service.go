package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"backend-drivemate/internal/logging"
	"backend-drivemate/internal/store"
	"backend-drivemate/internal/stream"
	"backend-drivemate/internal/triplog"
)

const saveTimeout = 5 * time.Second

type Options struct {
	Config       triplog.Config
	TickInterval time.Duration
	Now          func() time.Time
	Logger       *slog.Logger
}

// Service owns one trip session per driver together with the resources the engine
// itself does not own: the tick timer, persistence of finished trips and live fan-out.
type Service struct {
	trips  store.TripStore
	hub    *stream.Hub
	cfg    triplog.Config
	every  time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*driverSession
}

type driverSession struct {
	mu     sync.Mutex
	engine *triplog.Session

	stopTicker chan struct{}
	tickerDone chan struct{}
	release    sync.Once
}

func NewService(trips store.TripStore, hub *stream.Hub, opts Options) *Service {
	if opts.Config == (triplog.Config{}) {
		opts.Config = triplog.DefaultConfig()
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		trips:    trips,
		hub:      hub,
		cfg:      opts.Config,
		every:    opts.TickInterval,
		now:      opts.Now,
		logger:   opts.Logger,
		sessions: map[string]*driverSession{},
	}
}

func (s *Service) Start(ctx context.Context, driverID string) (LiveView, error) {
	s.mu.Lock()
	if _, running := s.sessions[driverID]; running {
		s.mu.Unlock()
		return LiveView{}, triplog.ErrAlreadyRunning
	}

	ds := &driverSession{
		engine:     triplog.NewSession(s.cfg),
		stopTicker: make(chan struct{}),
		tickerDone: make(chan struct{}),
	}
	if err := ds.engine.Start(s.now()); err != nil {
		s.mu.Unlock()
		return LiveView{}, err
	}
	// held until the started event is out so no fix event can precede it
	ds.mu.Lock()
	s.sessions[driverID] = ds
	s.mu.Unlock()

	view := s.liveView(driverID, ds.engine.Snapshot())
	s.publish(driverID, EventStarted, view)
	ds.mu.Unlock()

	go s.runTicker(driverID, ds)

	logging.FromContext(ctx).Info("trip_started",
		slog.String("driver_id", driverID),
		slog.Time("started_at", view.StartedAt))
	return view, nil
}

func (s *Service) runTicker(driverID string, ds *driverSession) {
	defer close(ds.tickerDone)
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()

	for {
		select {
		case <-ds.stopTicker:
			return
		case <-ticker.C:
			ds.mu.Lock()
			ds.engine.OnTick(s.now())
			if ds.engine.Status() == triplog.StatusRunning {
				s.publish(driverID, EventTick, s.liveView(driverID, ds.engine.Snapshot()))
			}
			ds.mu.Unlock()
		}
	}
}

// releaseTicker stops the tick goroutine and waits for it; safe to call more than once.
func (ds *driverSession) releaseTicker() {
	ds.release.Do(func() {
		close(ds.stopTicker)
		<-ds.tickerDone
	})
}

func (s *Service) lookup(driverID string) (*driverSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.sessions[driverID]
	return ds, ok
}

func (s *Service) detach(driverID string) (*driverSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.sessions[driverID]
	if ok {
		delete(s.sessions, driverID)
	}
	return ds, ok
}

func (s *Service) AddFix(_ context.Context, driverID string, fix triplog.PositionFix) (FixResult, error) {
	ds, ok := s.lookup(driverID)
	if !ok {
		return FixResult{}, triplog.ErrNotRunning
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.engine.Status() != triplog.StatusRunning {
		return FixResult{}, triplog.ErrNotRunning
	}
	accepted := ds.engine.OnFix(fix)
	view := s.liveView(driverID, ds.engine.Snapshot())
	if accepted {
		s.publish(driverID, EventFix, view)
	}
	return FixResult{LiveView: view, Accepted: accepted}, nil
}

// Tick delivers a clock tick outside the timer, e.g. when the client reports its own clock.
func (s *Service) Tick(driverID string, now time.Time) (LiveView, error) {
	ds, ok := s.lookup(driverID)
	if !ok {
		return LiveView{}, triplog.ErrNotRunning
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.engine.Status() != triplog.StatusRunning {
		return LiveView{}, triplog.ErrNotRunning
	}
	ds.engine.OnTick(now)
	view := s.liveView(driverID, ds.engine.Snapshot())
	s.publish(driverID, EventTick, view)
	return view, nil
}

func (s *Service) Live(driverID string) (LiveView, error) {
	ds, ok := s.lookup(driverID)
	if !ok {
		return LiveView{}, triplog.ErrNotRunning
	}
	return s.view(driverID, ds), nil
}

// Stop ends the driver's trip and persists the record. A persistence failure is logged
// and reported through Saved; it never resurrects the session.
func (s *Service) Stop(ctx context.Context, driverID string) (StopResult, error) {
	ds, ok := s.detach(driverID)
	if !ok {
		return StopResult{}, triplog.ErrNotRunning
	}
	ds.releaseTicker()

	now := s.now()
	ds.mu.Lock()
	ds.engine.OnTick(now)
	rec, err := ds.engine.Stop(now)
	ds.mu.Unlock()
	if err != nil {
		return StopResult{}, err
	}

	result := StopResult{
		DriverID: driverID,
		Trip:     rec,
		Insights: s.cfg.Analyze(rec.SpeedSamples),
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
	defer cancel()
	if s.trips == nil {
		logging.LogError(s.logger, "trip not persisted", errors.New("no trip store configured"),
			slog.String("driver_id", driverID),
			slog.String("trip_id", rec.ID),
			slog.String("component", "tracking"))
	} else if err := s.trips.Save(saveCtx, driverID, rec); err != nil {
		logging.LogError(s.logger, "failed to save trip", err,
			slog.String("driver_id", driverID),
			slog.String("trip_id", rec.ID),
			slog.String("component", "tracking"))
	} else {
		result.Saved = true
	}

	s.publish(driverID, EventStopped, result)
	logging.LogOperation(logging.FromContext(ctx), "trip_stopped",
		slog.String("driver_id", driverID),
		slog.String("trip_id", rec.ID),
		slog.Int64("duration_sec", rec.Duration),
		slog.Float64("distance_km", rec.DistanceKm),
		slog.Bool("saved", result.Saved))
	return result, nil
}

// Abandon tears a session down without producing a trip record.
func (s *Service) Abandon(driverID string) error {
	ds, ok := s.detach(driverID)
	if !ok {
		return triplog.ErrNotRunning
	}
	ds.releaseTicker()
	s.publish(driverID, EventAbandoned, map[string]string{"driver_id": driverID})
	s.logger.Info("trip_abandoned", slog.String("driver_id", driverID))
	return nil
}

// Close abandons every running session and releases their timers.
func (s *Service) Close() {
	s.mu.Lock()
	drivers := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		drivers = append(drivers, id)
	}
	s.mu.Unlock()

	for _, id := range drivers {
		_ = s.Abandon(id)
	}
}

// IsRunning reports whether driverID has a trip in progress.
func (s *Service) IsRunning(driverID string) bool {
	_, ok := s.lookup(driverID)
	return ok
}

// Running reports how many sessions are active.
func (s *Service) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Service) view(driverID string, ds *driverSession) LiveView {
	ds.mu.Lock()
	defer ds.mu.Unlock()
	return s.liveView(driverID, ds.engine.Snapshot())
}

func (s *Service) liveView(driverID string, snap triplog.Snapshot) LiveView {
	return LiveView{
		DriverID: driverID,
		Snapshot: snap,
		Insights: s.cfg.Analyze(snap.RecentSpeedsKmh),
	}
}

func (s *Service) publish(driverID, eventType string, data any) {
	if s.hub == nil {
		return
	}
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		logging.LogError(s.logger, "failed to encode live event", err,
			slog.String("driver_id", driverID),
			slog.String("component", "tracking"))
		return
	}
	s.hub.Broadcast(driverID, payload)
}
