// Package daemon serves a live meeting over a local HTTP API with an SSE feed.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/theirongolddev/meetcost/internal/cli"
	"github.com/theirongolddev/meetcost/internal/logging"
	"github.com/theirongolddev/meetcost/internal/meeting"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr              string
	Interval          time.Duration
	EventsBuffer      int
	AllowedOrigins    []string
	RequestsPerSecond float64
	Burst             int
	Logger            *log.Logger
}

// Snapshot is the meeting state carried by status and event payloads.
type Snapshot struct {
	At              time.Time `json:"at"`
	State           string    `json:"state"`
	ElapsedSecs     int64     `json:"elapsed_secs"`
	Elapsed         string    `json:"elapsed"`
	Attendees       int       `json:"attendees"`
	HourlyRate      float64   `json:"hourly_rate"`
	CostPerSecond   float64   `json:"cost_per_second"`
	PerMinute       float64   `json:"per_minute"`
	CurrentCost     float64   `json:"current_cost"`
	ProjectedCost   float64   `json:"projected_cost"`
	ProgressPercent float64   `json:"progress_percent"`
	TargetMinutes   *int      `json:"target_minutes"`
	RealityCheck    string    `json:"reality_check,omitempty"`
	Tier            string    `json:"tier"`
}

// Delta captures what changed between two snapshots.
type Delta struct {
	ElapsedSecs int64   `json:"elapsed_secs"`
	Cost        float64 `json:"cost"`
}

func (d Delta) isZero() bool {
	return d.ElapsedSecs == 0 && d.Cost == 0
}

// Event is emitted whenever the meeting changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Event types.
const (
	EventSnapshot = "snapshot"
	EventTick     = "tick"
	EventState    = "state"
	EventRoster   = "roster"
	EventTarget   = "target"
	EventReset    = "reset"
)

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastTickAt      time.Time `json:"last_tick_at"`
	TickIntervalMs  int64     `json:"tick_interval_ms"`
	TickCount       int64     `json:"tick_count"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service owns one meeting session and exposes it over HTTP.
type Service struct {
	cfg     Config
	log     *log.Logger
	session *meeting.Session
	limiter *RateLimiter

	mu          sync.RWMutex
	startedAt   time.Time
	lastTickAt  time.Time
	tickCount   int64
	lastError   string
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event

	// clock is nudged after every mutation so Run can re-arm its tick timer.
	clock chan struct{}
}

// New returns a daemon service driving session.
func New(cfg Config, session *meeting.Session) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}

	s := &Service{
		cfg:       cfg,
		log:       cfg.Logger,
		session:   session,
		limiter:   NewRateLimiter(cfg.RequestsPerSecond, cfg.Burst),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
		clock:     make(chan struct{}, 1),
	}
	s.snapshot = s.currentSnapshot(time.Now())
	return s
}

// Handler returns the routed HTTP handler, CORS included.
func (s *Service) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/v1/status", s.handleStatus).Methods(http.MethodGet)
	r.HandleFunc("/v1/events", s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/v1/stream", s.handleStream).Methods(http.MethodGet)
	r.HandleFunc("/v1/attendees", s.handleListAttendees).Methods(http.MethodGet)

	write := r.PathPrefix("/v1").Subrouter()
	write.Use(s.limiter.Middleware)
	write.HandleFunc("/toggle", s.handleToggle).Methods(http.MethodPost)
	write.HandleFunc("/reset", s.handleReset).Methods(http.MethodPost)
	write.HandleFunc("/target", s.handleTarget).Methods(http.MethodPut)
	write.HandleFunc("/attendees", s.handleAddAttendee).Methods(http.MethodPost)
	write.HandleFunc("/attendees/{id}", s.handleUpdateAttendee).Methods(http.MethodPatch)
	write.HandleFunc("/attendees/{id}", s.handleDeleteAttendee).Methods(http.MethodDelete)

	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
	})
	return c.Handler(r)
}

// Run serves HTTP and ticks the meeting clock until ctx is canceled. On
// shutdown an in-progress meeting is recorded to history.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("serving meeting", "addr", s.cfg.Addr)

	// The tick timer is armed per timer generation. A start or resume waits a
	// full interval before its first second.
	var (
		timer    *time.Timer
		tick     <-chan time.Time
		armedGen uint64
	)
	disarm := func() {
		if timer != nil {
			timer.Stop()
		}
		timer, tick = nil, nil
	}
	arm := func(gen uint64) {
		disarm()
		armedGen = gen
		timer = time.NewTimer(s.cfg.Interval)
		tick = timer.C
	}
	follow := func() {
		s.mu.RLock()
		running, gen := s.session.Running(), s.session.Generation()
		s.mu.RUnlock()
		switch {
		case !running:
			disarm()
		case tick == nil || gen != armedGen:
			arm(gen)
		}
	}
	defer disarm()
	follow()

	for {
		select {
		case <-ctx.Done():
			s.finish()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-s.clock:
			follow()
		case <-tick:
			if s.tickOnce(armedGen) {
				timer.Reset(s.cfg.Interval)
			} else {
				disarm()
				follow()
			}
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) finish() {
	s.mu.Lock()
	rec, ok := s.session.Finish()
	s.mu.Unlock()
	if ok {
		s.log.Info("recorded meeting", "elapsed", cli.FormatElapsed(rec.ElapsedSecs), "cost", rec.TotalCost)
	}
}

// tickOnce advances a running meeting by one second and publishes the change.
// Ticks armed for an older timer generation are dropped.
func (s *Service) tickOnce(gen uint64) bool {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	applied := s.session.Tick(gen)
	s.lastTickAt = now
	if !applied {
		return false
	}
	s.tickCount++
	if ev, publish := s.recordLocked(EventTick, now); publish {
		s.publishLocked(ev)
	}
	return true
}

// mutate applies fn to the session under lock and publishes a typed event.
// fn must validate before changing anything: an error means no change.
func (s *Service) mutate(evType string, fn func(*meeting.Session) error) (Snapshot, error) {
	now := time.Now()

	s.mu.Lock()
	if err := fn(s.session); err != nil {
		s.mu.Unlock()
		return Snapshot{}, err
	}
	s.lastError = ""
	if err := s.session.PersistErr(); err != nil {
		s.lastError = err.Error()
	}
	ev, _ := s.recordLocked(evType, now)
	s.publishLocked(ev)
	snap := s.snapshot
	s.mu.Unlock()

	select {
	case s.clock <- struct{}{}:
	default:
	}
	return snap, nil
}

// recordLocked refreshes the cached snapshot and builds the matching event.
// Tick events with no visible change are not published.
func (s *Service) recordLocked(evType string, now time.Time) (Event, bool) {
	prev := s.snapshot
	snap := s.currentSnapshot(now)
	s.snapshot = snap

	delta := diffSnapshots(prev, snap)
	if evType == EventTick && delta.isZero() {
		return Event{}, false
	}
	s.nextEventID++
	return Event{
		ID:        s.nextEventID,
		Type:      evType,
		Timestamp: now,
		Snapshot:  snap,
		Delta:     delta,
	}, true
}

func (s *Service) currentSnapshot(at time.Time) Snapshot {
	return snapshotFrom(s.session.Snapshot(), at)
}

func snapshotFrom(ms meeting.Snapshot, at time.Time) Snapshot {
	p := ms.Projection
	snap := Snapshot{
		At:              at,
		State:           ms.State.String(),
		ElapsedSecs:     ms.Elapsed,
		Elapsed:         cli.FormatElapsed(ms.Elapsed),
		Attendees:       len(ms.Attendees),
		HourlyRate:      p.HourlyRate,
		CostPerSecond:   p.CostPerSecond,
		PerMinute:       p.PerMinute,
		CurrentCost:     p.CurrentCost,
		ProjectedCost:   p.ProjectedCost,
		ProgressPercent: p.ProgressPercent,
		Tier:            ms.Tier.String(),
	}
	if ms.Target.Set {
		m := ms.Target.Minutes
		snap.TargetMinutes = &m
	}
	if ms.RealityCheck != nil {
		snap.RealityCheck = ms.RealityCheck.Label
	}
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		ElapsedSecs: curr.ElapsedSecs - prev.ElapsedSecs,
		Cost:        curr.CurrentCost - prev.CurrentCost,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked(ev)
}

// publishLocked appends ev to the ring and fans it out. Callers hold s.mu,
// which keeps event IDs in order.
func (s *Service) publishLocked(ev Event) {
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastTickAt:      s.lastTickAt,
		TickIntervalMs:  s.cfg.Interval.Milliseconds(),
		TickCount:       s.tickCount,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
