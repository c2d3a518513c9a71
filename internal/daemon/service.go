// Package daemon provides the long-running background pacing monitor.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/theirongolddev/pacer/internal/async"
	"github.com/theirongolddev/pacer/internal/metrics"
	"github.com/theirongolddev/pacer/internal/store"
	"github.com/theirongolddev/pacer/internal/views"
)

// Event types.
const (
	EventSnapshot     = "snapshot"
	EventPacingChange = "pacing_change"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	Logger       *log.Logger
}

// Journal persists snapshots between runs.
type Journal interface {
	Record(s store.Snapshot) (int64, error)
	List(since time.Time, limit int) ([]store.Snapshot, error)
}

// Snapshot is a compact pacing state for status/event payloads.
type Snapshot struct {
	At                 time.Time `json:"at"`
	PeriodStart        string    `json:"period_start,omitempty"`
	PeriodEnd          string    `json:"period_end,omitempty"`
	Mode               string    `json:"mode"`
	PacingStatus       string    `json:"pacing_status"`
	StatusLabel        string    `json:"status_label"`
	TargetAmount       float64   `json:"target_amount"`
	CurrentSpend       float64   `json:"current_spend"`
	PacingPercentage   float64   `json:"pacing_percentage"`
	ExpectedPercentage float64   `json:"expected_percentage"`
	Income             *float64  `json:"income,omitempty"`
	Expenses           *float64  `json:"expenses,omitempty"`
	NetFlow            *float64  `json:"net_flow,omitempty"`
	RunwayMonths       *float64  `json:"runway_months,omitempty"`
	FormattedSpend     string    `json:"formatted_spend"`
	FormattedRunway    string    `json:"formatted_runway"`
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	CurrentSpend     float64 `json:"current_spend"`
	PacingPercentage float64 `json:"pacing_percentage"`
	FromStatus       string  `json:"from_status,omitempty"`
	ToStatus         string  `json:"to_status,omitempty"`
}

func (d Delta) isZero() bool {
	return d.CurrentSpend == 0 &&
		d.PacingPercentage == 0 &&
		d.FromStatus == d.ToStatus
}

// Event is emitted whenever the pacing snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
	Journal         bool      `json:"journal"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg      Config
	log      *log.Logger
	journal  Journal
	pacing   *async.Query[views.PacingModel]
	cashFlow *async.Query[views.CashFlowModel]

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service polling src. journal may be nil.
func New(cfg Config, src views.Source, o views.Options, journal Journal) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8797"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	o.Logger = logger

	return &Service{
		cfg:       cfg,
		log:       logger,
		journal:   journal,
		pacing:    views.NewPacing(src, o),
		cashFlow:  views.NewCashFlow(src, o),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Router returns the HTTP API.
func (s *Service) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)
		r.Get("/events", s.handleEvents)
		r.Get("/snapshots", s.handleSnapshots)
		r.Get("/stream", s.handleStream)
	})
	return r
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	s.mount(ctx)
	defer s.close()

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.refresh()
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) mount(ctx context.Context) {
	s.pacing.Start(ctx)
	s.cashFlow.Start(ctx)
}

func (s *Service) refresh() {
	s.pacing.Refresh()
	s.cashFlow.Refresh()
}

func (s *Service) close() {
	s.pacing.Close()
	s.cashFlow.Close()
}

// pollOnce waits for in-flight fetches and folds their results into the
// current snapshot.
func (s *Service) pollOnce(ctx context.Context) {
	_ = s.pacing.Wait(ctx)
	_ = s.cashFlow.Wait(ctx)
	ps := s.pacing.State()
	cs := s.cashFlow.State()
	now := time.Now()

	if ps.Error != "" || ps.Data == nil {
		msg := ps.Error
		if msg == "" {
			msg = "no pacing data"
		}
		s.mu.Lock()
		s.lastError = msg
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("poll failed", "err", msg)
		return
	}

	var cf *views.CashFlowModel
	if cs.Error == "" {
		cf = cs.Data
	} else {
		s.log.Warn("cash flow unavailable", "err", cs.Error)
	}
	snap := snapshotFromViews(*ps.Data, cf, now)

	if s.journal != nil {
		if _, err := s.journal.Record(journalEntry(snap)); err != nil {
			s.log.Error("recording snapshot", "err", err)
		}
	}

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = cs.Error

	switch {
	case !prevExists:
		s.nextEventID++
		ev = Event{ID: s.nextEventID, Type: EventSnapshot, Timestamp: now, Snapshot: snap}
		publish = true
	default:
		delta := diffSnapshots(prev, snap)
		if !delta.isZero() {
			s.nextEventID++
			typ := EventSnapshot
			if delta.FromStatus != delta.ToStatus {
				typ = EventPacingChange
			}
			ev = Event{ID: s.nextEventID, Type: typ, Timestamp: now, Snapshot: snap, Delta: delta}
			publish = true
		}
	}
	s.mu.Unlock()

	if publish {
		s.log.Debug("publishing event", "type", ev.Type, "id", ev.ID)
		s.publishEvent(ev)
	}
}

func snapshotFromViews(p views.PacingModel, cf *views.CashFlowModel, at time.Time) Snapshot {
	snap := Snapshot{
		At:                 at,
		PeriodStart:        p.PeriodStart,
		PeriodEnd:          p.PeriodEnd,
		Mode:               string(p.Mode),
		PacingStatus:       string(p.Status),
		StatusLabel:        p.StatusLabel,
		TargetAmount:       p.TargetAmount,
		CurrentSpend:       p.CurrentSpend,
		PacingPercentage:   p.PacingPercentage,
		ExpectedPercentage: p.ExpectedPercentage,
		FormattedSpend:     p.FormattedSpend,
		FormattedRunway:    metrics.FormatRunway(nil),
	}
	if cf != nil {
		income, expenses, net := cf.Income, cf.Expenses, cf.NetFlow
		snap.Income = &income
		snap.Expenses = &expenses
		snap.NetFlow = &net
		snap.RunwayMonths = cf.Runway
		snap.FormattedRunway = cf.FormattedRunway
	}
	return snap
}

func journalEntry(s Snapshot) store.Snapshot {
	return store.Snapshot{
		TakenAt:            s.At,
		PeriodStart:        s.PeriodStart,
		PeriodEnd:          s.PeriodEnd,
		Mode:               s.Mode,
		PacingStatus:       s.PacingStatus,
		TargetAmount:       s.TargetAmount,
		CurrentSpend:       s.CurrentSpend,
		PacingPercentage:   s.PacingPercentage,
		ExpectedPercentage: s.ExpectedPercentage,
		Income:             s.Income,
		Expenses:           s.Expenses,
		NetFlow:            s.NetFlow,
		RunwayMonths:       s.RunwayMonths,
	}
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		CurrentSpend:     curr.CurrentSpend - prev.CurrentSpend,
		PacingPercentage: curr.PacingPercentage - prev.PacingPercentage,
		FromStatus:       prev.PacingStatus,
		ToStatus:         curr.PacingStatus,
	}
}

func (s *Service) publishEvent(ev Event) {
	s.mu.Lock()
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
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
		Journal:         s.journal != nil,
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.snapshotStatus())
}

// handleEvents returns buffered events, optionally only those after ?since=ID.
func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	var since int64
	if raw := r.URL.Query().Get("since"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid since", http.StatusBadRequest)
			return
		}
		since = v
	}

	s.mu.RLock()
	events := make([]Event, 0, len(s.events))
	for _, ev := range s.events {
		if ev.ID > since {
			events = append(events, ev)
		}
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleSnapshots(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		http.Error(w, "journal disabled", http.StatusNotFound)
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = v
	}

	snaps, err := s.journal.List(time.Time{}, limit)
	if err != nil {
		s.log.Error("listing snapshots", "err", err)
		http.Error(w, "journal unavailable", http.StatusInternalServerError)
		return
	}
	if snaps == nil {
		snaps = []store.Snapshot{}
	}
	writeJSON(w, http.StatusOK, snaps)
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	current := Event{
		Type:      EventSnapshot,
		Timestamp: time.Now(),
		Snapshot:  s.snapshotStatus().Summary,
	}
	writeSSE(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
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
