package vitals

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/amarret/vitalview/internal/timing"
	"github.com/sirupsen/logrus"
)

// Options are the user preferences recognized by the session
type Options struct {
	EnableOverlay bool `json:"enableOverlay"`
	Debug         bool `json:"debug"`
	UserTiming    bool `json:"userTiming"`
}

// Store is the flat key-value persistence scoped to the page's origin
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Prefs exposes the current user preferences
type Prefs interface {
	Snapshot() Options
}

// Update is the outbound badge channel message
type Update struct {
	PassesAllThresholds Verdict     `json:"passesAllThresholds"`
	Metrics             *Scoreboard `json:"metrics"`
}

// Ack is the badge channel response; the tab id keys the
// background-load lookup
type Ack struct {
	TabID string `json:"tabId"`
}

// Channel relays scoreboard updates to the badge responder
type Channel interface {
	Send(ctx context.Context, update Update) (Ack, error)
}

// Renderer draws the on-page overlay fragment
type Renderer interface {
	Render(ctx context.Context, sb *Scoreboard, loadedInBackground bool) error
}

// BackgroundLookup reports whether a tab was loaded without
// foreground focus
type BackgroundLookup interface {
	LoadedInBackground(tabID string) bool
}

// SpanEmitter publishes sub-timing breakdown spans
type SpanEmitter interface {
	Emit(spans ...timing.Span)
}

// Source is the external measurement collaborator. Each registration
// installs a metric observer that invokes the callback one or more
// times per page life.
type Source interface {
	OnLCP(fn func(Observation), reportAllChanges bool) error
	OnCLS(fn func(Observation), reportAllChanges bool) error
	OnFID(fn func(Observation), reportAllChanges bool) error
	OnINP(fn func(Observation), reportAllChanges bool) error
}

// Navigation identifies the current page load
type Navigation struct {
	Start    float64
	Location string
}

// Persisted storage keys
const (
	keyMetrics    = "metrics"
	keyDebug      = "debug"
	keyUserTiming = "user-timing"
)

// SessionConfig tunes a session's behavior
type SessionConfig struct {
	// ReportAllChanges is forwarded to every observer registration
	ReportAllChanges bool
	// DebounceQuiet is the CLS quiet-period window (default 500ms)
	DebounceQuiet time.Duration
	// DebounceMaxWait caps how long a CLS broadcast can be delayed
	// during a continuous burst (default 1s)
	DebounceMaxWait time.Duration
	// OnObservation and OnBroadcast are optional telemetry hooks
	OnObservation func(metric Metric, value float64)
	OnBroadcast   func(verdict Verdict)
}

// Session aggregates metric observations for one navigation: it merges
// each into the scoreboard, classifies it against the thresholds,
// persists the result, notifies the badge channel and conditionally
// re-renders the overlay. All mutable state lives here; collaborators
// are injected and may be nil, in which case their step is skipped.
type Session struct {
	cfg      SessionConfig
	store    Store
	prefs    Prefs
	channel  Channel
	renderer Renderer
	tabs     BackgroundLookup
	spans    SpanEmitter

	clsDebounce *Debouncer
	now         func() time.Time

	mu          sync.Mutex
	sb          *Scoreboard
	nav         Navigation
	initialized bool
	installed   bool
	dismissed   bool
	debug       bool
	userTiming  bool
	pendingCLS  Observation
	hasCLS      bool
}

// NewSession creates a session with its collaborators injected
func NewSession(store Store, prefs Prefs, channel Channel, renderer Renderer, tabs BackgroundLookup, spans SpanEmitter, cfg SessionConfig) *Session {
	if cfg.DebounceQuiet <= 0 {
		cfg.DebounceQuiet = 500 * time.Millisecond
	}
	if cfg.DebounceMaxWait <= 0 {
		cfg.DebounceMaxWait = time.Second
	}

	return &Session{
		cfg:         cfg,
		store:       store,
		prefs:       prefs,
		channel:     channel,
		renderer:    renderer,
		tabs:        tabs,
		spans:       spans,
		clsDebounce: NewDebouncer(cfg.DebounceQuiet, cfg.DebounceMaxWait),
		now:         time.Now,
	}
}

// Init loads the persisted scoreboard and validates it against the
// current navigation. On mismatch a fresh all-null scoreboard is
// created. The session-local dismissed flag resets here, so a new
// navigation re-enables the overlay. Idempotent within one navigation
// as long as storage is untouched between calls.
func (s *Session) Init(nav Navigation) *Scoreboard {
	sb := s.loadScoreboard(nav)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nav = nav
	s.sb = sb
	s.dismissed = false
	s.initialized = true

	return sb.Clone()
}

// loadScoreboard restores the persisted scoreboard when its navigation
// start matches, and rebuilds fresh otherwise
func (s *Session) loadScoreboard(nav Navigation) *Scoreboard {
	fresh := NewScoreboard(nav.Start, ShortLocation(nav.Location))

	if s.store == nil {
		return fresh
	}

	raw, ok, err := s.store.Get(keyMetrics)
	if err != nil {
		logrus.Warnf("Failed to load persisted scoreboard: %v", err)
		return fresh
	}
	if !ok {
		return fresh
	}

	var sb Scoreboard
	if err := json.Unmarshal([]byte(raw), &sb); err != nil {
		logrus.Warnf("Discarding unreadable persisted scoreboard: %v", err)
		return fresh
	}

	if sb.NavigationStart != nav.Start {
		logrus.Debugf("Persisted scoreboard is stale (navigationStart %v != %v), rebuilding",
			sb.NavigationStart, nav.Start)
		return fresh
	}

	return &sb
}

// InstallObservers registers the four metric callbacks with the
// measurement source. The source offers no deregistration, so a guard
// ensures exactly one set of registrations per session instance.
func (s *Session) InstallObservers(ctx context.Context, src Source) error {
	s.mu.Lock()
	if s.installed {
		s.mu.Unlock()
		return nil
	}
	s.installed = true
	s.mu.Unlock()

	reportAll := s.cfg.ReportAllChanges

	if err := src.OnLCP(func(obs Observation) { s.HandleObservation(ctx, LCP, obs) }, reportAll); err != nil {
		return err
	}
	if err := src.OnCLS(func(obs Observation) { s.HandleCLS(ctx, obs) }, reportAll); err != nil {
		return err
	}
	if err := src.OnFID(func(obs Observation) { s.HandleObservation(ctx, FID, obs) }, reportAll); err != nil {
		return err
	}
	return src.OnINP(func(obs Observation) { s.HandleObservation(ctx, INP, obs) }, reportAll)
}

// HandleObservation merges one metric observation into the scoreboard,
// persists it, notifies the badge channel and renders the overlay from
// the channel's response. Unknown metrics and observations arriving
// before Init are dropped.
func (s *Session) HandleObservation(ctx context.Context, metric Metric, obs Observation) {
	opts := s.options()

	s.mu.Lock()
	if !s.initialized || !metric.Known() {
		s.mu.Unlock()
		return
	}

	s.sb.Apply(metric, obs.Value)
	s.sb.Location = ShortLocation(s.nav.Location)
	s.sb.Timestamp = s.now().Format("15:04:05")

	verdict := s.sb.Verdict()
	snapshot := s.sb.Clone()
	s.mu.Unlock()

	logrus.Debugf("Observed %s=%.2f (verdict %s)", metric, obs.Value, verdict)

	if s.cfg.OnObservation != nil {
		s.cfg.OnObservation(metric, obs.Value)
	}

	if opts.UserTiming {
		s.emitBreakdown(metric, obs)
	}

	s.persist(snapshot)
	s.broadcast(ctx, verdict, snapshot)
}

// HandleCLS stores the latest layout-shift observation and schedules a
// debounced broadcast. CLS can fire at high frequency during animation,
// so bursts coalesce into a trailing broadcast of the most recent value,
// forced at least once per max-wait window.
func (s *Session) HandleCLS(ctx context.Context, obs Observation) {
	s.mu.Lock()
	if !s.initialized {
		s.mu.Unlock()
		return
	}
	s.pendingCLS = obs
	s.hasCLS = true
	s.mu.Unlock()

	s.clsDebounce.Call(func() {
		s.mu.Lock()
		latest := s.pendingCLS
		ok := s.hasCLS
		s.hasCLS = false
		s.mu.Unlock()

		if ok {
			s.HandleObservation(ctx, CLS, latest)
		}
	})
}

// Dismiss marks the overlay as dismissed for the rest of this
// navigation. Only Init resets the flag.
func (s *Session) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dismissed = true
}

// Dismissed reports whether the overlay was dismissed this navigation
func (s *Session) Dismissed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dismissed
}

// Scoreboard returns a copy of the current scoreboard, or nil before Init
func (s *Session) Scoreboard() *Scoreboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sb == nil {
		return nil
	}
	return s.sb.Clone()
}

// Flush persists the current scoreboard, for use during shutdown
func (s *Session) Flush() {
	if sb := s.Scoreboard(); sb != nil {
		s.persist(sb)
	}
}

// Close stops the CLS debounce timer
func (s *Session) Close() {
	s.clsDebounce.Stop()
}

// options reads the current preferences, tolerating a missing store
func (s *Session) options() Options {
	if s.prefs == nil {
		return Options{}
	}
	return s.prefs.Snapshot()
}

// persist overwrites the stored scoreboard snapshot. Failures are
// logged and swallowed: losing an update is acceptable, corrupting
// cross-navigation state is not.
func (s *Session) persist(sb *Scoreboard) {
	if s.store == nil {
		return
	}

	data, err := json.Marshal(sb)
	if err != nil {
		logrus.Warnf("Failed to serialize scoreboard: %v", err)
		return
	}

	if err := s.store.Set(keyMetrics, string(data)); err != nil {
		logrus.Warnf("Failed to persist scoreboard: %v", err)
	}
}

// broadcast sends the classification to the badge channel and invokes
// the renderer from the response. A missing or unresponsive channel
// silently skips the render.
func (s *Session) broadcast(ctx context.Context, verdict Verdict, sb *Scoreboard) {
	if s.channel == nil {
		return
	}

	ack, err := s.channel.Send(ctx, Update{PassesAllThresholds: verdict, Metrics: sb})
	if err != nil {
		logrus.Debugf("Badge channel unavailable, skipping render: %v", err)
		return
	}

	if s.cfg.OnBroadcast != nil {
		s.cfg.OnBroadcast(verdict)
	}

	loadedInBackground := false
	if s.tabs != nil {
		loadedInBackground = s.tabs.LoadedInBackground(ack.TabID)
	}

	s.render(ctx, sb, loadedInBackground)
}

// render reconciles preferences and draws the overlay if it is enabled
// and has not been dismissed this navigation
func (s *Session) render(ctx context.Context, sb *Scoreboard, loadedInBackground bool) {
	opts := s.options()
	s.reconcile(opts)

	s.mu.Lock()
	dismissed := s.dismissed
	s.mu.Unlock()

	if !opts.EnableOverlay || dismissed {
		return
	}

	if s.renderer == nil {
		return
	}

	if err := s.renderer.Render(ctx, sb, loadedInBackground); err != nil {
		logrus.Warnf("Overlay render failed: %v", err)
	}
}

// reconcile applies the debug and user-timing preferences, toggling
// the logging level and persisting or clearing the storage markers
func (s *Session) reconcile(opts Options) {
	s.mu.Lock()
	debugChanged := opts.Debug != s.debug
	timingChanged := opts.UserTiming != s.userTiming
	s.debug = opts.Debug
	s.userTiming = opts.UserTiming
	s.mu.Unlock()

	if debugChanged {
		if opts.Debug {
			logrus.SetLevel(logrus.DebugLevel)
			s.setMarker(keyDebug, true)
		} else {
			logrus.SetLevel(logrus.InfoLevel)
			s.setMarker(keyDebug, false)
		}
	}

	if timingChanged {
		s.setMarker(keyUserTiming, opts.UserTiming)
	}
}

// setMarker persists or clears a boolean presence marker
func (s *Session) setMarker(key string, present bool) {
	if s.store == nil {
		return
	}

	var err error
	if present {
		err = s.store.Set(key, "1")
	} else {
		err = s.store.Delete(key)
	}
	if err != nil {
		logrus.Warnf("Failed to update %s marker: %v", key, err)
	}
}

// emitBreakdown derives and emits the sub-timing spans for FID and INP.
// LCP and CLS have no natural duration to visualize.
func (s *Session) emitBreakdown(metric Metric, obs Observation) {
	if s.spans == nil || len(obs.Entries) == 0 {
		return
	}

	switch metric {
	case FID:
		entry := obs.Entries[0]
		s.spans.Emit(timing.FIDBreakdown(entry.StartTime, entry.ProcessingStart))
	case INP:
		entry := representativeEntry(obs.Entries)
		s.spans.Emit(timing.INPBreakdown(entry.StartTime, entry.Duration, entry.ProcessingStart, entry.ProcessingEnd)...)
	}
}

// representativeEntry picks the longest interaction entry
func representativeEntry(entries []Entry) Entry {
	longest := entries[0]
	for _, e := range entries[1:] {
		if e.Duration > longest.Duration {
			longest = e
		}
	}
	return longest
}
