package aidbuddy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/aidbuddy/internal/dialogue"
	"github.com/aretw0/aidbuddy/internal/logging"
	"github.com/aretw0/aidbuddy/pkg/adapters/memory"
	"github.com/aretw0/aidbuddy/pkg/domain"
	"github.com/aretw0/aidbuddy/pkg/estimate"
	"github.com/aretw0/aidbuddy/pkg/ports"
	"github.com/aretw0/aidbuddy/pkg/runner"
	"github.com/aretw0/aidbuddy/pkg/session"
)

// Version is overridden at build time with -ldflags.
var Version = "dev"

// Payload is the host-facing result of a turn.
type Payload struct {
	Reply    string          `json:"reply"`
	Mode     domain.Mode     `json:"mode"`
	Progress float64         `json:"progress"`
	Chapter  int             `json:"chapter"`
	State    domain.Snapshot `json:"state"`

	// Intent names the routing rule that produced Reply.
	Intent string `json:"-"`
	// Estimate is set on the turn that completed the estimate form.
	Estimate *estimate.Result `json:"-"`
}

// Engine is the high-level entry point for the aidbuddy library. It binds
// the dialogue router to a session store and serialises turns per session.
type Engine struct {
	router    *dialogue.Router
	sessions  *session.Manager
	sanitizer runner.Sanitizer
	table     estimate.Table

	store   ports.StateStore
	locker  ports.DistributedLocker
	lockTTL time.Duration
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	maxSize int
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithStore sets the session store. The default is an in-memory store.
func WithStore(store ports.StateStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables cross-replica locking of sessions.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLockTTL sets the distributed lock expiry.
func WithLockTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.lockTTL = ttl
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls add to
// the hooks already registered.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithAwardYears replaces the award-year grant table.
func WithAwardYears(table estimate.Table) Option {
	return func(e *Engine) {
		e.table = table
	}
}

// WithMaxInputSize bounds the byte length of one user message.
func WithMaxInputSize(n int) Option {
	return func(e *Engine) {
		e.maxSize = n
	}
}

// New initializes a new Engine.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		table:  estimate.DefaultTable(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}

	if len(e.table) == 0 {
		return nil, fmt.Errorf("award-year table is empty")
	}
	for year, cfg := range e.table {
		if _, ok := estimate.NormalizeAwardYear(year); !ok {
			return nil, fmt.Errorf("award year %q: %w", year, domain.ErrInvalidInput)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("award year %s: %w", year, err)
		}
	}
	if _, err := e.table.Lookup(domain.DefaultAwardYear); err != nil {
		return nil, fmt.Errorf("default award year must be configured: %w", err)
	}

	if e.store == nil {
		e.store = memory.NewStore(memory.WithLogger(e.logger))
	}

	sessionOpts := []session.Option{session.WithLogger(e.logger), session.WithLockTTL(e.lockTTL)}
	if e.locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(e.locker))
	}
	e.sessions = session.NewManager(e.store, sessionOpts...)
	e.router = dialogue.NewRouter(dialogue.WithTable(e.table), dialogue.WithLogger(e.logger))
	e.sanitizer = runner.NewSanitizer(e.maxSize)

	return e, nil
}

// HandleTurn applies one user message to the session, creating the session
// on first contact. Inputs rejected by the sanitiser wrap
// runner.ErrInputTooLarge or runner.ErrInvalidUTF8 and leave the session
// untouched.
func (e *Engine) HandleTurn(ctx context.Context, sessionID, text string) (*Payload, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", domain.ErrInvalidInput)
	}
	clean, err := e.sanitizer.Sanitize(text)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var (
		reply  dialogue.Reply
		before *domain.State
	)
	state, err := e.sessions.Update(ctx, sessionID, func(s *domain.State) error {
		before = s.Clone()
		r, err := e.router.HandleTurn(s, clean)
		if err != nil {
			return err
		}
		s.Turns++
		reply = r
		return nil
	})
	if err != nil {
		e.logger.ErrorContext(ctx, "turn failed", "session_id", sessionID, "err", err)
		return nil, err
	}

	e.emit(ctx, sessionID, before, state, reply, time.Since(start))

	payload := e.payload(state)
	payload.Reply = reply.Text
	payload.Intent = reply.Intent
	payload.Estimate = reply.Estimate
	return payload, nil
}

// Snapshot returns the session view without handling a turn. Unknown
// sessions are created, as on first contact.
func (e *Engine) Snapshot(ctx context.Context, sessionID string) (*Payload, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", domain.ErrInvalidInput)
	}
	state, err := e.sessions.LoadOrStart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return e.payload(state), nil
}

// Reset discards the session and recreates it with defaults.
func (e *Engine) Reset(ctx context.Context, sessionID string) (*domain.State, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", domain.ErrInvalidInput)
	}
	state, err := e.sessions.Reset(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if e.hooks.OnReset != nil {
		e.hooks.OnReset(ctx, &domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventReset,
			SessionID: sessionID,
		})
	}
	return state, nil
}

// Estimate runs the estimator outside of any conversation. An empty award
// year or enrollment selects the defaults.
func (e *Engine) Estimate(ctx context.Context, in estimate.Input) (*estimate.Result, error) {
	if in.AwardYear == "" {
		in.AwardYear = domain.DefaultAwardYear
	} else if year, ok := estimate.NormalizeAwardYear(in.AwardYear); ok {
		in.AwardYear = year
	}
	if in.Enrollment == "" {
		in.Enrollment = domain.DefaultEnrollment
	}
	res, err := estimate.Estimate(e.table, in)
	if err != nil {
		return nil, err
	}
	e.emitEstimate(ctx, "", res)
	return res, nil
}

// Sessions exposes the session manager for administrative surfaces.
func (e *Engine) Sessions() *session.Manager {
	return e.sessions
}

// AwardYears lists the configured award years in order.
func (e *Engine) AwardYears() []string {
	return e.table.Years()
}

func (e *Engine) payload(state *domain.State) *Payload {
	return &Payload{
		Mode:     state.Mode(),
		Progress: dialogue.Progress(state),
		Chapter:  dialogue.Chapter(state),
		State:    state.Snapshot(),
	}
}

func (e *Engine) emit(ctx context.Context, sessionID string, before, after *domain.State, reply dialogue.Reply, d time.Duration) {
	now := time.Now()
	if reply.Intent == dialogue.IntentSensitive && e.hooks.OnSensitive != nil {
		e.hooks.OnSensitive(ctx, &domain.EventBase{
			Timestamp: now,
			Type:      domain.EventSensitive,
			SessionID: sessionID,
		})
	}
	if reply.Estimate != nil {
		e.emitEstimate(ctx, sessionID, reply.Estimate)
	}
	if e.hooks.OnTurn != nil {
		e.hooks.OnTurn(ctx, &domain.TurnEvent{
			EventBase: domain.EventBase{
				Timestamp: now,
				Type:      domain.EventTurn,
				SessionID: sessionID,
			},
			Intent:   reply.Intent,
			From:     before.Flow,
			To:       after.Flow,
			Diff:     domain.Diff(before, after),
			Duration: d,
		})
	}
}

func (e *Engine) emitEstimate(ctx context.Context, sessionID string, res *estimate.Result) {
	if e.hooks.OnEstimate == nil {
		return
	}
	e.hooks.OnEstimate(ctx, &domain.EstimateEvent{
		EventBase: domain.EventBase{
			Timestamp: time.Now(),
			Type:      domain.EventEstimate,
			SessionID: sessionID,
		},
		AwardYear:  res.AwardYear,
		Enrollment: res.Enrollment,
		SAIBand:    res.SAIBand,
		Likelihood: res.Likelihood,
		Min:        res.PellRange[0],
		Max:        res.PellRange[1],
	})
}
