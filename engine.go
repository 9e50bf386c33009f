package goGate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/MrEthical07/goGate/gate"
	"github.com/MrEthical07/goGate/internal/audit"
	"github.com/MrEthical07/goGate/jwt"
	"github.com/MrEthical07/goGate/role"
	"github.com/MrEthical07/goGate/session"
	"github.com/MrEthical07/goGate/storage"
)

// Engine binds tab-scoped session stores to the access gate. Build one with
// New().WithStorage(...).Build().
type Engine struct {
	config  Config
	backend storage.Backend
	roles   *role.Registry
	table   *gate.Table
	paths   gate.Paths
	tokens  *jwt.Manager
	audit   *audit.Dispatcher
	metrics *Metrics
	logger  logrus.FieldLogger
	now     func() time.Time
}

// Close drains and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
}

// AuditDropped returns the number of audit events dropped under backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns the current counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// Config returns a copy of the engine's configuration.
func (e *Engine) Config() Config {
	if e == nil {
		return DefaultConfig()
	}
	return cloneConfig(e.config)
}

// Paths returns the redirect targets.
func (e *Engine) Paths() gate.Paths {
	if e == nil {
		return gate.DefaultPaths()
	}
	return e.paths
}

// Sessions returns the session store for tabID. Stores are cheap; callers
// need not cache them.
func (e *Engine) Sessions(tabID string) (*session.Store, error) {
	if e == nil || e.backend == nil {
		return nil, ErrEngineNotReady
	}
	tab, err := storage.NormalizeTab(tabID)
	if err != nil {
		return nil, err
	}
	st, err := e.backend.Tab(tab)
	if err != nil {
		return nil, err
	}
	return session.NewStore(st,
		session.WithKey(e.config.Session.StorageKey),
		session.WithClock(e.now),
		session.WithObserver(tabObserver{engine: e, tab: tab}),
	), nil
}

// SaveSession persists rec as tabID's session.
func (e *Engine) SaveSession(ctx context.Context, tabID string, rec *session.Record) error {
	store, err := e.Sessions(tabID)
	if err != nil {
		return err
	}
	return store.Save(ctx, rec)
}

// Session returns tabID's live session, or nil when none is present.
func (e *Engine) Session(ctx context.Context, tabID string) (*session.Record, error) {
	store, err := e.Sessions(tabID)
	if err != nil {
		return nil, err
	}
	return store.Get(ctx)
}

// ClearSession removes tabID's session. Clearing an absent session succeeds.
func (e *Engine) ClearSession(ctx context.Context, tabID string) error {
	store, err := e.Sessions(tabID)
	if err != nil {
		return err
	}
	return store.Clear(ctx)
}

// StartSession stores a new session for userID that expires after the
// configured Session TTL. No token is issued.
func (e *Engine) StartSession(ctx context.Context, tabID, userID string, roles []string) (*session.Record, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: empty user id", session.ErrInvalidRecord)
	}
	payload := map[string]any{
		session.FieldUserID:    userID,
		session.FieldSessionID: uuid.NewString(),
	}
	if len(roles) > 0 {
		payload[session.FieldRoles] = append([]string(nil), roles...)
	}
	rec := session.NewRecord(e.now().Add(e.config.Session.TTL), payload)
	if err := e.SaveSession(ctx, tabID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Login issues a signed login token for userID and stores the resulting
// session for tabID. The session expires with the token.
func (e *Engine) Login(ctx context.Context, tabID, userID string, roles []string) (*session.Record, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if e.tokens == nil {
		return nil, ErrTokensDisabled
	}
	token, claims, err := e.tokens.Issue(userID, roles)
	if err != nil {
		return nil, err
	}
	rec, err := jwt.Record(claims, token)
	if err != nil {
		return nil, err
	}
	if err := e.SaveSession(ctx, tabID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// IssueToken signs a login token for userID without storing a session.
// The token can later be redeemed with LoginWithToken on any tab.
func (e *Engine) IssueToken(userID string, roles []string) (string, error) {
	if e == nil {
		return "", ErrEngineNotReady
	}
	if e.tokens == nil {
		return "", ErrTokensDisabled
	}
	token, _, err := e.tokens.Issue(userID, roles)
	return token, err
}

// LoginWithToken verifies a login token issued by this engine and stores the
// resulting session for tabID.
func (e *Engine) LoginWithToken(ctx context.Context, tabID, token string) (*session.Record, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if e.tokens == nil {
		return nil, ErrTokensDisabled
	}
	claims, err := e.tokens.Parse(token)
	if err != nil {
		e.emitAudit(ctx, audit.Event{
			EventType: AuditLoginTokenRejected,
			TabID:     tabID,
			Error:     err.Error(),
		})
		return nil, err
	}
	rec, err := jwt.Record(claims, token)
	if err != nil {
		return nil, err
	}
	if err := e.SaveSession(ctx, tabID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// AuthState derives tabID's authentication snapshot. The returned state is
// never nil. On a storage failure it is unauthenticated and the error is
// returned alongside it so callers can degrade rather than fail.
func (e *Engine) AuthState(ctx context.Context, tabID string) (*AuthState, error) {
	state := &AuthState{TabID: tabID}
	if e == nil {
		return state, ErrEngineNotReady
	}
	state.roles = e.roles
	if tabID == "" {
		return state, nil
	}
	rec, err := e.Session(ctx, tabID)
	if err != nil {
		return state, err
	}
	state.Record = rec
	return state, nil
}

// Evaluate decides one navigation. allowed may be nil for "any authenticated
// user". The decision is counted, audited and logged at debug level.
func (e *Engine) Evaluate(ctx context.Context, state gate.State, allowed []string) gate.Decision {
	decision := gate.EvaluateState(state, allowed)
	if e == nil {
		return decision
	}
	e.recordDecision(ctx, state, allowed, decision)
	return decision
}

// EvaluatePath resolves the rule covering path and decides. Paths no rule
// covers always render.
func (e *Engine) EvaluatePath(ctx context.Context, state gate.State, path string) (gate.Decision, bool) {
	if e == nil {
		return gate.Render, false
	}
	rule, protected := e.table.Match(path)
	if !protected {
		return gate.Render, false
	}
	return e.Evaluate(WithRequestPath(ctx, path), state, rule.Roles), true
}

// Authorize reads tabID's session and evaluates path in one step, recording
// the combined latency. A storage failure is logged and treated as
// unauthenticated.
func (e *Engine) Authorize(ctx context.Context, tabID, path string) (gate.Decision, *AuthState) {
	if e == nil {
		return gate.RedirectLogin, &AuthState{TabID: tabID}
	}
	start := time.Now()
	rule, protected := e.table.Match(path)
	if !protected {
		state, _ := e.AuthState(ctx, tabID)
		return gate.Render, state
	}
	state, err := e.AuthState(ctx, tabID)
	if err != nil {
		e.logger.WithFields(logrus.Fields{"tab": tabID, "path": path}).WithError(err).Warn("session unreadable, treating as signed out")
	}
	decision := e.Evaluate(WithRequestPath(ctx, path), state, rule.Roles)
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricEvaluateLatency, time.Since(start))
	}
	return decision, state
}

func (e *Engine) recordDecision(ctx context.Context, state gate.State, allowed []string, decision gate.Decision) {
	e.metrics.Inc(decisionMetric(decision))

	event := audit.Event{
		EventType: auditDecisionType(decision),
		Path:      requestPathFromContext(ctx),
		Decision:  decision.String(),
		Success:   decision == gate.Render,
	}
	if as, ok := state.(*AuthState); ok && as != nil {
		event.TabID = as.TabID
		event.UserID = as.UserID()
		if as.Record != nil {
			event.SessionID = as.Record.SessionID()
		}
	}
	e.emitAudit(ctx, event)

	e.logger.WithFields(logrus.Fields{
		"path":     event.Path,
		"tab":      event.TabID,
		"allowed":  allowed,
		"decision": decision.String(),
	}).Debug("gate decision")
}

func (e *Engine) emitAudit(ctx context.Context, event audit.Event) {
	if e.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = e.now()
	}
	if event.IP == "" {
		event.IP = clientIPFromContext(ctx)
	}
	e.audit.Emit(ctx, event)
}

func auditDecisionType(d gate.Decision) string {
	switch d {
	case gate.RedirectLogin:
		return AuditGateRedirectLogin
	case gate.RedirectForbidden:
		return AuditGateRedirectForbidden
	default:
		return AuditGateRender
	}
}

// tabObserver feeds one tab's session lifecycle into metrics, audit and logs.
type tabObserver struct {
	engine *Engine
	tab    string
}

func (o tabObserver) SessionEvent(ctx context.Context, ev session.Event) {
	e := o.engine
	if id, ok := sessionMetric(ev.Kind); ok {
		e.metrics.Inc(id)
	}

	entry := e.logger.WithFields(logrus.Fields{"tab": o.tab, "event": ev.Kind.String()})
	switch ev.Kind {
	case session.EventStorageFailure:
		entry.WithError(ev.Err).Warn("session storage failure")
	case session.EventCorrupt:
		entry.WithError(ev.Err).Info("discarded unreadable session")
	case session.EventLoaded:
		// Counted only.
		return
	default:
		entry.WithField("user", ev.UserID).Debug("session event")
	}

	event := audit.Event{
		EventType: ev.Kind.String(),
		TabID:     o.tab,
		UserID:    ev.UserID,
		Success:   ev.Kind != session.EventStorageFailure,
	}
	if ev.Err != nil && !errors.Is(ev.Err, context.Canceled) {
		event.Error = ev.Err.Error()
	}
	e.emitAudit(ctx, event)
}
