package admin

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// GateState is the admission state of a mounted admin surface
type GateState string

const (
	// StateChecking is the initial state while admission is being decided
	StateChecking GateState = "checking"
	// StateAdmitted grants the protected surface for the mount lifetime
	StateAdmitted GateState = "admitted"
	// StateDenied routes the bearer to the credential-entry surface
	StateDenied GateState = "denied"
)

// AccessGate decides whether the current session may enter the admin
// surface. It advances linearly from StateChecking; an invalidation event
// from the provider forces StateDenied regardless of the current state.
//
// Admitted is terminal for the mount lifetime: actions taken while admitted
// are not re-validated, so staleness is bounded by how long the surface
// stays mounted.
type AccessGate struct {
	provider SessionProvider
	profiles ProfileStore
	logger   Logger
	sink     ActivitySink
	now      func() time.Time

	mu          sync.Mutex
	state       GateState
	reason      string
	epoch       uint64
	closed      bool
	unsubscribe func()
}

// GateOption customizes gate construction
type GateOption func(*AccessGate)

// WithGateLogger overrides the default logger
func WithGateLogger(l Logger) GateOption {
	return func(g *AccessGate) {
		if l != nil {
			g.logger = l
		}
	}
}

// WithGateActivitySink sets the sink receiving admission events
func WithGateActivitySink(s ActivitySink) GateOption {
	return func(g *AccessGate) {
		g.sink = normalizeActivitySink(s)
	}
}

// WithGateClock injects a custom clock (useful for tests)
func WithGateClock(clock func() time.Time) GateOption {
	return func(g *AccessGate) {
		if clock != nil {
			g.now = clock
		}
	}
}

// NewAccessGate mounts a gate over the given provider and profile store and
// subscribes to provider-pushed invalidations. Call Close on teardown to
// cancel the subscription.
func NewAccessGate(provider SessionProvider, profiles ProfileStore, opts ...GateOption) *AccessGate {
	g := &AccessGate{
		provider: provider,
		profiles: profiles,
		logger:   defLogger{},
		sink:     noopActivitySink{},
		now:      time.Now,
		state:    StateChecking,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	g.unsubscribe = provider.OnSessionInvalidated(g.handleInvalidation)

	return g
}

// State returns the current admission state
func (g *AccessGate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Admitted reports whether the protected surface may render
func (g *AccessGate) Admitted() bool {
	return g.State() == StateAdmitted
}

// Reason returns the inline denial reason for the credential surface
func (g *AccessGate) Reason() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reason
}

// Check runs the admission decision for the current session. Any lookup
// failure resolves to StateDenied, never to default admission.
func (g *AccessGate) Check(ctx context.Context) GateState {
	epoch := g.currentEpoch()
	g.setState(StateChecking, "")

	session, err := g.provider.CurrentSession(ctx)
	if err != nil || session == nil {
		return g.deny(ctx, "", ErrSessionNotFound)
	}

	profile, err := g.profiles.GetByID(ctx, session.GetUserID())
	if err != nil {
		g.logger.Error("admission profile lookup failed: %v", err)
		return g.deny(ctx, session.GetUserID(), ErrProfileLookup)
	}

	if !profile.IsAdmin() {
		return g.deny(ctx, session.GetUserID(), ErrAdminRequired)
	}

	return g.admit(ctx, session.GetUserID(), epoch)
}

// Authenticate exchanges credentials and re-runs the full admission check.
// A valid credential exchange is not admission: when the fresh subject's
// profile role is not admin, the session is signed out before denial so no
// residual authenticated session remains against this surface.
func (g *AccessGate) Authenticate(ctx context.Context, email, password string) error {
	if email == "" {
		return goerrors.New("missing email", goerrors.CategoryValidation).
			WithTextCode(TextCodeMissingField).
			WithCode(goerrors.CodeBadRequest)
	}

	if password == "" {
		return goerrors.New("missing password", goerrors.CategoryValidation).
			WithTextCode(TextCodeMissingField).
			WithCode(goerrors.CodeBadRequest)
	}

	epoch := g.currentEpoch()
	g.setState(StateChecking, "")

	session, err := g.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		g.deny(ctx, "", err)
		return err
	}

	profile, err := g.profiles.GetByID(ctx, session.GetUserID())
	if err != nil {
		g.logger.Error("post-login profile lookup failed: %v", err)
		g.deny(ctx, session.GetUserID(), ErrProfileLookup)
		return ErrProfileLookup
	}

	if !profile.IsAdmin() {
		if err := g.provider.SignOut(ctx); err != nil {
			g.logger.Warn("sign out of non-admin session failed: %v", err)
		}
		g.deny(ctx, session.GetUserID(), ErrAdminRequired)
		return ErrAdminRequired
	}

	if g.admit(ctx, session.GetUserID(), epoch) != StateAdmitted {
		return ErrSessionNotFound
	}
	return nil
}

// SignOut destroys the current session. The provider's invalidation event
// moves the gate to StateDenied.
func (g *AccessGate) SignOut(ctx context.Context) error {
	return g.provider.SignOut(ctx)
}

// Close tears the gate down: the invalidation subscription is cancelled and
// late responses no longer mutate state.
func (g *AccessGate) Close() {
	g.mu.Lock()
	alreadyClosed := g.closed
	g.closed = true
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if !alreadyClosed && unsubscribe != nil {
		unsubscribe()
	}
}

func (g *AccessGate) handleInvalidation() {
	g.mu.Lock()
	g.epoch++
	if !g.closed {
		g.state = StateDenied
		g.reason = ""
	}
	g.mu.Unlock()
}

func (g *AccessGate) currentEpoch() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.epoch
}

// admit is dropped when the gate is torn down or an invalidation arrived
// after the check began; the forced denial wins over the late admit.
func (g *AccessGate) admit(ctx context.Context, userID string, epoch uint64) GateState {
	g.mu.Lock()
	if g.closed || g.epoch != epoch {
		g.mu.Unlock()
		return StateDenied
	}
	g.state = StateAdmitted
	g.reason = ""
	g.mu.Unlock()

	g.recordEvent(ctx, ActivityEvent{
		EventType: ActivityEventAdmitted,
		UserID:    userID,
	})

	return StateAdmitted
}

func (g *AccessGate) deny(ctx context.Context, userID string, cause error) GateState {
	reason := ""
	if cause != nil {
		reason = cause.Error()
	}

	g.setState(StateDenied, reason)

	g.recordEvent(ctx, ActivityEvent{
		EventType: ActivityEventDenied,
		UserID:    userID,
		Metadata:  map[string]any{"reason": reason},
	})

	return StateDenied
}

// setState reports false when the gate is already torn down; late responses
// after Close are dropped.
func (g *AccessGate) setState(state GateState, reason string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return false
	}

	g.state = state
	g.reason = reason
	return true
}

func (g *AccessGate) recordEvent(ctx context.Context, event ActivityEvent) {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = g.now()
	}

	sink := normalizeActivitySink(g.sink)
	if err := sink.Record(ctx, event); err != nil {
		g.logger.Warn("gate activity sink error: %v", err)
	}
}
