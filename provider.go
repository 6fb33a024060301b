package admin

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

// AccountStore is the credential lookup the session provider verifies against
type AccountStore interface {
	GetByEmail(ctx context.Context, email string) (*Account, error)
}

var _ SessionProvider = (*SessionBroker)(nil)

// SessionBroker is the in-process identity session provider. It owns the
// single session handle for the console and pushes invalidation events to
// cancellable subscribers.
type SessionBroker struct {
	accounts AccountStore
	tokens   TokenService
	logger   Logger
	sink     ActivitySink
	now      func() time.Time

	mu      sync.Mutex
	token   string
	current *SessionObject
	nextSub int
	subs    map[int]func()
}

// SessionBrokerOption customizes broker construction
type SessionBrokerOption func(*SessionBroker)

// WithBrokerLogger overrides the default logger
func WithBrokerLogger(l Logger) SessionBrokerOption {
	return func(b *SessionBroker) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithBrokerActivitySink sets the sink receiving login and sign-out events
func WithBrokerActivitySink(s ActivitySink) SessionBrokerOption {
	return func(b *SessionBroker) {
		b.sink = normalizeActivitySink(s)
	}
}

// WithBrokerClock injects a custom clock (useful for tests)
func WithBrokerClock(clock func() time.Time) SessionBrokerOption {
	return func(b *SessionBroker) {
		if clock != nil {
			b.now = clock
		}
	}
}

// NewSessionBroker returns a broker backed by the given account store
func NewSessionBroker(accounts AccountStore, tokens TokenService, opts ...SessionBrokerOption) *SessionBroker {
	b := &SessionBroker{
		accounts: accounts,
		tokens:   tokens,
		logger:   defLogger{},
		sink:     noopActivitySink{},
		now:      time.Now,
		subs:     map[int]func(){},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	return b
}

// CurrentSession returns the active session or ErrSessionNotFound. An
// expired token counts as no session and clears the handle.
func (b *SessionBroker) CurrentSession(ctx context.Context) (Session, error) {
	b.mu.Lock()
	current, token := b.current, b.token
	b.mu.Unlock()

	if current == nil || token == "" {
		return nil, ErrSessionNotFound
	}

	if current.Expired(b.now()) {
		b.logger.Info("session expired for subject %s", current.UserID)
		b.clearSession()
		return nil, ErrSessionNotFound
	}

	// Revalidate the stored token rather than trusting the cached object
	claims, err := b.tokens.Validate(token)
	if err != nil {
		b.clearSession()
		return nil, ErrSessionNotFound
	}

	return sessionFromClaims(claims)
}

// SignInWithPassword exchanges credentials for a session. The previous
// session handle, if any, is replaced only on success.
func (b *SessionBroker) SignInWithPassword(ctx context.Context, email, password string) (Session, error) {
	account, err := b.accounts.GetByEmail(ctx, email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			b.recordAuthEvent(ctx, ActivityEventLoginFailure, "", email)
			return nil, ErrMismatchedHashAndPassword
		}
		b.recordAuthEvent(ctx, ActivityEventLoginFailure, "", email)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve account during sign in")
	}

	if account == nil {
		b.recordAuthEvent(ctx, ActivityEventLoginFailure, "", email)
		return nil, ErrMismatchedHashAndPassword
	}

	if err := ComparePasswordAndHash(password, account.PasswordHash); err != nil {
		b.recordAuthEvent(ctx, ActivityEventLoginFailure, account.ID.String(), email)
		return nil, err
	}

	token, err := b.tokens.Generate(account.ID.String(), account.Email)
	if err != nil {
		return nil, err
	}

	claims, err := b.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	session, err := sessionFromClaims(claims)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	b.token = token
	b.current = session
	b.mu.Unlock()

	b.recordAuthEvent(ctx, ActivityEventLoginSuccess, account.ID.String(), email)

	return session, nil
}

// SignOut destroys the current session and notifies subscribers. Signing
// out with no active session is a no-op.
func (b *SessionBroker) SignOut(ctx context.Context) error {
	b.mu.Lock()
	current := b.current
	b.mu.Unlock()

	if current == nil {
		return nil
	}

	b.recordAuthEvent(ctx, ActivityEventSignedOut, current.UserID, current.Email)
	b.clearSession()
	return nil
}

// Invalidate force-destroys the session handle, modelling a provider-driven
// invalidation (revocation upstream). Subscribers are notified.
func (b *SessionBroker) Invalidate() {
	b.clearSession()
}

// OnSessionInvalidated registers fn to run whenever the session is destroyed.
// The returned function cancels the subscription; cancelling twice is safe.
func (b *SessionBroker) OnSessionInvalidated(fn func()) func() {
	if fn == nil {
		return func() {}
	}

	b.mu.Lock()
	id := b.nextSub
	b.nextSub++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *SessionBroker) clearSession() {
	b.mu.Lock()
	hadSession := b.current != nil
	b.current = nil
	b.token = ""
	listeners := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()

	if !hadSession {
		return
	}

	for _, fn := range listeners {
		fn()
	}
}

func (b *SessionBroker) recordAuthEvent(ctx context.Context, eventType ActivityEventType, userID, email string) {
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Email:      email,
		OccurredAt: b.now(),
	}

	if err := b.sink.Record(ctx, event); err != nil {
		b.logger.Warn("activity sink record error: %v", err)
	}
}
