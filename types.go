package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Session holds attributes that are part of an authenticated session
type Session interface {
	GetUserID() string
	GetUserUUID() (uuid.UUID, error)
	GetEmail() string
	GetIssuedAt() *time.Time
	GetExpiration() *time.Time
}

// SessionProvider is the identity collaborator the gate depends on. It owns
// the single process-wide session handle; the gate never keeps its own copy
// of role state derived from it.
type SessionProvider interface {
	CurrentSession(ctx context.Context) (Session, error)
	SignInWithPassword(ctx context.Context, email, password string) (Session, error)
	SignOut(ctx context.Context) error
	// OnSessionInvalidated registers a listener for provider-pushed sign
	// outs. The returned function cancels the subscription.
	OnSessionInvalidated(fn func()) func()
}

// ProfileStore is the record store keyed by subject id. UpdateRole returns
// the post-update rows so callers can confirm the write actually applied.
type ProfileStore interface {
	GetByID(ctx context.Context, id string) (*Profile, error)
	List(ctx context.Context) ([]*Profile, error)
	UpdateRole(ctx context.Context, id string, role Role) ([]*Profile, error)
	Delete(ctx context.Context, id string) (int64, error)
}

// SubjectRemover destroys everything stored for a subject: the profile row
// and the credential record, so a deleted subject cannot complete another
// credential exchange. The count reports profile rows removed.
type SubjectRemover interface {
	RemoveSubject(ctx context.Context, id string) (int64, error)
}

// Confirmer is the capability the directory view calls before destructive
// actions. Returning false aborts the workflow with no store call.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// ConfirmerFunc adapts a function to the Confirmer interface.
type ConfirmerFunc func(ctx context.Context, prompt string) bool

func (f ConfirmerFunc) Confirm(ctx context.Context, prompt string) bool {
	if f == nil {
		return false
	}
	return f(ctx, prompt)
}

// TokenService mints and validates the signed tokens backing sessions
type TokenService interface {
	Generate(id, email string) (string, error)
	Validate(token string) (*SessionClaims, error)
}

// Config holds console options
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetListenAddr() string
	GetDSN() string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ADMIN "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ADMIN "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ADMIN "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ADMIN "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
