package admin

import (
	"context"
	"time"
)

// ActivityEventType enumerates supported activity categories.
type ActivityEventType string

const (
	ActivityEventAdmitted      ActivityEventType = "gate.admitted"
	ActivityEventDenied        ActivityEventType = "gate.denied"
	ActivityEventLoginSuccess  ActivityEventType = "auth.login.success"
	ActivityEventLoginFailure  ActivityEventType = "auth.login.failure"
	ActivityEventSignedOut     ActivityEventType = "auth.signout"
	ActivityEventRoleChanged   ActivityEventType = "profile.role.changed"
	ActivityEventProfileDelete ActivityEventType = "profile.deleted"
)

// ActivityEvent captures audit-friendly information about an action.
type ActivityEvent struct {
	EventType  ActivityEventType
	UserID     string
	Email      string
	FromRole   Role
	ToRole     Role
	Metadata   map[string]any
	OccurredAt time.Time
}

// ActivitySink consumes activity events for auditing/telemetry purposes.
type ActivitySink interface {
	Record(ctx context.Context, event ActivityEvent) error
}

// ActivitySinkFunc adapts a function to the ActivitySink interface.
type ActivitySinkFunc func(ctx context.Context, event ActivityEvent) error

// Record implements ActivitySink.
func (f ActivitySinkFunc) Record(ctx context.Context, event ActivityEvent) error {
	if f == nil {
		return nil
	}
	return f(ctx, event)
}

type noopActivitySink struct{}

func (noopActivitySink) Record(context.Context, ActivityEvent) error {
	return nil
}

func normalizeActivitySink(s ActivitySink) ActivitySink {
	if s == nil {
		return noopActivitySink{}
	}
	return s
}
