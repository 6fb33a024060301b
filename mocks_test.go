package admin_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	admin "github.com/phxbinh/admin-page"
)

// MockSessionProvider implements admin.SessionProvider
type MockSessionProvider struct {
	mock.Mock

	mu        sync.Mutex
	listeners []func()
}

func (m *MockSessionProvider) CurrentSession(ctx context.Context) (admin.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(admin.Session), args.Error(1)
}

func (m *MockSessionProvider) SignInWithPassword(ctx context.Context, email, password string) (admin.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(admin.Session), args.Error(1)
}

func (m *MockSessionProvider) SignOut(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockSessionProvider) OnSessionInvalidated(fn func()) func() {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	idx := len(m.listeners) - 1
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		m.listeners[idx] = nil
		m.mu.Unlock()
	}
}

// PushInvalidation fires every live listener, simulating a provider-side
// sign out.
func (m *MockSessionProvider) PushInvalidation() {
	m.mu.Lock()
	listeners := make([]func(), 0, len(m.listeners))
	for _, fn := range m.listeners {
		if fn != nil {
			listeners = append(listeners, fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func (m *MockSessionProvider) LiveListeners() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, fn := range m.listeners {
		if fn != nil {
			n++
		}
	}
	return n
}

// MockProfileStore implements admin.ProfileStore
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) GetByID(ctx context.Context, id string) (*admin.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admin.Profile), args.Error(1)
}

func (m *MockProfileStore) List(ctx context.Context) ([]*admin.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*admin.Profile), args.Error(1)
}

func (m *MockProfileStore) UpdateRole(ctx context.Context, id string, role admin.Role) ([]*admin.Profile, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*admin.Profile), args.Error(1)
}

func (m *MockProfileStore) Delete(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockSubjectRemover implements admin.SubjectRemover
type MockSubjectRemover struct {
	mock.Mock
}

func (m *MockSubjectRemover) RemoveSubject(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

// MockAccountStore implements admin.AccountStore
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) GetByEmail(ctx context.Context, email string) (*admin.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admin.Account), args.Error(1)
}

// MockConfirmer implements admin.Confirmer
type MockConfirmer struct {
	mock.Mock
}

func (m *MockConfirmer) Confirm(ctx context.Context, prompt string) bool {
	args := m.Called(ctx, prompt)
	return args.Bool(0)
}

// RecordingSink collects activity events for assertions
type RecordingSink struct {
	mu     sync.Mutex
	events []admin.ActivityEvent
}

func (s *RecordingSink) Record(ctx context.Context, event admin.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *RecordingSink) Events() []admin.ActivityEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]admin.ActivityEvent, len(s.events))
	copy(out, s.events)
	return out
}

func (s *RecordingSink) Types() []admin.ActivityEventType {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]admin.ActivityEventType, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.EventType)
	}
	return out
}

// testSession is a fixed Session for gate tests
type testSession struct {
	userID string
	email  string
}

func (s testSession) GetUserID() string { return s.userID }

func (s testSession) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.userID)
}

func (s testSession) GetEmail() string { return s.email }

func (s testSession) GetIssuedAt() *time.Time { return nil }

func (s testSession) GetExpiration() *time.Time { return nil }
