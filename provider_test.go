package admin_test

import (
	"context"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	admin "github.com/phxbinh/admin-page"
)

func brokerFixture(t *testing.T) (*MockAccountStore, *admin.SessionBroker, *admin.Account) {
	t.Helper()

	prevCost := admin.BcryptCost
	admin.BcryptCost = 4
	t.Cleanup(func() { admin.BcryptCost = prevCost })

	hash, err := admin.HashPassword("correct horse")
	require.NoError(t, err)

	account := &admin.Account{
		ID:           uuid.New(),
		Email:        "boss@example.com",
		PasswordHash: hash,
	}

	accounts := &MockAccountStore{}
	tokens := admin.NewTokenService([]byte("test-signing-key"), 1, "admin-page-test", nil)
	broker := admin.NewSessionBroker(accounts, tokens)

	return accounts, broker, account
}

func TestBrokerCurrentSessionNoneActive(t *testing.T) {
	_, broker, _ := brokerFixture(t)

	session, err := broker.CurrentSession(context.Background())

	assert.Nil(t, session)
	assert.ErrorIs(t, err, admin.ErrSessionNotFound)
}

func TestBrokerSignInSuccess(t *testing.T) {
	accounts, broker, account := brokerFixture(t)

	accounts.On("GetByEmail", mock.Anything, account.Email).Return(account, nil)

	session, err := broker.SignInWithPassword(context.Background(), account.Email, "correct horse")
	require.NoError(t, err)
	require.NotNil(t, session)

	assert.Equal(t, account.ID.String(), session.GetUserID())
	assert.Equal(t, account.Email, session.GetEmail())

	current, err := broker.CurrentSession(context.Background())
	require.NoError(t, err)
	assert.Equal(t, account.ID.String(), current.GetUserID())
}

func TestBrokerSignInWrongPassword(t *testing.T) {
	accounts, broker, account := brokerFixture(t)

	accounts.On("GetByEmail", mock.Anything, account.Email).Return(account, nil)

	session, err := broker.SignInWithPassword(context.Background(), account.Email, "wrong")

	assert.Nil(t, session)
	assert.ErrorIs(t, err, admin.ErrMismatchedHashAndPassword)

	_, err = broker.CurrentSession(context.Background())
	assert.ErrorIs(t, err, admin.ErrSessionNotFound)
}

func TestBrokerSignInUnknownAccount(t *testing.T) {
	accounts, broker, _ := brokerFixture(t)

	accounts.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(nil, goerrors.New("record not found", goerrors.CategoryNotFound))

	session, err := broker.SignInWithPassword(context.Background(), "ghost@example.com", "pw")

	assert.Nil(t, session)
	assert.ErrorIs(t, err, admin.ErrMismatchedHashAndPassword)
}

func TestBrokerSignOutNotifiesSubscribers(t *testing.T) {
	accounts, broker, account := brokerFixture(t)
	accounts.On("GetByEmail", mock.Anything, account.Email).Return(account, nil)

	notified := 0
	cancel := broker.OnSessionInvalidated(func() { notified++ })
	defer cancel()

	_, err := broker.SignInWithPassword(context.Background(), account.Email, "correct horse")
	require.NoError(t, err)

	require.NoError(t, broker.SignOut(context.Background()))
	assert.Equal(t, 1, notified)

	_, err = broker.CurrentSession(context.Background())
	assert.ErrorIs(t, err, admin.ErrSessionNotFound)
}

func TestBrokerSignOutWithoutSessionIsNoop(t *testing.T) {
	_, broker, _ := brokerFixture(t)

	notified := 0
	cancel := broker.OnSessionInvalidated(func() { notified++ })
	defer cancel()

	require.NoError(t, broker.SignOut(context.Background()))
	assert.Equal(t, 0, notified)
}

func TestBrokerCancelledSubscriptionNotNotified(t *testing.T) {
	accounts, broker, account := brokerFixture(t)
	accounts.On("GetByEmail", mock.Anything, account.Email).Return(account, nil)

	notified := 0
	cancel := broker.OnSessionInvalidated(func() { notified++ })
	cancel()
	// cancelling twice is safe
	cancel()

	_, err := broker.SignInWithPassword(context.Background(), account.Email, "correct horse")
	require.NoError(t, err)

	require.NoError(t, broker.SignOut(context.Background()))
	assert.Equal(t, 0, notified)
}

func TestBrokerInvalidatePushesToAllSubscribers(t *testing.T) {
	accounts, broker, account := brokerFixture(t)
	accounts.On("GetByEmail", mock.Anything, account.Email).Return(account, nil)

	first, second := 0, 0
	cancelFirst := broker.OnSessionInvalidated(func() { first++ })
	defer cancelFirst()
	cancelSecond := broker.OnSessionInvalidated(func() { second++ })
	defer cancelSecond()

	_, err := broker.SignInWithPassword(context.Background(), account.Email, "correct horse")
	require.NoError(t, err)

	broker.Invalidate()

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
}

func TestBrokerExpiredSessionClears(t *testing.T) {
	accounts, _, account := brokerFixture(t)
	accounts.On("GetByEmail", mock.Anything, account.Email).Return(account, nil)

	current := time.Now()
	tokens := admin.NewTokenService([]byte("test-signing-key"), 1, "admin-page-test", nil)
	broker := admin.NewSessionBroker(accounts, tokens,
		admin.WithBrokerClock(func() time.Time { return current }),
	)

	notified := 0
	cancel := broker.OnSessionInvalidated(func() { notified++ })
	defer cancel()

	_, err := broker.SignInWithPassword(context.Background(), account.Email, "correct horse")
	require.NoError(t, err)

	current = current.Add(2 * time.Hour)

	_, err = broker.CurrentSession(context.Background())
	assert.ErrorIs(t, err, admin.ErrSessionNotFound)
	assert.Equal(t, 1, notified)
}
