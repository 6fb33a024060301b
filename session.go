package admin

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

var _ Session = &SessionObject{}

// SessionObject is the concrete session derived from validated claims
type SessionObject struct {
	UserID         string     `json:"user_id,omitempty"`
	Email          string     `json:"email,omitempty"`
	IssuedAt       *time.Time `json:"issued_at,omitempty"`
	ExpirationDate *time.Time `json:"expiration_date,omitempty"`
}

func (s *SessionObject) GetUserID() string {
	return s.UserID
}

func (s *SessionObject) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(s.UserID)
}

func (s *SessionObject) GetEmail() string {
	return s.Email
}

func (s *SessionObject) GetIssuedAt() *time.Time {
	return s.IssuedAt
}

func (s *SessionObject) GetExpiration() *time.Time {
	return s.ExpirationDate
}

// Expired reports whether the session passed its expiration at the given time
func (s *SessionObject) Expired(now time.Time) bool {
	if s.ExpirationDate == nil {
		return false
	}
	return now.After(*s.ExpirationDate)
}

func (s SessionObject) String() string {
	issuedAt := "<nil>"
	if s.IssuedAt != nil {
		issuedAt = s.IssuedAt.Format(time.RFC1123)
	}
	return fmt.Sprintf("user=%s email=%s iat=%s", s.UserID, s.Email, issuedAt)
}

// sessionFromClaims creates a SessionObject from validated token claims
func sessionFromClaims(claims *SessionClaims) (*SessionObject, error) {
	if claims == nil {
		return nil, ErrSessionNotFound
	}

	session := &SessionObject{
		UserID: claims.UserID(),
		Email:  claims.Email,
	}

	if claims.RegisteredClaims.IssuedAt != nil {
		iat := claims.RegisteredClaims.IssuedAt.Time
		session.IssuedAt = &iat
	}

	if claims.RegisteredClaims.ExpiresAt != nil {
		exp := claims.RegisteredClaims.ExpiresAt.Time
		session.ExpirationDate = &exp
	}

	return session, nil
}
