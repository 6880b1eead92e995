package user

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is a server-side login. Access tokens carry its ID, so revoking
// the session invalidates every token issued for it.
type Session struct {
	ID        string
	UserID    uint
	IPAddress string
	UserAgent string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}

func NewSession(userID uint, ipAddress, userAgent string, now time.Time, ttl time.Duration) (*Session, error) {
	if userID == 0 {
		return nil, fmt.Errorf("user ID is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	return &Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		IPAddress: ipAddress,
		UserAgent: userAgent,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// IsValid reports whether the session is neither revoked nor expired at now.
func (s *Session) IsValid(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
