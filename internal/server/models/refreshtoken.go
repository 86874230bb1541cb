package models

import "time"

// RefreshToken is a row of the refresh_tokens table. Revoked only ever goes
// from false to true; rows are kept after expiry or revocation.
type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	CreatedAt time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// ExpiredAt reports whether the token is past its expiry at now.
func (t *RefreshToken) ExpiredAt(now time.Time) bool {
	return t.ExpiresAt.Before(now)
}

// ActiveAt reports whether the token is unrevoked and unexpired at now.
func (t *RefreshToken) ActiveAt(now time.Time) bool {
	return !t.Revoked && t.ExpiresAt.After(now)
}
