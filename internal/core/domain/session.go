package domain

import (
	"errors"
	"time"
)

// Session is the persisted proof of authentication for one role in one
// browser. The token is opaque to the gateway; ExpiresAt is advisory and
// only populated when the backend reports it or the token carries it.
type Session struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	UserID       string    `json:"user_id"`
	Role         Role      `json:"role"`
	DisplayName  string    `json:"display_name,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`

	// Borrowed marks a session acquired through admin impersonation
	// rather than the role's own login. Only borrowed sessions may be
	// torn down by the return-from-impersonation flow.
	Borrowed bool `json:"borrowed,omitempty"`
}

// Expired reports whether the session carries an expiry that has passed.
// Sessions without a known expiry are never considered locally expired;
// the backend has the final word.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

var (
	// ErrNoSession is returned by a session store when the role namespace
	// holds no session for the browser. Absence is a normal state, not a
	// fault.
	ErrNoSession = errors.New("no session stored")

	// ErrSessionRejected marks a stored credential the backend refused.
	ErrSessionRejected = errors.New("session rejected by backend")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
)
