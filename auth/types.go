/*
Package auth provides account registration, login and refresh sessions.

PURPOSE:
  Every overtime record belongs to a user. This package owns the user
  accounts and the device sessions that keep a user signed in, and issues
  the bearer tokens the HTTP layer checks on each request.

TOKENS:
  Access token:  HS256 JWT with sub/email/name, short-lived (15m default).
  Refresh token: HS256 JWT with sub/sid/tokenType="refresh", long-lived
                 (7d default), signed with a separate secret and backed by a
                 persisted Session row.

SESSION ROTATION:
  1. Login creates a Session and stores sha256(refreshToken) on it
  2. Refresh checks signature, type, owner, revocation, expiry and hash
  3. A fresh refresh token replaces the stored hash, so each refresh
     token can be used once
  4. Logout revokes one session, LogoutAll revokes every session of a user

SEE ALSO:
  - service.go: The operations above
  - store/sqlite/sqlite.go: users and refresh_sessions tables
  - api/auth.go: HTTP handlers and the bearer middleware
*/
package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// =============================================================================
// ACCOUNTS AND SESSIONS
// =============================================================================

// User is a registered account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is one signed-in device.
type Session struct {
	ID         string
	UserID     string
	TokenHash  string
	DeviceName string
	UserAgent  string
	IPAddress  string
	ExpiresAt  time.Time
	LastUsedAt time.Time
	RevokedAt  *time.Time
	CreatedAt  time.Time
}

// Active reports whether the session can still be refreshed at now.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && s.ExpiresAt.After(now)
}

// Metadata describes the client that is logging in.
type Metadata struct {
	DeviceName string
	UserAgent  string
	IPAddress  string
}

// Tokens is the result of a login or a refresh.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	User         User
}

// =============================================================================
// CLAIMS
// =============================================================================

// TokenTypeRefresh marks refresh tokens.
const TokenTypeRefresh = "refresh"

// Claims are carried by access tokens. Subject is the user id.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

// RefreshClaims are carried by refresh tokens.
type RefreshClaims struct {
	SessionID string `json:"sid"`
	TokenType string `json:"tokenType"`
	jwt.RegisteredClaims
}

// =============================================================================
// STORE INTERFACES
// =============================================================================

// UserStore persists accounts.
type UserStore interface {
	// CreateUser inserts a user. Returns ErrEmailTaken on a duplicate email.
	CreateUser(ctx context.Context, u User) error

	// GetUserByEmail returns ErrUserNotFound when absent.
	GetUserByEmail(ctx context.Context, email string) (*User, error)

	// GetUserByID returns ErrUserNotFound when absent.
	GetUserByID(ctx context.Context, id string) (*User, error)
}

// SessionStore persists refresh sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, s Session) error

	// GetSession returns ErrSessionNotFound when absent.
	GetSession(ctx context.Context, id string) (*Session, error)

	// RotateSession stores a new token hash and expiry.
	RotateSession(ctx context.Context, id, tokenHash string, expiresAt, usedAt time.Time) error

	// RevokeSession revokes one active session of a user. Unknown or already
	// revoked sessions are not an error.
	RevokeSession(ctx context.Context, id, userID string, at time.Time) error

	// RevokeUserSessions revokes every active session of a user.
	RevokeUserSessions(ctx context.Context, userID string, at time.Time) (int, error)

	// DeleteStaleSessions removes sessions that expired or were revoked before now.
	DeleteStaleSessions(ctx context.Context, now time.Time) (int, error)
}
