package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for password hashes.
const BcryptCost = 10

const maxDeviceNameLength = 100

// Config holds the token settings.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// DefaultConfig returns the default lifetimes with the given secrets.
func DefaultConfig(accessSecret, refreshSecret string) Config {
	return Config{
		AccessSecret:  accessSecret,
		RefreshSecret: refreshSecret,
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

// Service implements registration, login and session rotation.
type Service struct {
	users    UserStore
	sessions SessionStore
	cfg      Config
	now      func() time.Time
}

// NewService creates a Service using the wall clock.
func NewService(users UserStore, sessions SessionStore, cfg Config) *Service {
	return &Service{users: users, sessions: sessions, cfg: cfg, now: time.Now}
}

// WithClock returns a copy of the service that reads time from now.
func (s *Service) WithClock(now func() time.Time) *Service {
	cp := *s
	cp.now = now
	return &cp
}

// =============================================================================
// ACCOUNTS
// =============================================================================

// Register creates an account. The email is lower-cased before storage.
func (s *Service) Register(ctx context.Context, name, email, password string) (User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	fields := map[string]string{}
	if utf8.RuneCountInString(name) < 2 {
		fields["name"] = "must have at least 2 characters"
	}
	if !validEmail(email) {
		fields["email"] = "must be a valid email address"
	}
	if utf8.RuneCountInString(password) < 6 {
		fields["password"] = "must have at least 6 characters"
	}
	if len(fields) > 0 {
		return User{}, &ValidationError{Fields: fields}
	}

	if _, err := s.users.GetUserByEmail(ctx, email); err == nil {
		return User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return User{}, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return User{}, err
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID)
	return user, nil
}

// Me returns the account of an authenticated user.
func (s *Service) Me(ctx context.Context, userID string) (User, error) {
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return User{}, err
	}
	return *u, nil
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// =============================================================================
// SESSIONS
// =============================================================================

// Login checks the password and opens a new device session.
func (s *Service) Login(ctx context.Context, email, password string, meta Metadata) (Tokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Tokens{}, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return Tokens{}, ErrInvalidCredentials
	}
	if err != nil {
		return Tokens{}, fmt.Errorf("lookup user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return Tokens{}, ErrInvalidCredentials
	}

	now := s.now().UTC()
	sessionID := uuid.NewString()
	refresh, expiresAt, err := s.signRefresh(user.ID, sessionID, now)
	if err != nil {
		return Tokens{}, err
	}
	access, err := s.signAccess(*user, now)
	if err != nil {
		return Tokens{}, err
	}

	session := Session{
		ID:         sessionID,
		UserID:     user.ID,
		TokenHash:  HashToken(refresh),
		DeviceName: deviceName(meta.DeviceName),
		UserAgent:  meta.UserAgent,
		IPAddress:  meta.IPAddress,
		ExpiresAt:  expiresAt,
		LastUsedAt: now,
		CreatedAt:  now,
	}
	if err := s.sessions.CreateSession(ctx, session); err != nil {
		return Tokens{}, fmt.Errorf("create session: %w", err)
	}

	slog.InfoContext(ctx, "User logged in", "user_id", user.ID, "session_id", sessionID)
	return Tokens{AccessToken: access, RefreshToken: refresh, User: *user}, nil
}

// Refresh exchanges a refresh token for a new token pair. The old refresh
// token stops working.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Tokens, error) {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return Tokens{}, err
	}

	now := s.now().UTC()
	session, err := s.sessions.GetSession(ctx, claims.SessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return Tokens{}, ErrInvalidToken
	}
	if err != nil {
		return Tokens{}, fmt.Errorf("lookup session: %w", err)
	}
	if session.UserID != claims.Subject || !session.Active(now) || session.TokenHash != HashToken(refreshToken) {
		return Tokens{}, ErrInvalidToken
	}

	user, err := s.users.GetUserByID(ctx, claims.Subject)
	if errors.Is(err, ErrUserNotFound) {
		return Tokens{}, ErrInvalidToken
	}
	if err != nil {
		return Tokens{}, fmt.Errorf("lookup user: %w", err)
	}

	access, err := s.signAccess(*user, now)
	if err != nil {
		return Tokens{}, err
	}
	refresh, expiresAt, err := s.signRefresh(user.ID, session.ID, now)
	if err != nil {
		return Tokens{}, err
	}
	if err := s.sessions.RotateSession(ctx, session.ID, HashToken(refresh), expiresAt, now); err != nil {
		return Tokens{}, fmt.Errorf("rotate session: %w", err)
	}

	return Tokens{AccessToken: access, RefreshToken: refresh, User: *user}, nil
}

// Logout revokes the session behind a refresh token. Invalid tokens are
// ignored so logging out always succeeds from the client's point of view.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.parseRefresh(refreshToken)
	if err != nil {
		return nil
	}
	if err := s.sessions.RevokeSession(ctx, claims.SessionID, claims.Subject, s.now().UTC()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// LogoutAll revokes every active session of a user.
func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	n, err := s.sessions.RevokeUserSessions(ctx, userID, s.now().UTC())
	if err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	slog.InfoContext(ctx, "Revoked all sessions", "user_id", userID, "count", n)
	return nil
}

// PruneSessions deletes expired and revoked sessions.
func (s *Service) PruneSessions(ctx context.Context) (int, error) {
	return s.sessions.DeleteStaleSessions(ctx, s.now().UTC())
}

func deviceName(name string) string {
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > maxDeviceNameLength {
		name = string([]rune(name)[:maxDeviceNameLength])
	}
	return name
}

// HashToken returns the hex sha256 of a token, as stored on sessions.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// =============================================================================
// TOKENS
// =============================================================================

// VerifyAccess validates an access token and returns its claims.
func (s *Service) VerifyAccess(token string) (Claims, error) {
	var claims Claims
	if _, err := jwt.ParseWithClaims(token, &claims, s.key(s.cfg.AccessSecret), s.parserOptions()...); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) parseRefresh(token string) (RefreshClaims, error) {
	var claims RefreshClaims
	if _, err := jwt.ParseWithClaims(token, &claims, s.key(s.cfg.RefreshSecret), s.parserOptions()...); err != nil {
		return RefreshClaims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.TokenType != TokenTypeRefresh || claims.SessionID == "" || claims.Subject == "" {
		return RefreshClaims{}, ErrInvalidToken
	}
	return claims, nil
}

func (s *Service) signAccess(u User, now time.Time) (string, error) {
	claims := Claims{
		Email: u.Email,
		Name:  u.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.AccessSecret))
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (s *Service) signRefresh(userID, sessionID string, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(s.cfg.RefreshTTL).Truncate(time.Second)
	claims := RefreshClaims{
		SessionID: sessionID,
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.RefreshSecret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return signed, expiresAt, nil
}

func (s *Service) key(secret string) jwt.Keyfunc {
	return func(*jwt.Token) (any, error) { return []byte(secret), nil }
}

func (s *Service) parserOptions() []jwt.ParserOption {
	return []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	}
}
