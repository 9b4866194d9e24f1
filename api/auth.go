package api

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/MatheSouzaF/horas-extras/auth"
)

type contextKey int

const claimsKey contextKey = iota

// =============================================================================
// MIDDLEWARE
// =============================================================================

// RequireAuth rejects requests without a valid bearer access token and
// stores the token claims in the request context.
func (h *Handler) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, "Token not provided", nil)
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			writeError(w, http.StatusUnauthorized, "Malformed authorization header", nil)
			return
		}

		claims, err := h.Auth.VerifyAccess(strings.TrimSpace(token))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Token expired or invalid", nil)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// ClaimsFrom returns the access token claims stored by RequireAuth.
func ClaimsFrom(ctx context.Context) (auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(auth.Claims)
	return claims, ok
}

// userID returns the authenticated user. Only valid behind RequireAuth.
func userID(r *http.Request) string {
	claims, _ := ClaimsFrom(r.Context())
	return claims.Subject
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Register creates an account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decode(w, r, registerSchema, &req) {
		return
	}

	user, err := h.Auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeDomainError(w, r, "Failed to register", err)
		return
	}

	writeJSON(w, http.StatusCreated, UserResponse{User: toUserDTO(user)})
}

// Login opens a device session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decode(w, r, loginSchema, &req) {
		return
	}

	meta := requestMetadata(r)
	if strings.TrimSpace(req.DeviceName) != "" {
		meta.DeviceName = req.DeviceName
	}

	tokens, err := h.Auth.Login(r.Context(), req.Email, req.Password, meta)
	if err != nil {
		writeDomainError(w, r, "Invalid credentials", err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(tokens))
}

// Refresh rotates a refresh token.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decode(w, r, refreshSchema, &req) {
		return
	}

	tokens, err := h.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeDomainError(w, r, "Refresh token expired or invalid", err)
		return
	}

	writeJSON(w, http.StatusOK, toAuthResponse(tokens))
}

// Logout revokes the session of a refresh token. Unknown tokens still
// succeed.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if !decode(w, r, refreshSchema, &req) {
		return
	}

	if err := h.Auth.Logout(r.Context(), req.RefreshToken); err != nil {
		writeDomainError(w, r, "Failed to log out", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out"})
}

// LogoutAll revokes every session of the current user.
func (h *Handler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.LogoutAll(r.Context(), userID(r)); err != nil {
		writeDomainError(w, r, "Failed to log out", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logged out of every device"})
}

// Me returns the current user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Auth.Me(r.Context(), userID(r))
	if err != nil {
		writeDomainError(w, r, "Failed to load user", err)
		return
	}

	writeJSON(w, http.StatusOK, UserResponse{User: toUserDTO(user)})
}

// requestMetadata describes the calling device. RemoteAddr already holds
// the client address when middleware.RealIP runs first.
func requestMetadata(r *http.Request) auth.Metadata {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return auth.Metadata{
		DeviceName: r.Header.Get("X-Device-Name"),
		UserAgent:  r.UserAgent(),
		IPAddress:  ip,
	}
}
