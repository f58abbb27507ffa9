package middleware

import (
	"context"
	"net/http"
	"strings"

	"campus-directory/internal/auth"

	"go.uber.org/zap"
)

// TokenVerifier validates access tokens.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.AccessClaims, error)
}

// TokenVersionChecker reports whether a token version is still current for
// a user. Bumping a user's version revokes all their outstanding tokens.
type TokenVersionChecker interface {
	CheckTokenVersion(ctx context.Context, userID string, tokenVersion int) (bool, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	versions TokenVersionChecker
	logr     *zap.Logger
}

type contextKey string

const (
	ContextUserIDKey  contextKey = "userID"
	ContextAuthMethod contextKey = "authMethod"
)

// NewAuthMiddleware creates a reusable JWT auth middleware instance
func NewAuthMiddleware(verifier TokenVerifier, versions TokenVersionChecker, logr *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		versions: versions,
		logr:     logr,
	}
}

// JWTAuth validates the token and attaches user info to request context
func (m *AuthMiddleware) JWTAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader || tokenString == "" {
			writeError(w, http.StatusUnauthorized, "invalid token format")
			return
		}

		claims, err := m.verifier.VerifyAccessToken(tokenString)
		if err != nil {
			m.logr.Warn("token parse error", zap.Error(err))
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		valid, err := m.versions.CheckTokenVersion(r.Context(), claims.UserID, claims.TokenVersion)
		if err != nil {
			m.logr.Error("failed checking token version", zap.Error(err), zap.String("user_id", claims.UserID))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if !valid {
			m.logr.Warn("token version invalid", zap.String("user_id", claims.UserID))
			writeError(w, http.StatusUnauthorized, "token revoked or invalid")
			return
		}

		ctx := context.WithValue(r.Context(), ContextUserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, ContextAuthMethod, claims.AuthMethod)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserID returns the authenticated user id stored by JWTAuth.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ContextUserIDKey).(string)
	return id, ok && id != ""
}

// WithUserID returns ctx carrying id as the authenticated user.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextUserIDKey, id)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
