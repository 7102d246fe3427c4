package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/redmonkez12/accounts-api/internal/httputil"
	"github.com/redmonkez12/accounts-api/internal/logging"
	"github.com/redmonkez12/accounts-api/internal/metrics"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const (
	UserIDContextKey    ContextKey = "user_id"
	UsernameContextKey  ContextKey = "username"
	UserEmailContextKey ContextKey = "user_email"
)

const bearerPrefix = "Bearer "

// Outcome labels for metrics.TokenVerificationsTotal.
const (
	verificationMissing    = "missing"
	verificationInvalid    = "invalid"
	verificationExpired    = "expired"
	verificationAuthorized = "success"
)

// Middleware handles authentication for protected routes
type Middleware struct {
	tokenService TokenService
}

func NewMiddleware(tokenService TokenService) *Middleware {
	return &Middleware{tokenService: tokenService}
}

// RequireAuth validates the bearer token. An absent token is answered with
// 401; a token that is present but unusable, expired included, with 400.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
		if authHeader == "" || strings.EqualFold(authHeader, strings.TrimSpace(bearerPrefix)) {
			metrics.TokenVerificationsTotal.WithLabelValues(verificationMissing).Inc()
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		if len(authHeader) < len(bearerPrefix) || !strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			metrics.TokenVerificationsTotal.WithLabelValues(verificationInvalid).Inc()
			httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeInvalidToken, http.StatusBadRequest)
			return
		}

		token := strings.TrimSpace(authHeader[len(bearerPrefix):])
		claims, err := m.tokenService.VerifyToken(token)
		if err != nil {
			outcome := verificationInvalid
			if errors.Is(err, ErrExpiredToken) {
				outcome = verificationExpired
			}
			metrics.TokenVerificationsTotal.WithLabelValues(outcome).Inc()
			logger.Warn("token rejected", "reason", outcome)
			httputil.RespondErrorWithCode(w, "invalid or expired token", httputil.CodeInvalidToken, http.StatusBadRequest)
			return
		}

		metrics.TokenVerificationsTotal.WithLabelValues(verificationAuthorized).Inc()

		// Add user info to request context
		ctx := context.WithValue(r.Context(), UserIDContextKey, claims.UserID)
		ctx = context.WithValue(ctx, UsernameContextKey, claims.Username)
		ctx = context.WithValue(ctx, UserEmailContextKey, claims.Email)
		ctx = logging.WithLogger(ctx, logger.WithFields(map[string]any{"user_id": claims.UserID}))
		logging.Annotate(ctx, "user_id", claims.UserID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSelf only lets the request through when the route parameter param
// names the authenticated user. It must run after RequireAuth.
func RequireSelf(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			targetID, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
			if err != nil || targetID <= 0 {
				httputil.RespondErrorWithCode(w, "invalid user id", httputil.CodeInvalidUserID, http.StatusBadRequest)
				return
			}

			subjectID, ok := GetUserIDFromContext(r.Context())
			if !ok || subjectID != targetID {
				logging.GetLoggerFromContext(r.Context()).Warn("access to another user's resource denied", "target_id", targetID)
				httputil.RespondErrorWithCode(w, "you can only access your own account", httputil.CodeForbidden, http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUserIDFromContext extracts the user ID from the request context
func GetUserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDContextKey).(int64)
	return userID, ok
}

// GetUsernameFromContext extracts the username from the request context
func GetUsernameFromContext(ctx context.Context) (string, bool) {
	username, ok := ctx.Value(UsernameContextKey).(string)
	return username, ok
}

// GetUserEmailFromContext extracts the user email from the request context
func GetUserEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(UserEmailContextKey).(string)
	return email, ok
}
