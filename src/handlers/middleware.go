package handlers

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/username/homedash/backend/src/database"
	"github.com/username/homedash/backend/src/logger"
	"github.com/username/homedash/backend/src/model"
	"github.com/username/homedash/backend/src/security"
	"github.com/username/homedash/backend/src/utils"
	"golang.org/x/time/rate"
)

const unauthorizedMessage = "Unauthorized"

// ContextualLoggerMiddleware attaches a request scoped logger carrying a request id.
func ContextualLoggerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		ctxLogger := logger.L.With(slog.String("requestID", requestID))

		ctx := logger.ToContext(r.Context(), ctxLogger)
		ctx = context.WithValue(ctx, requestIDContextKey, requestID)
		w.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ProxyHeadersMiddleware marks requests forwarded over https as TLS.
func ProxyHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Forwarded-Proto") == "https" {
			r.URL.Scheme = "https"
			r.TLS = &tls.ConnectionState{}
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitMiddleware rejects requests once the shared limiter is exhausted.
func RateLimitMiddleware(every time.Duration, burst int) func(http.Handler) http.Handler {
	limiter := rate.NewLimiter(rate.Every(every), burst)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logger.FromContext(r.Context()).Warn("Rate limit exceeded", "path", r.URL.Path)
				utils.SendJSONError(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware allows credentialed requests from the configured origins.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
				w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, X-CSRF-Token, Authorization, If-None-Match")
				w.Header().Set("Access-Control-Expose-Headers", "X-CSRF-Token, ETag, X-Request-ID")
				w.Header().Add("Vary", "Origin")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return authHeader
}

// AuthMiddleware requires a valid access token backed by a live session row.
// Every failure answers 401 {"error":"Unauthorized"}.
func AuthMiddleware(authService *security.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctxLogger := logger.FromContext(r.Context())

			tokenString := bearerToken(r)
			if tokenString == "" {
				ctxLogger.Debug("AuthMiddleware: Authorization header missing", "path", r.URL.Path)
				utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
				return
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				ctxLogger.Warn("AuthMiddleware: Token validation failed", "path", r.URL.Path, "error", err)
				utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
				return
			}

			session, err := model.GetSessionByToken(database.DB, tokenString)
			if err != nil {
				if !errors.Is(err, model.ErrSessionInvalid) {
					ctxLogger.Error("AuthMiddleware: Session lookup failed", "error", err)
				}
				utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
				return
			}
			if session.UserID != claims.UserID {
				ctxLogger.Warn("AuthMiddleware: Token and session disagree on user", "tokenUserID", claims.UserID, "sessionUserID", session.UserID)
				utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
				return
			}

			enrichedLogger := ctxLogger.With(slog.Int64("userID", claims.UserID), slog.String("role", claims.Role))
			ctx := logger.ToContext(r.Context(), enrichedLogger)
			ctx = context.WithValue(ctx, userIDContextKey, claims.UserID)
			ctx = context.WithValue(ctx, tokenContextKey, tokenString)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminMiddleware lets only current admins through. The role is re-read from
// the users table so demotions take effect immediately.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger := logger.FromContext(r.Context())
		userID, ok := GetUserIDFromContext(r.Context())
		if !ok {
			utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
			return
		}

		user, err := model.GetUserByID(database.DB, userID)
		if err != nil {
			if !errors.Is(err, model.ErrNotFound) {
				ctxLogger.Error("AdminMiddleware: User lookup failed", "error", err)
			}
			utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
			return
		}
		if !user.IsAdmin() {
			ctxLogger.Warn("Admin access denied for user", "userID", user.ID)
			utils.SendJSONError(w, unauthorizedMessage, http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
