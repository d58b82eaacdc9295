package handlers

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/username/homedash/backend/src/logger"
	"github.com/username/homedash/backend/src/utils"
)

const (
	csrfCookieName = "homedash_csrf"
	csrfHeaderName = "X-CSRF-Token"
)

// GetCSRFToken issues a double-submit token: a cookie plus the same value in
// the body and X-CSRF-Token header.
func GetCSRFToken(w http.ResponseWriter, r *http.Request) {
	token := generateRandomToken()
	logger.FromContext(r.Context()).Debug("Generated CSRF token", "tokenPrefix", token[:5])

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		SameSite: http.SameSiteLaxMode,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		MaxAge:   3600,
	})
	w.Header().Set(csrfHeaderName, token)
	utils.SendJSON(w, http.StatusOK, map[string]string{"csrfToken": token})
}

func generateRandomToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.L.Error("Error generating random bytes for CSRF token", "error", err)
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return base64.StdEncoding.EncodeToString(b)
}

// CSRFMiddleware checks the header token against the cookie on state
// changing methods. Safe methods pass through.
func CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		headerToken := r.Header.Get(csrfHeaderName)
		cookie, errCookie := r.Cookie(csrfCookieName)
		if headerToken != "" && errCookie == nil &&
			subtle.ConstantTimeCompare([]byte(headerToken), []byte(cookie.Value)) == 1 {
			next.ServeHTTP(w, r)
			return
		}

		logger.FromContext(r.Context()).Warn("CSRF Validation Failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Bool("headerTokenExists", headerToken != ""),
			slog.Bool("cookieExists", errCookie == nil),
			slog.String("origin", r.Header.Get("Origin")),
		)
		utils.SendJSONError(w, "CSRF token validation failed", http.StatusForbidden)
	})
}
