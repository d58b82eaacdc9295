package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/username/homedash/backend/src/config"
	"github.com/username/homedash/backend/src/database"
	"github.com/username/homedash/backend/src/model"
	"github.com/username/homedash/backend/src/security"
	"github.com/username/homedash/backend/src/services"
	"golang.org/x/time/rate"
)

const testCSRFToken = "test-csrf-token"

type testEnv struct {
	t      *testing.T
	router http.Handler
}

// newTestEnv builds the full router over a fresh database. Both market data
// providers point at a closed server so every live call fails.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.RateLimitEvery = time.Microsecond
	cfg.RateLimitBurst = 10000
	cfg.AdminEmails = []string{"admin@example.com"}
	config.Cfg = cfg

	db, err := database.InitDB(filepath.Join(t.TempDir(), "handlers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	prices := services.NewPriceService(services.PriceServiceOptions{
		Provider:        config.ProviderYahoo,
		BaseURL:         deadURL,
		FallbackEnabled: true,
		Limiter:         rate.NewLimiter(rate.Inf, 1),
	})
	fx := services.NewExchangeRateService(services.ExchangeRateOptions{
		Provider:        config.ProviderFrankfurter,
		BaseURL:         deadURL,
		FallbackEnabled: true,
		Limiter:         rate.NewLimiter(rate.Inf, 1),
	})
	tokens := services.NewDBTokenStore(db)

	router := NewRouter(Deps{
		Config:         cfg,
		AuthService:    security.NewAuthService(cfg.JWTSecret, time.Hour),
		MFAService:     services.NewMFAService(),
		PriceService:   prices,
		FXService:      fx,
		BoardService:   services.NewBoardService(nil, time.Hour),
		Calendar:       services.NewCalendarService(nil, cfg.CalendarAPIURL, tokens),
		CalendarTokens: tokens,
	})
	return &testEnv{t: t, router: router}
}

// do sends a request carrying a valid CSRF pair and, when token is set, a bearer token.
func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(csrfHeaderName, testCSRFToken)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: testCSRFToken})
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) createUser(email, password, role string) *model.User {
	e.t.Helper()
	u := &model.User{Email: email, Role: role}
	require.NoError(e.t, u.HashPassword(password))
	require.NoError(e.t, u.CreateUser(database.DB))
	return u
}

// login creates a user and returns an access token for it.
func (e *testEnv) login(email, role string) (string, *model.User) {
	e.t.Helper()
	u := e.createUser(email, "password123", role)
	rec := e.do(http.MethodPost, "/api/auth/login", "", map[string]string{"email": email, "password": "password123"})
	require.Equal(e.t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decode(e.t, rec, &resp)
	require.NotEmpty(e.t, resp.AccessToken)
	return resp.AccessToken, u
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	decode(t, rec, &body)
	msg, _ := body["error"].(string)
	return msg
}
