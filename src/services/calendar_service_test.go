package services

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/homedash/backend/src/config"
	"golang.org/x/oauth2"
)

type memoryTokenStore struct {
	mu     sync.Mutex
	tokens map[int64]*oauth2.Token
}

func (m *memoryTokenStore) SaveToken(_ context.Context, userID int64, token *oauth2.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.tokens == nil {
		m.tokens = map[int64]*oauth2.Token{}
	}
	m.tokens[userID] = token
	return nil
}

func (m *memoryTokenStore) GetToken(_ context.Context, userID int64) (*oauth2.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	tok, ok := m.tokens[userID]
	if !ok {
		return nil, ErrCalendarNotConnected
	}
	return tok, nil
}

func newGoogleStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "auth-code", r.Form.Get("code"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"access-1","refresh_token":"refresh-1","token_type":"Bearer","expires_in":3600}`)
	})
	mux.HandleFunc("/calendar/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer access-1", r.Header.Get("Authorization"))
		assert.Equal(t, "5", r.URL.Query().Get("maxResults"))
		fmt.Fprint(w, `{"items":[
			{"id":"e1","summary":"Dentist","start":{"dateTime":"2024-11-04T09:00:00+01:00"},"end":{"dateTime":"2024-11-04T10:00:00+01:00"}},
			{"id":"e2","summary":"Holiday","start":{"date":"2024-12-24"},"end":{"date":"2024-12-27"}}
		]}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestCalendarServiceConnectAndList(t *testing.T) {
	srv := newGoogleStub(t)
	store := &memoryTokenStore{}
	svc := NewCalendarService(&oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost/api/calendar/callback",
		Scopes:       []string{calendarReadonlyScope},
		Endpoint:     oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"},
	}, srv.URL+"/calendar", store)

	authURL, err := svc.AuthURL(42)
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	state := u.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Equal(t, "offline", u.Query().Get("access_type"))

	_, err = svc.Exchange(context.Background(), "forged", "auth-code")
	assert.ErrorIs(t, err, ErrInvalidOAuthState)

	userID, err := svc.Exchange(context.Background(), state, "auth-code")
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)

	_, err = svc.Exchange(context.Background(), state, "auth-code")
	assert.ErrorIs(t, err, ErrInvalidOAuthState, "state must be single use")

	events, err := svc.UpcomingEvents(context.Background(), 42, 5)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Dentist", events[0].Summary)
	assert.False(t, events[0].AllDay)
	assert.True(t, events[1].AllDay)
	assert.Equal(t, "2024-12-24", events[1].Start)

	_, err = svc.UpcomingEvents(context.Background(), 7, 5)
	assert.ErrorIs(t, err, ErrCalendarNotConnected)
}

func TestCalendarServiceNotConfigured(t *testing.T) {
	svc := NewCalendarServiceFromConfig(config.Default(), &memoryTokenStore{})
	assert.False(t, svc.Configured())

	_, err := svc.AuthURL(1)
	assert.ErrorIs(t, err, ErrCalendarNotConfigured)
	_, err = svc.UpcomingEvents(context.Background(), 1, 10)
	assert.ErrorIs(t, err, ErrCalendarNotConfigured)
}
