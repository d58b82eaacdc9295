package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/username/homedash/backend/src/config"
	"github.com/username/homedash/backend/src/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const calendarReadonlyScope = "https://www.googleapis.com/auth/calendar.readonly"

// CalendarEvent is an upcoming event from the user's primary calendar.
type CalendarEvent struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Location string `json:"location,omitempty"`
	Start    string `json:"start"`
	End      string `json:"end"`
	AllDay   bool   `json:"allDay"`
	Link     string `json:"link,omitempty"`
}

// CalendarTokenStore persists OAuth tokens per user. GetToken returns
// ErrCalendarNotConnected when the user has none.
type CalendarTokenStore interface {
	SaveToken(ctx context.Context, userID int64, token *oauth2.Token) error
	GetToken(ctx context.Context, userID int64) (*oauth2.Token, error)
}

type googleEventTime struct {
	DateTime string `json:"dateTime"`
	Date     string `json:"date"`
}

type googleEventsResponse struct {
	Items []struct {
		ID       string          `json:"id"`
		Summary  string          `json:"summary"`
		Location string          `json:"location"`
		HTMLLink string          `json:"htmlLink"`
		Start    googleEventTime `json:"start"`
		End      googleEventTime `json:"end"`
	} `json:"items"`
}

// CalendarService syncs upcoming events from Google Calendar.
type CalendarService struct {
	oauthConfig *oauth2.Config
	apiURL      string
	store       CalendarTokenStore
	states      *cache.Cache
	now         func() time.Time
}

// NewCalendarService returns a service for the given OAuth client. A nil
// oauthConfig yields a service that reports ErrCalendarNotConfigured.
func NewCalendarService(oauthConfig *oauth2.Config, apiURL string, store CalendarTokenStore) *CalendarService {
	return &CalendarService{
		oauthConfig: oauthConfig,
		apiURL:      strings.TrimRight(apiURL, "/"),
		store:       store,
		states:      cache.New(10*time.Minute, 20*time.Minute),
		now:         time.Now,
	}
}

func NewCalendarServiceFromConfig(cfg *config.AppConfig, store CalendarTokenStore) *CalendarService {
	if !cfg.CalendarConfigured() {
		return NewCalendarService(nil, cfg.CalendarAPIURL, store)
	}
	oauthConfig := &oauth2.Config{
		RedirectURL:  cfg.GoogleRedirectURL,
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		Scopes:       []string{calendarReadonlyScope},
		Endpoint:     google.Endpoint,
	}
	return NewCalendarService(oauthConfig, cfg.CalendarAPIURL, store)
}

func (s *CalendarService) Configured() bool {
	return s.oauthConfig != nil
}

// AuthURL starts the consent flow for userID. The returned URL carries a
// single-use state that Exchange resolves back to the user.
func (s *CalendarService) AuthURL(userID int64) (string, error) {
	if !s.Configured() {
		return "", ErrCalendarNotConfigured
	}
	state := uuid.NewString()
	s.states.Set(state, userID, cache.DefaultExpiration)
	return s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce), nil
}

// Exchange completes the consent flow and stores the token. It returns the
// user the state was issued to.
func (s *CalendarService) Exchange(ctx context.Context, state, code string) (int64, error) {
	if !s.Configured() {
		return 0, ErrCalendarNotConfigured
	}
	v, found := s.states.Get(state)
	if !found {
		return 0, ErrInvalidOAuthState
	}
	s.states.Delete(state)
	userID := v.(int64)

	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return userID, fmt.Errorf("exchange calendar authorization code: %w", err)
	}
	if err := s.store.SaveToken(ctx, userID, token); err != nil {
		return userID, fmt.Errorf("save calendar token: %w", err)
	}
	return userID, nil
}

// UpcomingEvents lists at most limit events starting from now.
func (s *CalendarService) UpcomingEvents(ctx context.Context, userID int64, limit int) ([]CalendarEvent, error) {
	if !s.Configured() {
		return nil, ErrCalendarNotConfigured
	}
	token, err := s.store.GetToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	src := s.oauthConfig.TokenSource(ctx, token)
	fresh, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("refresh calendar token: %w", err)
	}
	if fresh.AccessToken != token.AccessToken {
		if err := s.store.SaveToken(ctx, userID, fresh); err != nil {
			logger.FromContext(ctx).Warn("Failed to persist refreshed calendar token", "userID", userID, "error", err)
		}
	}

	if limit <= 0 || limit > 50 {
		limit = 10
	}
	q := url.Values{}
	q.Set("timeMin", s.now().UTC().Format(time.RFC3339))
	q.Set("maxResults", strconv.Itoa(limit))
	q.Set("singleEvents", "true")
	q.Set("orderBy", "startTime")
	eventsURL := fmt.Sprintf("%s/calendars/primary/events?%s", s.apiURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, eventsURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := oauth2.NewClient(ctx, oauth2.StaticTokenSource(fresh)).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call calendar API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar API returned non-OK status %d", resp.StatusCode)
	}

	var data googleEventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode calendar response: %w", err)
	}

	events := make([]CalendarEvent, 0, len(data.Items))
	for _, item := range data.Items {
		e := CalendarEvent{
			ID:       item.ID,
			Summary:  item.Summary,
			Location: item.Location,
			Link:     item.HTMLLink,
			Start:    item.Start.DateTime,
			End:      item.End.DateTime,
		}
		if e.Start == "" {
			e.Start, e.End, e.AllDay = item.Start.Date, item.End.Date, true
		}
		events = append(events, e)
	}
	return events, nil
}
