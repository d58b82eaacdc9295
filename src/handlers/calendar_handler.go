package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/username/homedash/backend/src/logger"
	"github.com/username/homedash/backend/src/services"
	"github.com/username/homedash/backend/src/utils"
)

// CalendarDisconnector forgets a user's stored calendar credentials.
type CalendarDisconnector interface {
	Disconnect(userID int64) error
}

type CalendarHandler struct {
	calendar        *services.CalendarService
	tokens          CalendarDisconnector
	frontendBaseURL string
}

func NewCalendarHandler(calendar *services.CalendarService, tokens CalendarDisconnector, frontendBaseURL string) *CalendarHandler {
	return &CalendarHandler{
		calendar:        calendar,
		tokens:          tokens,
		frontendBaseURL: strings.TrimRight(frontendBaseURL, "/"),
	}
}

func (h *CalendarHandler) sendCalendarError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrCalendarNotConfigured):
		utils.SendJSONError(w, "Google Calendar is not configured", http.StatusBadRequest)
	case errors.Is(err, services.ErrCalendarNotConnected):
		utils.SendJSONError(w, "Google Calendar is not connected", http.StatusBadRequest)
	default:
		logger.FromContext(r.Context()).Error("Calendar request failed", "error", err)
		utils.SendJSONError(w, "Failed to load calendar events", http.StatusInternalServerError)
	}
}

// HandleConnect returns the Google consent URL for the signed in user.
func (h *CalendarHandler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	authURL, err := h.calendar.AuthURL(userID)
	if err != nil {
		h.sendCalendarError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]string{"url": authURL})
}

// HandleCallback finishes the consent flow and sends the browser back to the frontend.
func (h *CalendarHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctxLogger := logger.FromContext(r.Context())
	if errParam := r.FormValue("error"); errParam != "" {
		ctxLogger.Warn("Calendar consent denied", "error", errParam)
		h.redirect(w, r, "error", "access_denied")
		return
	}

	userID, err := h.calendar.Exchange(r.Context(), r.FormValue("state"), r.FormValue("code"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidOAuthState) {
			ctxLogger.Warn("Invalid OAuth state from calendar callback")
			h.redirect(w, r, "error", "invalid_state")
			return
		}
		ctxLogger.Error("Calendar token exchange failed", "userID", userID, "error", err)
		h.redirect(w, r, "error", "token_exchange_failed")
		return
	}
	ctxLogger.Info("Google Calendar connected", "userID", userID)
	h.redirect(w, r, "connected", "1")
}

func (h *CalendarHandler) redirect(w http.ResponseWriter, r *http.Request, key, value string) {
	target := h.frontendBaseURL + "/calendar?" + url.Values{key: {value}}.Encode()
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func (h *CalendarHandler) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.SendJSONError(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	events, err := h.calendar.UpcomingEvents(r.Context(), userID, limit)
	if err != nil {
		h.sendCalendarError(w, r, err)
		return
	}
	utils.SendJSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *CalendarHandler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	userID, _ := GetUserIDFromContext(r.Context())
	if err := h.tokens.Disconnect(userID); err != nil {
		logger.FromContext(r.Context()).Error("Failed to disconnect calendar", "error", err)
		utils.SendJSONError(w, "Failed to disconnect calendar", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
