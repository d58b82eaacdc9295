package model

import (
	"database/sql"
	"errors"
	"time"
)

// CalendarToken is a stored OAuth token for Google Calendar.
type CalendarToken struct {
	UserID       int64
	AccessToken  string
	RefreshToken string
	TokenType    string
	Expiry       time.Time // zero means no expiry
	UpdatedAt    time.Time
}

// SaveCalendarToken inserts or replaces the user's token. An empty refresh
// token keeps the one already stored.
func SaveCalendarToken(db *sql.DB, t *CalendarToken) error {
	t.UpdatedAt = time.Now().UTC()
	var expiry any
	if !t.Expiry.IsZero() {
		expiry = t.Expiry.UTC()
	}
	_, err := db.Exec(`
	INSERT INTO calendar_tokens (user_id, access_token, refresh_token, token_type, expiry, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		access_token = excluded.access_token,
		refresh_token = CASE WHEN excluded.refresh_token = '' THEN calendar_tokens.refresh_token ELSE excluded.refresh_token END,
		token_type = excluded.token_type,
		expiry = excluded.expiry,
		updated_at = excluded.updated_at`,
		t.UserID, t.AccessToken, t.RefreshToken, t.TokenType, expiry, t.UpdatedAt)
	return err
}

func GetCalendarToken(db *sql.DB, userID int64) (*CalendarToken, error) {
	var t CalendarToken
	var expiry sql.NullTime
	err := db.QueryRow(`
	SELECT user_id, access_token, refresh_token, token_type, expiry, updated_at
	FROM calendar_tokens WHERE user_id = ?`, userID).Scan(
		&t.UserID, &t.AccessToken, &t.RefreshToken, &t.TokenType, &expiry, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if expiry.Valid {
		t.Expiry = expiry.Time
	}
	return &t, nil
}

func DeleteCalendarToken(db *sql.DB, userID int64) error {
	res, err := db.Exec(`DELETE FROM calendar_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
