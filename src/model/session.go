package model

import (
	"database/sql"
	"errors"
	"time"
)

// ErrSessionInvalid covers missing and expired sessions alike.
var ErrSessionInvalid = errors.New("session not found or expired")

type Session struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	UserAgent    string    `json:"user_agent"`
	ClientIP     string    `json:"client_ip"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func CreateSession(db *sql.DB, session *Session) error {
	query := `
	INSERT INTO sessions (user_id, token, refresh_token, user_agent, client_ip, expires_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	session.CreatedAt = time.Now().UTC()
	res, err := stmt.Exec(
		session.UserID,
		session.Token,
		session.RefreshToken,
		session.UserAgent,
		session.ClientIP,
		session.ExpiresAt.UTC(),
		session.CreatedAt,
	)
	if err != nil {
		return err
	}
	session.ID, err = res.LastInsertId()
	return err
}

// GetSessionByToken returns the live session for an access token.
func GetSessionByToken(db *sql.DB, token string) (*Session, error) {
	query := `
	SELECT id, user_id, token, refresh_token, user_agent, client_ip, expires_at, created_at
	FROM sessions
	WHERE token = ?`

	var session Session
	var userAgent, clientIP sql.NullString
	err := db.QueryRow(query, token).Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.RefreshToken,
		&userAgent,
		&clientIP,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	if !session.ExpiresAt.After(time.Now()) {
		return nil, ErrSessionInvalid
	}
	session.UserAgent = userAgent.String
	session.ClientIP = clientIP.String
	return &session, nil
}

// GetSessionByRefreshToken returns the live session holding refreshToken.
func GetSessionByRefreshToken(db *sql.DB, refreshToken string) (*Session, error) {
	var session Session
	err := db.QueryRow(`
	SELECT id, user_id, token, refresh_token, expires_at, created_at
	FROM sessions
	WHERE refresh_token = ?`, refreshToken).Scan(
		&session.ID, &session.UserID, &session.Token, &session.RefreshToken, &session.ExpiresAt, &session.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	if !session.ExpiresAt.After(time.Now()) {
		return nil, ErrSessionInvalid
	}
	return &session, nil
}

func DeleteSessionByRefreshToken(db *sql.DB, refreshToken string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE refresh_token = ?`, refreshToken)
	return err
}

func DeleteSessionByToken(db *sql.DB, token string) error {
	_, err := db.Exec(`DELETE FROM sessions WHERE token = ?`, token)
	return err
}

// CountActiveSessions counts sessions that have not expired yet.
func CountActiveSessions(db *sql.DB) (int, error) {
	rows, err := db.Query(`SELECT expires_at FROM sessions`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	now := time.Now()
	n := 0
	for rows.Next() {
		var expiresAt time.Time
		if err := rows.Scan(&expiresAt); err != nil {
			return 0, err
		}
		if expiresAt.After(now) {
			n++
		}
	}
	return n, rows.Err()
}
