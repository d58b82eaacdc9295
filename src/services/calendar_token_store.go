package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/username/homedash/backend/src/model"
	"golang.org/x/oauth2"
)

// DBTokenStore keeps calendar OAuth tokens in the calendar_tokens table.
type DBTokenStore struct {
	db *sql.DB
}

func NewDBTokenStore(db *sql.DB) *DBTokenStore {
	return &DBTokenStore{db: db}
}

func (s *DBTokenStore) SaveToken(_ context.Context, userID int64, token *oauth2.Token) error {
	return model.SaveCalendarToken(s.db, &model.CalendarToken{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.TokenType,
		Expiry:       token.Expiry,
	})
}

func (s *DBTokenStore) GetToken(_ context.Context, userID int64) (*oauth2.Token, error) {
	stored, err := model.GetCalendarToken(s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrCalendarNotConnected
		}
		return nil, err
	}
	return &oauth2.Token{
		AccessToken:  stored.AccessToken,
		RefreshToken: stored.RefreshToken,
		TokenType:    stored.TokenType,
		Expiry:       stored.Expiry,
	}, nil
}

// Disconnect forgets the user's calendar token.
func (s *DBTokenStore) Disconnect(userID int64) error {
	err := model.DeleteCalendarToken(s.db, userID)
	if errors.Is(err, model.ErrNotFound) {
		return nil
	}
	return err
}
