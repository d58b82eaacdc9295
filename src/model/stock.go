package model

import (
	"database/sql"
	"errors"
	"time"

	"github.com/username/homedash/backend/src/models"
)

const holdingColumns = `id, user_id, symbol, name, shares, gak, gak_currency, category, created_at, updated_at`

func scanHolding(row interface{ Scan(...any) error }) (*models.StockHolding, error) {
	var h models.StockHolding
	err := row.Scan(&h.ID, &h.UserID, &h.Symbol, &h.Name, &h.Shares, &h.GAK, &h.GAKCurrency, &h.Category, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

func CreateStockHolding(db *sql.DB, h *models.StockHolding) error {
	now := time.Now().UTC()
	h.CreatedAt = now
	h.UpdatedAt = now

	res, err := db.Exec(`
	INSERT INTO stock_holdings (user_id, symbol, name, shares, gak, gak_currency, category, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		h.UserID, h.Symbol, h.Name, h.Shares, h.GAK, h.GAKCurrency, h.Category, h.CreatedAt, h.UpdatedAt)
	if err != nil {
		return err
	}
	h.ID, err = res.LastInsertId()
	return err
}

func ListStockHoldings(db *sql.DB, userID int64) ([]models.StockHolding, error) {
	rows, err := db.Query(`SELECT `+holdingColumns+` FROM stock_holdings WHERE user_id = ? ORDER BY symbol, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holdings := []models.StockHolding{}
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, *h)
	}
	return holdings, rows.Err()
}

func GetStockHolding(db *sql.DB, userID, id int64) (*models.StockHolding, error) {
	return scanHolding(db.QueryRow(`SELECT `+holdingColumns+` FROM stock_holdings WHERE user_id = ? AND id = ?`, userID, id))
}

func UpdateStockHolding(db *sql.DB, h *models.StockHolding) error {
	h.UpdatedAt = time.Now().UTC()
	res, err := db.Exec(`
	UPDATE stock_holdings
	SET symbol = ?, name = ?, shares = ?, gak = ?, gak_currency = ?, category = ?, updated_at = ?
	WHERE user_id = ? AND id = ?`,
		h.Symbol, h.Name, h.Shares, h.GAK, h.GAKCurrency, h.Category, h.UpdatedAt, h.UserID, h.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func DeleteStockHolding(db *sql.DB, userID, id int64) error {
	res, err := db.Exec(`DELETE FROM stock_holdings WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
