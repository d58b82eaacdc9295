package model

import (
	"database/sql"
	"errors"
	"time"

	"github.com/username/homedash/backend/src/models"
)

const salesColumns = `id, user_id, item_name, sale_price, sale_platform, sale_date, category, condition, sold_for, description, created_at, updated_at`

func scanSalesItem(row interface{ Scan(...any) error }) (*models.SalesItem, error) {
	var item models.SalesItem
	err := row.Scan(
		&item.ID, &item.UserID, &item.ItemName, &item.SalePrice, &item.SalePlatform,
		&item.SaleDate, &item.Category, &item.Condition, &item.SoldFor, &item.Description,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func CreateSalesItem(db *sql.DB, item *models.SalesItem) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now

	res, err := db.Exec(`
	INSERT INTO sales_items (user_id, item_name, sale_price, sale_platform, sale_date, category, condition, sold_for, description, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.UserID, item.ItemName, item.SalePrice, item.SalePlatform, item.SaleDate,
		item.Category, item.Condition, item.SoldFor, item.Description, item.CreatedAt, item.UpdatedAt)
	if err != nil {
		return err
	}
	item.ID, err = res.LastInsertId()
	return err
}

// ListSalesItems returns the user's sales, newest sale date first.
func ListSalesItems(db *sql.DB, userID int64) ([]models.SalesItem, error) {
	rows, err := db.Query(`SELECT `+salesColumns+` FROM sales_items WHERE user_id = ? ORDER BY sale_date DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.SalesItem{}
	for rows.Next() {
		item, err := scanSalesItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func GetSalesItem(db *sql.DB, userID, id int64) (*models.SalesItem, error) {
	return scanSalesItem(db.QueryRow(`SELECT `+salesColumns+` FROM sales_items WHERE user_id = ? AND id = ?`, userID, id))
}

func UpdateSalesItem(db *sql.DB, item *models.SalesItem) error {
	item.UpdatedAt = time.Now().UTC()
	res, err := db.Exec(`
	UPDATE sales_items
	SET item_name = ?, sale_price = ?, sale_platform = ?, sale_date = ?, category = ?, condition = ?, sold_for = ?, description = ?, updated_at = ?
	WHERE user_id = ? AND id = ?`,
		item.ItemName, item.SalePrice, item.SalePlatform, item.SaleDate, item.Category,
		item.Condition, item.SoldFor, item.Description, item.UpdatedAt, item.UserID, item.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func DeleteSalesItem(db *sql.DB, userID, id int64) error {
	res, err := db.Exec(`DELETE FROM sales_items WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
