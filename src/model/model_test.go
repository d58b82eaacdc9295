package model

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/homedash/backend/src/database"
	"github.com/username/homedash/backend/src/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(db))
	t.Cleanup(func() { db.Close() })
	return db
}

func createUser(t *testing.T, db *sql.DB, email, role string) *User {
	t.Helper()
	u := &User{Email: email, Role: role}
	require.NoError(t, u.HashPassword("correct horse battery"))
	require.NoError(t, u.CreateUser(db))
	return u
}

func TestUserLifecycle(t *testing.T) {
	db := setupTestDB(t)

	u := createUser(t, db, " Owner@Example.com ", "ADMIN")
	assert.Equal(t, "owner@example.com", u.Email)
	assert.Equal(t, "owner@example.com", u.Username)
	assert.Equal(t, RoleAdmin, u.Role)

	got, err := GetUserByEmail(db, "OWNER@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.True(t, got.IsAdmin())
	assert.NoError(t, got.CheckPassword("correct horse battery"))
	assert.Error(t, got.CheckPassword("wrong"))
	assert.False(t, got.LastLoginAt.Valid)

	require.NoError(t, got.RecordLogin(db))
	got, err = GetUserByID(db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.LoginCount)
	assert.True(t, got.LastLoginAt.Valid)

	got.Role = "superuser"
	got.Username = "owner"
	require.NoError(t, got.UpdateProfile(db))
	got, err = GetUserByID(db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, RoleUser, got.Role)
	assert.Equal(t, "owner", got.Username)

	require.NoError(t, got.UpdateMfaSecret(db, "SECRET"))
	require.NoError(t, got.UpdateMfaEnabled(db, true))
	got, err = GetUserByID(db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "SECRET", got.MfaSecret)
	assert.True(t, got.MfaEnabled)

	createUser(t, db, "guest@example.com", "")
	users, err := ListUsers(db)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	require.NoError(t, DeleteUser(db, u.ID))
	_, err = GetUserByID(db, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, DeleteUser(db, u.ID), ErrNotFound)
}

func TestSessions(t *testing.T) {
	db := setupTestDB(t)
	u := createUser(t, db, "a@example.com", "")

	live := &Session{UserID: u.ID, Token: "live", RefreshToken: "r1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, CreateSession(db, live))
	expired := &Session{UserID: u.ID, Token: "old", RefreshToken: "r2", ExpiresAt: time.Now().Add(-time.Hour)}
	require.NoError(t, CreateSession(db, expired))

	s, err := GetSessionByToken(db, "live")
	require.NoError(t, err)
	assert.Equal(t, u.ID, s.UserID)

	_, err = GetSessionByToken(db, "old")
	assert.ErrorIs(t, err, ErrSessionInvalid)
	_, err = GetSessionByToken(db, "nope")
	assert.ErrorIs(t, err, ErrSessionInvalid)

	n, err := CountActiveSessions(db)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	byRefresh, err := GetSessionByRefreshToken(db, "r1")
	require.NoError(t, err)
	assert.Equal(t, "live", byRefresh.Token)
	_, err = GetSessionByRefreshToken(db, "r2")
	assert.ErrorIs(t, err, ErrSessionInvalid)

	require.NoError(t, DeleteSessionByRefreshToken(db, "r2"))
	require.NoError(t, DeleteSessionByToken(db, "live"))
	_, err = GetSessionByToken(db, "live")
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestSalesItemsAreScopedToUser(t *testing.T) {
	db := setupTestDB(t)
	alice := createUser(t, db, "alice@example.com", "")
	bob := createUser(t, db, "bob@example.com", "")

	item := &models.SalesItem{UserID: alice.ID, ItemName: "iPhone 12 Pro", SalePrice: 4500, SalePlatform: "DBA", SaleDate: "2024-05-03", SoldFor: "self"}
	require.NoError(t, CreateSalesItem(db, item))
	require.NoError(t, CreateSalesItem(db, &models.SalesItem{UserID: alice.ID, ItemName: "Bike", SalePrice: 900, SalePlatform: "DBA", SaleDate: "2024-06-01", SoldFor: "gitte"}))

	items, err := ListSalesItems(db, alice.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Bike", items[0].ItemName, "newest first")

	items, err = ListSalesItems(db, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = GetSalesItem(db, bob.ID, item.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	item.SalePrice = 4300
	require.NoError(t, UpdateSalesItem(db, item))
	got, err := GetSalesItem(db, alice.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4300.0, got.SalePrice)

	foreign := *item
	foreign.UserID = bob.ID
	assert.ErrorIs(t, UpdateSalesItem(db, &foreign), ErrNotFound)
	assert.ErrorIs(t, DeleteSalesItem(db, bob.ID, item.ID), ErrNotFound)
	require.NoError(t, DeleteSalesItem(db, alice.ID, item.ID))
}

func TestCarLoansAndPayments(t *testing.T) {
	db := setupTestDB(t)
	u := createUser(t, db, "c@example.com", "")

	loan := &models.CarLoan{UserID: u.ID, Name: "Skoda", LoanAmount: 200000, RemainingAmount: 180000, MonthlyPayment: 3000, TotalMonths: 84, PaidMonths: 7, RemainingMonths: 77, StartDate: "2024-01-01"}
	require.NoError(t, CreateCarLoan(db, loan))

	for _, p := range []models.LoanPayment{
		{PaymentDate: "2024-02-01", Amount: 3000, InterestAmount: 410, PrincipalAmount: 2590, RemainingBalance: 197410},
		{PaymentDate: "2024-01-01", Amount: 3000, InterestAmount: 420, PrincipalAmount: 2580, RemainingBalance: 200000},
	} {
		p.LoanID, p.UserID = loan.ID, u.ID
		require.NoError(t, CreateLoanPayment(db, &p))
	}

	payments, err := ListLoanPayments(db, u.ID, loan.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "2024-01-01", payments[0].PaymentDate)

	loan.PaidMonths = 8
	loan.RemainingMonths = 76
	require.NoError(t, UpdateCarLoan(db, loan))
	got, err := GetCarLoan(db, u.ID, loan.ID)
	require.NoError(t, err)
	assert.Equal(t, 76, got.RemainingMonths)

	loans, err := ListCarLoans(db, u.ID)
	require.NoError(t, err)
	assert.Len(t, loans, 1)

	require.NoError(t, DeleteCarLoan(db, u.ID, loan.ID))
	payments, err = ListLoanPayments(db, u.ID, loan.ID)
	require.NoError(t, err)
	assert.Empty(t, payments, "payments cascade with the loan")
}

func TestStockHoldings(t *testing.T) {
	db := setupTestDB(t)
	u := createUser(t, db, "s@example.com", "")

	h := &models.StockHolding{UserID: u.ID, Symbol: "ZEAL", Name: "Zealand Pharma", Shares: 10, GAK: 500, GAKCurrency: "DKK", Category: "Pharma"}
	require.NoError(t, CreateStockHolding(db, h))
	require.NoError(t, CreateStockHolding(db, &models.StockHolding{UserID: u.ID, Symbol: "TSLA", Shares: 2, GAK: 200, GAKCurrency: "USD"}))

	list, err := ListStockHoldings(db, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "TSLA", list[0].Symbol)

	h.Shares = 12
	require.NoError(t, UpdateStockHolding(db, h))
	got, err := GetStockHolding(db, u.ID, h.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, got.Shares)

	require.NoError(t, DeleteStockHolding(db, u.ID, h.ID))
	_, err = GetStockHolding(db, u.ID, h.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCalendarTokenUpsertKeepsRefreshToken(t *testing.T) {
	db := setupTestDB(t)
	u := createUser(t, db, "cal@example.com", "")

	expiry := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, SaveCalendarToken(db, &CalendarToken{UserID: u.ID, AccessToken: "a1", RefreshToken: "r1", TokenType: "Bearer", Expiry: expiry}))
	require.NoError(t, SaveCalendarToken(db, &CalendarToken{UserID: u.ID, AccessToken: "a2", TokenType: "Bearer"}))

	tok, err := GetCalendarToken(db, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a2", tok.AccessToken)
	assert.Equal(t, "r1", tok.RefreshToken)
	assert.True(t, tok.Expiry.IsZero())

	require.NoError(t, DeleteCalendarToken(db, u.ID))
	_, err = GetCalendarToken(db, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetAdminStats(t *testing.T) {
	db := setupTestDB(t)
	admin := createUser(t, db, "admin@example.com", RoleAdmin)
	user := createUser(t, db, "user@example.com", RoleUser)
	require.NoError(t, admin.RecordLogin(db))
	require.NoError(t, CreateSession(db, &Session{UserID: user.ID, Token: "t", RefreshToken: "r", ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, CreateSalesItem(db, &models.SalesItem{UserID: user.ID, ItemName: "x", SalePrice: 100, SalePlatform: "DBA", SaleDate: "2024-01-01", SoldFor: "self"}))
	require.NoError(t, CreateSalesItem(db, &models.SalesItem{UserID: user.ID, ItemName: "y", SalePrice: 50.5, SalePlatform: "DBA", SaleDate: "2024-01-02", SoldFor: "self"}))

	s, err := GetAdminStats(db)
	require.NoError(t, err)
	assert.Equal(t, 2, s.TotalUsers)
	assert.Equal(t, 1, s.AdminUsers)
	assert.Equal(t, 2, s.NewUsersLast30d)
	assert.Equal(t, 1, s.ActiveSessions)
	assert.Equal(t, 1, s.TotalLogins)
	assert.Equal(t, 2, s.SalesItems)
	assert.InDelta(t, 150.5, s.TotalSalesAmount, 0.0001)
	assert.Zero(t, s.CarLoans)
}
