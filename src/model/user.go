package model

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID          int64     `json:"id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Password    string    `json:"-"`
	Role        string    `json:"role"`
	MfaSecret   string    `json:"-"`
	MfaEnabled  bool      `json:"mfa_enabled"`
	LoginCount  int       `json:"login_count"`
	LastLoginAt NullTime  `json:"last_login_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NullTime is an alias for sql.NullTime that marshals to null when unset.
type NullTime sql.NullTime

func (nt NullTime) MarshalJSON() ([]byte, error) {
	if !nt.Valid {
		return []byte("null"), nil
	}
	return nt.Time.MarshalJSON()
}

// NormalizeRole maps anything other than RoleAdmin to RoleUser.
func NormalizeRole(role string) string {
	if strings.EqualFold(strings.TrimSpace(role), RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

func (u *User) HashPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
}

const userColumns = `id, username, email, password, role, mfa_secret, mfa_enabled, login_count, last_login_at, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var user User
	var mfaSecret sql.NullString
	var lastLoginAt sql.NullTime
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.Password, &user.Role,
		&mfaSecret, &user.MfaEnabled, &user.LoginCount, &lastLoginAt,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.MfaSecret = mfaSecret.String
	user.LastLoginAt = NullTime(lastLoginAt)
	return &user, nil
}

func (u *User) CreateUser(db *sql.DB) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Role = NormalizeRole(u.Role)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Username == "" {
		u.Username = u.Email
	}

	query := `
	INSERT INTO users (username, email, password, role, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(u.Username, u.Email, u.Password, u.Role, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = id
	return nil
}

func GetUserByID(db *sql.DB, id int64) (*User, error) {
	return scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
}

func GetUserByEmail(db *sql.DB, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
}

// ListUsers returns every user ordered by id.
func ListUsers(db *sql.DB) ([]User, error) {
	rows, err := db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateProfile writes username, email and role.
func (u *User) UpdateProfile(db *sql.DB) error {
	u.Role = NormalizeRole(u.Role)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.UpdatedAt = time.Now().UTC()

	res, err := db.Exec(`
	UPDATE users
	SET username = ?, email = ?, role = ?, updated_at = ?
	WHERE id = ?`, u.Username, u.Email, u.Role, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func (u *User) UpdatePassword(db *sql.DB, newPasswordHash string) error {
	u.Password = newPasswordHash
	u.UpdatedAt = time.Now().UTC()

	res, err := db.Exec(`UPDATE users SET password = ?, updated_at = ? WHERE id = ?`, u.Password, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// RecordLogin bumps the login counter and stamps the login time.
func (u *User) RecordLogin(db *sql.DB) error {
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE users SET login_count = login_count + 1, last_login_at = ? WHERE id = ?`, now, u.ID)
	if err == nil {
		u.LoginCount++
		u.LastLoginAt = NullTime{Time: now, Valid: true}
	}
	return err
}

// UpdateMfaSecret stores the pending TOTP secret.
func (u *User) UpdateMfaSecret(db *sql.DB, secret string) error {
	u.MfaSecret = secret
	u.UpdatedAt = time.Now().UTC()

	query := `
	UPDATE users
	SET mfa_secret = ?, updated_at = ?
	WHERE id = ?`

	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	_, err = stmt.Exec(u.MfaSecret, u.UpdatedAt, u.ID)
	return err
}

func (u *User) UpdateMfaEnabled(db *sql.DB, enabled bool) error {
	u.MfaEnabled = enabled
	u.UpdatedAt = time.Now().UTC()

	_, err := db.Exec(`UPDATE users SET mfa_enabled = ?, updated_at = ? WHERE id = ?`, u.MfaEnabled, u.UpdatedAt, u.ID)
	return err
}

// DeleteUser removes the user; owned rows go with it through foreign keys.
func DeleteUser(db *sql.DB, id int64) error {
	res, err := db.Exec(`DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}
