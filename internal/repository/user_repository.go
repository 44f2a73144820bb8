package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/armanhn/elearning-marketplace/internal/model"
)

// UserRepo is the user directory backed by the `users` table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,phone,picture,role,can_host,created_at,updated_at"

// Create inserts a user and returns its ID. The password must already be
// hashed by the caller. Duplicate email/phone rows map to the package
// sentinel errors.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, phone, picture, role, can_host) VALUES (?,?,?,?,?,?,?)",
		u.Name, strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash, u.Phone, u.Picture, u.Role, u.CanHost)
	if err != nil {
		if dup := duplicateErr(err); dup != nil {
			return 0, dup
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Picture, &u.Role, &u.CanHost, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Phone, &u.Picture, &u.Role, &u.CanHost, &u.CreatedAt, &u.UpdatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	return u, err
}

// Update persists the mutable profile columns of u. The caller is expected
// to have loaded the current row, applied its changes and re-hashed the
// password if it changed.
func (r *UserRepo) Update(ctx context.Context, u model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, email=?, password_hash=?, phone=?, picture=?, role=?, can_host=?, updated_at=NOW() WHERE id=?",
		u.Name, strings.ToLower(strings.TrimSpace(u.Email)), u.PasswordHash, u.Phone, u.Picture, u.Role, u.CanHost, u.ID)
	if err != nil {
		if dup := duplicateErr(err); dup != nil {
			return dup
		}
	}
	return err
}

// EmailInUse reports whether another user (id != exclude) already owns the
// given email. Used by profile update to validate uniqueness before writing.
func (r *UserRepo) EmailInUse(ctx context.Context, email string, exclude uint64) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email=? AND id<>?",
		email, exclude).Scan(&n)
	return n > 0, err
}

// PhoneInUse reports whether another user (id != exclude) already owns the
// given phone number.
func (r *UserRepo) PhoneInUse(ctx context.Context, phone string, exclude uint64) (bool, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE phone=? AND id<>?",
		phone, exclude).Scan(&n)
	return n > 0, err
}

// duplicateErr maps a MySQL 1062 duplicate-key error to the matching
// sentinel, using the index name embedded in the driver message to tell
// email conflicts from phone conflicts. Returns nil for any other error.
func duplicateErr(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return nil
	}
	if strings.Contains(msg, "phone") {
		return ErrPhoneExists
	}
	return ErrEmailExists
}
