package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/halchash/storefront/internal/model"
)

// AdminRepo provides access to the admins table.  Admin accounts are only
// created from the command line.
type AdminRepo struct {
	db *sql.DB
}

// NewAdminRepo returns a new AdminRepo bound to the given database.
func NewAdminRepo(db *sql.DB) *AdminRepo { return &AdminRepo{db: db} }

const adminColumns = "id, username, email, password_hash, full_name, role, created_at"

func scanAdmin(row *sql.Row) (model.Admin, error) {
	var a model.Admin
	var fullName sql.NullString
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &fullName, &a.Role, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrAdminNotFound
	}
	a.FullName = fullName.String
	return a, err
}

// Create inserts a new admin and sets its ID.
func (r *AdminRepo) Create(ctx context.Context, a *model.Admin) error {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO admins (username, email, password_hash, full_name, role) VALUES (?, ?, ?, ?, ?)`,
		a.Username, a.Email, a.PasswordHash, a.FullName, a.Role)
	if err != nil {
		return classifyDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// GetByLogin finds an admin by username or email.
func (r *AdminRepo) GetByLogin(ctx context.Context, login string) (model.Admin, error) {
	login = strings.TrimSpace(login)
	return scanAdmin(r.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE username = ? OR email = ? LIMIT 1`,
		login, strings.ToLower(login)))
}

// GetByID finds an admin by id.
func (r *AdminRepo) GetByID(ctx context.Context, id uint64) (model.Admin, error) {
	return scanAdmin(r.db.QueryRowContext(ctx,
		`SELECT `+adminColumns+` FROM admins WHERE id = ? LIMIT 1`, id))
}

// UpdatePassword stores a new bcrypt hash for the admin.
func (r *AdminRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE admins SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrAdminNotFound)
}
