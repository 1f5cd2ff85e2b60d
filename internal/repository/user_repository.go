package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/halchash/storefront/internal/model"
	"github.com/halchash/storefront/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,phone,address,avatar,created_at,updated_at"

// nullIfEmpty stores blank optional strings as NULL so unique keys only
// apply to real values.
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	var phone, address, avatar sql.NullString
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &phone, &address, &avatar, &u.CreatedAt, &u.UpdatedAt)
	u.Phone, u.Address, u.Avatar = phone.String, address.String, avatar.String
	return u, err
}

// Create inserts u and sets its ID.  Email is normalized, phone must
// already be normalized.  Duplicate email or phone yield ErrEmailTaken or
// ErrPhoneTaken.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	return r.create(ctx, r.DB, u)
}

// CreateTx is Create inside an existing transaction.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, u *model.User) error {
	return r.create(ctx, tx, u)
}

func (r *UserRepo) create(ctx context.Context, q DBTX, u *model.User) error {
	u.Email = utils.NormalizeEmail(u.Email)
	res, err := q.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, phone, address, avatar) VALUES (?,?,?,?,?,?)",
		u.Name, u.Email, u.PasswordHash, nullIfEmpty(u.Phone), u.Address, u.Avatar)
	if err != nil {
		return classifyDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	u.ID = uint64(id)
	return nil
}

// FindIDByEmailTx looks a user up by case-insensitive email.
func (r *UserRepo) FindIDByEmailTx(ctx context.Context, tx *sql.Tx, email string) (uint64, bool, error) {
	var id uint64
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM users WHERE LOWER(email) = ? LIMIT 1", utils.NormalizeEmail(email)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// PhoneExistsTx reports whether a normalized phone already belongs to a user.
func (r *UserRepo) PhoneExistsTx(ctx context.Context, tx *sql.Tx, phone string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM users WHERE phone = ? LIMIT 1", phone).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE LOWER(email) = ? LIMIT 1", utils.NormalizeEmail(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// UpdateProfile overwrites the editable profile fields.  A clash with
// another account's email or phone yields ErrEmailTaken or ErrPhoneTaken.
func (r *UserRepo) UpdateProfile(ctx context.Context, u model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name = ?, email = ?, phone = ?, address = ? WHERE id = ?",
		u.Name, utils.NormalizeEmail(u.Email), nullIfEmpty(u.Phone), u.Address, u.ID)
	if err != nil {
		return classifyDuplicate(err)
	}
	return requireRow(res, ErrUserNotFound)
}

// UpdatePassword stores a new bcrypt hash for the user.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string) error {
	res, err := r.DB.ExecContext(ctx, "UPDATE users SET password_hash = ? WHERE id = ?", hash, id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrUserNotFound)
}

// List returns every customer with an order count.  When withBlocked is
// set the blocked flag is resolved against blocked_users.
func (r *UserRepo) List(ctx context.Context, withBlocked bool) ([]model.UserSummary, error) {
	cols := "u.id,u.name,u.email,u.password_hash,u.phone,u.address,u.avatar,u.created_at,u.updated_at"
	q := "SELECT " + cols + ", (SELECT COUNT(*) FROM orders o WHERE o.user_id = u.id), "
	if withBlocked {
		q += "EXISTS (SELECT 1 FROM blocked_users b WHERE b.phone = u.phone)"
	} else {
		q += "FALSE"
	}
	q += " FROM users u ORDER BY u.created_at DESC"

	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.UserSummary{}
	for rows.Next() {
		var s model.UserSummary
		var phone, address, avatar sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.Email, &s.PasswordHash, &phone, &address, &avatar,
			&s.CreatedAt, &s.UpdatedAt, &s.OrdersCount, &s.Blocked); err != nil {
			return nil, err
		}
		s.Phone, s.Address, s.Avatar = phone.String, address.String, avatar.String
		out = append(out, s)
	}
	return out, rows.Err()
}

// requireRow turns a zero-row UPDATE or DELETE into notFound.  The DSN
// sets clientFoundRows so an UPDATE writing identical values still counts.
func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
