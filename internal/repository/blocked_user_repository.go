package repository

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"

	"github.com/halchash/storefront/internal/model"
)

// BlockedUserRepo manages the optional blocked_users table.  Older
// deployments may not have the table; Detect records whether it exists and
// every read treats a missing table as an empty block list.
type BlockedUserRepo struct {
	db      *sql.DB
	enabled atomic.Bool
}

// NewBlockedUserRepo returns a repo that assumes the table exists until
// Detect says otherwise.
func NewBlockedUserRepo(db *sql.DB) *BlockedUserRepo {
	r := &BlockedUserRepo{db: db}
	r.enabled.Store(true)
	return r
}

// Detect checks information_schema for the blocked_users table and sets
// the capability flag accordingly.
func (r *BlockedUserRepo) Detect(ctx context.Context) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = 'blocked_users'`).Scan(&n)
	if err != nil {
		return r.enabled.Load(), err
	}
	r.enabled.Store(n > 0)
	return n > 0, nil
}

// Enabled reports whether the block list feature is available.
func (r *BlockedUserRepo) Enabled() bool { return r.enabled.Load() }

// IsBlockedTx reports whether a normalized phone is on the block list.
func (r *BlockedUserRepo) IsBlockedTx(ctx context.Context, tx *sql.Tx, phone string) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, `SELECT 1 FROM blocked_users WHERE phone = ? LIMIT 1`, phone).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case IsMissingTable(err):
		r.enabled.Store(false)
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// List returns every block with the blocking admin's username.
func (r *BlockedUserRepo) List(ctx context.Context) ([]model.BlockedUser, error) {
	out := []model.BlockedUser{}
	if !r.Enabled() {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT b.id, b.phone, COALESCE(b.reason, ''), b.blocked_by, COALESCE(a.username, ''), b.blocked_at
		FROM blocked_users b LEFT JOIN admins a ON a.id = b.blocked_by
		ORDER BY b.blocked_at DESC, b.id DESC`)
	if IsMissingTable(err) {
		r.enabled.Store(false)
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var b model.BlockedUser
		var by sql.NullInt64
		if err := rows.Scan(&b.ID, &b.Phone, &b.Reason, &by, &b.BlockedByName, &b.BlockedAt); err != nil {
			return nil, err
		}
		if by.Valid {
			id := uint64(by.Int64)
			b.BlockedBy = &id
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Create blocks a normalized phone number and sets b.ID.
func (r *BlockedUserRepo) Create(ctx context.Context, b *model.BlockedUser) error {
	if !r.Enabled() {
		return ErrBlockListUnavailable
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO blocked_users (phone, reason, blocked_by) VALUES (?, ?, ?)`, b.Phone, b.Reason, b.BlockedBy)
	if err != nil {
		if _, dup := duplicateKey(err); dup {
			return ErrAlreadyBlocked
		}
		if IsMissingTable(err) {
			r.enabled.Store(false)
			return ErrBlockListUnavailable
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// DeleteByID unblocks by row id.
func (r *BlockedUserRepo) DeleteByID(ctx context.Context, id uint64) error {
	return r.delete(ctx, `DELETE FROM blocked_users WHERE id = ?`, id)
}

// DeleteByPhone unblocks a normalized phone number.
func (r *BlockedUserRepo) DeleteByPhone(ctx context.Context, phone string) error {
	return r.delete(ctx, `DELETE FROM blocked_users WHERE phone = ?`, phone)
}

func (r *BlockedUserRepo) delete(ctx context.Context, q string, arg any) error {
	if !r.Enabled() {
		return ErrBlockListUnavailable
	}
	res, err := r.db.ExecContext(ctx, q, arg)
	if IsMissingTable(err) {
		r.enabled.Store(false)
		return ErrBlockListUnavailable
	}
	if err != nil {
		return err
	}
	return requireRow(res, ErrBlockedUserNotFound)
}
