package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so that a single query
// implementation can serve the plain and the ...Tx variant of a method.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction.  The transaction is committed when
// fn returns nil and rolled back otherwise, including on panic.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

const (
	mysqlDuplicateEntry = 1062
	mysqlNoSuchTable    = 1146
)

// duplicateKey reports whether err is a unique-key violation and, if the
// server said so, which key was hit ("users.uq_users_email" is returned
// as "uq_users_email").
func duplicateKey(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		if me.Number != mysqlDuplicateEntry {
			return "", false
		}
		return keyName(me.Message), true
	}
	// Proxied errors lose their type; match the server's wording only.
	msg := err.Error()
	if strings.Contains(msg, "Error 1062") || strings.Contains(msg, "Duplicate entry") {
		return keyName(msg), true
	}
	return "", false
}

func keyName(msg string) string {
	const marker = "for key '"
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return ""
	}
	k := msg[i+len(marker):]
	if j := strings.IndexByte(k, '\''); j >= 0 {
		k = k[:j]
	}
	if j := strings.LastIndexByte(k, '.'); j >= 0 {
		k = k[j+1:]
	}
	return k
}

// classifyDuplicate maps a unique-key violation onto the matching sentinel.
// Errors that are not duplicates are returned unchanged.
func classifyDuplicate(err error) error {
	key, ok := duplicateKey(err)
	if !ok {
		return err
	}
	switch {
	case strings.Contains(key, "order_number"):
		return ErrDuplicateOrderNumber
	case strings.Contains(key, "slug"):
		return ErrSlugTaken
	case strings.Contains(key, "email"):
		return ErrEmailTaken
	case strings.Contains(key, "phone"):
		return ErrPhoneTaken
	case strings.Contains(key, "username"):
		return ErrUsernameTaken
	}
	return ErrDuplicate
}

// IsMissingTable reports whether err is MySQL error 1146.
func IsMissingTable(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlNoSuchTable
}
