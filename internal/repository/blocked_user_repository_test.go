package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halchash/storefront/internal/model"
)

var blockedColumns = []string{"id", "phone", "reason", "blocked_by", "username", "blocked_at"}

func TestBlockedListMissingTable(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`FROM blocked_users`).WillReturnError(missingTable("blocked_users"))

	r := NewBlockedUserRepo(db)
	list, err := r.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
	assert.False(t, r.Enabled())

	// Once disabled, reads skip the database.
	list, err = r.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestBlockedList(t *testing.T) {
	db, mock := newMock(t)
	at := time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`FROM blocked_users b LEFT JOIN admins`).WillReturnRows(
		sqlmock.NewRows(blockedColumns).
			AddRow(2, "01712345678", "fraud", 1, "root", at).
			AddRow(1, "01812345678", "", nil, "", at))

	list, err := NewBlockedUserRepo(db).List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "root", list[0].BlockedByName)
	require.NotNil(t, list[0].BlockedBy)
	assert.Equal(t, uint64(1), *list[0].BlockedBy)
	assert.Nil(t, list[1].BlockedBy)
}

func TestIsBlockedTxMissingTable(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT 1 FROM blocked_users WHERE phone = \?`).
		WithArgs("01712345678").
		WillReturnError(missingTable("blocked_users"))
	mock.ExpectRollback()

	r := NewBlockedUserRepo(db)
	tx, err := db.Begin()
	require.NoError(t, err)
	blocked, err := r.IsBlockedTx(context.Background(), tx, "01712345678")
	require.NoError(t, err)
	assert.False(t, blocked)
	assert.False(t, r.Enabled())
	require.NoError(t, tx.Rollback())
}

func TestIsBlockedTx(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT 1 FROM blocked_users`).WithArgs("01712345678").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(`SELECT 1 FROM blocked_users`).WithArgs("01912345678").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectRollback()

	r := NewBlockedUserRepo(db)
	tx, err := db.Begin()
	require.NoError(t, err)
	blocked, err := r.IsBlockedTx(context.Background(), tx, "01712345678")
	require.NoError(t, err)
	assert.True(t, blocked)
	blocked, err = r.IsBlockedTx(context.Background(), tx, "01912345678")
	require.NoError(t, err)
	assert.False(t, blocked)
	require.NoError(t, tx.Rollback())
}

func TestBlockedCreate(t *testing.T) {
	by := uint64(1)

	t.Run("inserted", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`INSERT INTO blocked_users`).WithArgs("01712345678", "fraud", &by).
			WillReturnResult(sqlmock.NewResult(5, 1))
		b := model.BlockedUser{Phone: "01712345678", Reason: "fraud", BlockedBy: &by}
		require.NoError(t, NewBlockedUserRepo(db).Create(context.Background(), &b))
		assert.Equal(t, uint64(5), b.ID)
	})

	t.Run("already blocked", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`INSERT INTO blocked_users`).WillReturnError(dup("blocked_users.phone"))
		b := model.BlockedUser{Phone: "01712345678"}
		assert.ErrorIs(t, NewBlockedUserRepo(db).Create(context.Background(), &b), ErrAlreadyBlocked)
	})

	t.Run("missing table", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectExec(`INSERT INTO blocked_users`).WillReturnError(missingTable("blocked_users"))
		r := NewBlockedUserRepo(db)
		b := model.BlockedUser{Phone: "01712345678"}
		assert.ErrorIs(t, r.Create(context.Background(), &b), ErrBlockListUnavailable)
		assert.False(t, r.Enabled())

		// Disabled repos refuse mutations without a query.
		assert.ErrorIs(t, r.Create(context.Background(), &b), ErrBlockListUnavailable)
		assert.ErrorIs(t, r.DeleteByPhone(context.Background(), "01712345678"), ErrBlockListUnavailable)
	})
}

func TestBlockedDelete(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM blocked_users WHERE id = \?`).WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`DELETE FROM blocked_users WHERE phone = \?`).WithArgs("01712345678").
		WillReturnResult(sqlmock.NewResult(0, 1))

	r := NewBlockedUserRepo(db)
	assert.ErrorIs(t, r.DeleteByID(context.Background(), 4), ErrBlockedUserNotFound)
	assert.NoError(t, r.DeleteByPhone(context.Background(), "01712345678"))
}

func TestDetect(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(`information_schema.tables`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))

	r := NewBlockedUserRepo(db)
	on, err := r.Detect(context.Background())
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, r.Enabled())
}
