package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWishlistAdd(t *testing.T) {
	active := `SELECT 1 FROM products WHERE id = \? AND is_active = 1`

	t.Run("added", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(active).WithArgs(8).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectExec(`INSERT INTO wishlist`).WithArgs(3, 8).WillReturnResult(sqlmock.NewResult(1, 1))
		require.NoError(t, NewWishlistRepo(db).Add(context.Background(), 3, 8))
	})

	t.Run("unknown product", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(active).WithArgs(99).WillReturnRows(sqlmock.NewRows([]string{"1"}))
		assert.ErrorIs(t, NewWishlistRepo(db).Add(context.Background(), 3, 99), ErrProductNotFound)
	})

	t.Run("already listed", func(t *testing.T) {
		db, mock := newMock(t)
		mock.ExpectQuery(active).WithArgs(8).WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
		mock.ExpectExec(`INSERT INTO wishlist`).WillReturnError(dup("wishlist.uq_wishlist_user_product"))
		assert.ErrorIs(t, NewWishlistRepo(db).Add(context.Background(), 3, 8), ErrAlreadyInWishlist)
	})
}

func TestWishlistRemove(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM wishlist WHERE user_id = \? AND product_id = \?`).WithArgs(3, 8).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, NewWishlistRepo(db).Remove(context.Background(), 3, 8), ErrNotInWishlist)
}
