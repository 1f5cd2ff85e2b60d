package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
)

func dup(key string) error {
	return &mysql.MySQLError{Number: 1062, Message: fmt.Sprintf("Duplicate entry 'x' for key '%s'", key)}
}

func TestClassifyDuplicate(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"email", dup("users.uq_users_email"), ErrEmailTaken},
		{"phone", dup("users.uq_users_phone"), ErrPhoneTaken},
		{"legacy key name", dup("phone"), ErrPhoneTaken},
		{"order number", dup("orders.uq_orders_order_number"), ErrDuplicateOrderNumber},
		{"slug", dup("products.uq_products_slug"), ErrSlugTaken},
		{"username", dup("admins.uq_admins_username"), ErrUsernameTaken},
		{"other key", dup("reviews.uq_reviews_user_product_order"), ErrDuplicate},
		{"wrapped", fmt.Errorf("insert user: %w", dup("users.uq_users_email")), ErrEmailTaken},
		{"plain text", errors.New("Error 1062 (23000): Duplicate entry 'a' for key 'users.uq_users_phone'"), ErrPhoneTaken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifyDuplicate(tt.err), tt.want)
		})
	}

	t.Run("not a duplicate", func(t *testing.T) {
		other := &mysql.MySQLError{Number: 1452, Message: "Cannot add or update a child row"}
		assert.Equal(t, error(other), classifyDuplicate(other))
		assert.Nil(t, classifyDuplicate(nil))
	})

	t.Run("port number in a transport error", func(t *testing.T) {
		dial := errors.New("dial tcp 10.0.0.7:1062: connect: connection refused")
		assert.Equal(t, dial, classifyDuplicate(dial))
		assert.NotErrorIs(t, classifyDuplicate(dial), ErrDuplicate)
	})
}

func TestIsMissingTable(t *testing.T) {
	assert.True(t, IsMissingTable(fmt.Errorf("query: %w", &mysql.MySQLError{Number: 1146, Message: "Table 'halchash.blocked_users' doesn't exist"})))
	assert.False(t, IsMissingTable(dup("x")))
	assert.False(t, IsMissingTable(errors.New("boom")))
}
