package repository

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unclampedMatcher matches like the default matcher but rejects SQL that
// floors per-item profit.
var unclampedMatcher = sqlmock.QueryMatcherFunc(func(expected, actual string) error {
	if strings.Contains(actual, "GREATEST") {
		return fmt.Errorf("per-item profit is clamped: %s", actual)
	}
	return sqlmock.QueryMatcherRegexp.Match(expected, actual)
})

func TestMonthlyDeliveredKeepsLosses(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(unclampedMatcher))
	require.NoError(t, err)
	defer db.Close()
	since := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`\(oi.product_price - oi.buying_price\) \* oi.quantity(?s:.*)WHERE o.status = 'delivered' AND o.created_at >= \?`).
		WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"month", "profit", "sales", "units"}).
			AddRow("2026-09", "20.00", "500.00", 2).
			AddRow("2026-10", "-45.00", "90.00", 1))

	rows, err := NewAnalyticsRepo(db).MonthlyDelivered(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "20", rows[0].Profit.String())
	assert.Equal(t, "-45", rows[1].Profit.String())
	assert.Equal(t, 1, rows[1].UnitsSold)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeliveredTotals(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta(`COALESCE(SUM(oi.quantity), 0)`)).
		WillReturnRows(sqlmock.NewRows([]string{"profit", "units"}).AddRow("-25.00", 3))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status = 'delivered'`)).
		WillReturnRows(sqlmock.NewRows([]string{"sales"}).AddRow("640.00"))

	totals, err := NewAnalyticsRepo(db).DeliveredTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "-25", totals.Profit.String())
	assert.Equal(t, "640", totals.Sales.String())
	assert.Equal(t, 3, totals.UnitsSold)
}
