package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/halchash/storefront/internal/model"
)

// MonthlySource returns delivered-order totals per month since a date and
// over all time.
type MonthlySource interface {
	MonthlyDelivered(ctx context.Context, since time.Time) ([]model.MonthlyProfit, error)
	DeliveredTotals(ctx context.Context) (model.DeliveredTotals, error)
}

// DefaultAnalyticsMonths is the report window when none is requested.
const DefaultAnalyticsMonths = 6

// ProfitReport builds the last `months` months of delivered-order profit
// ending with the month of now.  Months without sales are present with
// zero values.  Monthly profit and TotalProfit are never negative; the
// totals cover every delivered order, not only the window.
func ProfitReport(ctx context.Context, src MonthlySource, months int, now time.Time) (model.Analytics, error) {
	if months <= 0 {
		months = DefaultAnalyticsMonths
	}
	if months > 24 {
		months = 24
	}
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)

	rows, err := src.MonthlyDelivered(ctx, first)
	if err != nil {
		return model.Analytics{}, err
	}
	byMonth := make(map[string]model.MonthlyProfit, len(rows))
	for _, r := range rows {
		byMonth[r.Month] = r
	}

	out := model.Analytics{Months: make([]model.MonthlyProfit, 0, months)}
	for i := 0; i < months; i++ {
		key := first.AddDate(0, i, 0).Format("2006-01")
		m, ok := byMonth[key]
		if !ok {
			m = model.MonthlyProfit{Month: key, Profit: decimal.Zero, Sales: decimal.Zero}
		}
		if m.Profit.IsNegative() {
			m.Profit = decimal.Zero
		}
		out.Months = append(out.Months, m)
	}

	totals, err := src.DeliveredTotals(ctx)
	if err != nil {
		return model.Analytics{}, err
	}
	out.TotalProfit = decimal.Max(totals.Profit, decimal.Zero)
	out.TotalSales = totals.Sales
	out.TotalUnitsSold = totals.UnitsSold
	return out, nil
}
