package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halchash/storefront/internal/model"
)

func takenSlugs(slugs ...string) SlugExistsFunc {
	return func(_ context.Context, slug string, _ uint64) (bool, error) {
		for _, s := range slugs {
			if s == slug {
				return true, nil
			}
		}
		return false, nil
	}
}

func TestResolveSlug(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1700000000, 0)

	s, err := ResolveSlug(ctx, takenSlugs(), "Organic Honey & Ghee", 0, now)
	require.NoError(t, err)
	assert.Equal(t, "organic-honey-ghee", s)

	s, err = ResolveSlug(ctx, takenSlugs("organic-honey-ghee"), "Organic Honey & Ghee", 0, now)
	require.NoError(t, err)
	assert.Equal(t, "organic-honey-ghee-1700000000", s)

	s, err = ResolveSlug(ctx, takenSlugs("organic-honey-ghee"), "Organic Honey & Ghee", 14, now)
	require.NoError(t, err)
	assert.Equal(t, "organic-honey-ghee-14", s)

	_, err = ResolveSlug(ctx, takenSlugs(), "!!!", 0, now)
	assert.True(t, IsValidation(err))

	boom := errors.New("db down")
	_, err = ResolveSlug(ctx, func(context.Context, string, uint64) (bool, error) { return false, boom }, "Tea", 0, now)
	assert.ErrorIs(t, err, boom)
}

type monthlyStub struct {
	since  time.Time
	rows   []model.MonthlyProfit
	totals model.DeliveredTotals
}

func (m *monthlyStub) MonthlyDelivered(_ context.Context, since time.Time) ([]model.MonthlyProfit, error) {
	m.since = since
	return m.rows, nil
}

func (m *monthlyStub) DeliveredTotals(context.Context) (model.DeliveredTotals, error) {
	return m.totals, nil
}

func TestProfitReportZeroFills(t *testing.T) {
	src := &monthlyStub{rows: []model.MonthlyProfit{
		{Month: "2026-06", Profit: dec("120.50"), Sales: dec("900"), UnitsSold: 9},
		{Month: "2026-09", Profit: dec("30"), Sales: dec("200"), UnitsSold: 2},
	}, totals: model.DeliveredTotals{Profit: dec("410.5"), Sales: dec("2500"), UnitsSold: 31}}
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

	rep, err := ProfitReport(context.Background(), src, 0, now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), src.since)

	months := make([]string, 0, len(rep.Months))
	for _, m := range rep.Months {
		months = append(months, m.Month)
	}
	assert.Equal(t, []string{"2026-05", "2026-06", "2026-07", "2026-08", "2026-09", "2026-10"}, months)
	assert.True(t, rep.Months[0].Profit.IsZero())
	assert.True(t, rep.Months[1].Profit.Equal(dec("120.50")))

	// Totals are all time, not the window.
	assert.True(t, rep.TotalProfit.Equal(dec("410.5")))
	assert.True(t, rep.TotalSales.Equal(dec("2500")))
	assert.Equal(t, 31, rep.TotalUnitsSold)
}

func TestProfitReportClampsLosses(t *testing.T) {
	src := &monthlyStub{rows: []model.MonthlyProfit{
		// +100 and -80 on two items net to 20.
		{Month: "2026-09", Profit: dec("20"), Sales: dec("500"), UnitsSold: 2},
		{Month: "2026-10", Profit: dec("-45"), Sales: dec("90"), UnitsSold: 1},
	}, totals: model.DeliveredTotals{Profit: dec("-25"), Sales: dec("640"), UnitsSold: 3}}

	rep, err := ProfitReport(context.Background(), src, 2, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rep.Months, 2)
	assert.True(t, rep.Months[0].Profit.Equal(dec("20")))
	assert.True(t, rep.Months[1].Profit.IsZero())
	assert.Equal(t, 1, rep.Months[1].UnitsSold)
	assert.True(t, rep.TotalProfit.IsZero())
	assert.True(t, rep.TotalSales.Equal(dec("640")))
}

func TestProfitReportCrossesYear(t *testing.T) {
	src := &monthlyStub{}
	rep, err := ProfitReport(context.Background(), src, 3, time.Date(2027, 1, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, rep.Months, 3)
	assert.Equal(t, "2026-11", rep.Months[0].Month)
	assert.Equal(t, "2027-01", rep.Months[2].Month)
}
