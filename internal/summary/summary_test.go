package summary

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func txn(merchant, name, amount string, d time.Time, category ...string) model.Transaction {
	return model.Transaction{
		MerchantName: merchant,
		Name:         name,
		Amount:       decimal.RequireFromString(amount),
		Date:         d,
		Category:     category,
	}
}

func sample() []model.Transaction {
	return []model.Transaction{
		txn("Netflix", "NETFLIX.COM", "15.49", date(2025, 1, 5), "Service", "Subscription"),
		txn("Starbucks", "STARBUCKS", "4.50", date(2025, 1, 7), "Food and Drink"),
		txn("Starbucks", "STARBUCKS", "5.25", date(2025, 1, 7), "Food and Drink"),
		txn("", "CORNER DELI", "12.00", date(2025, 2, 1)),
		txn("", "", "1.00", date(2025, 2, 2)),
		txn("", "PAYROLL", "-2500.00", date(2025, 1, 15)),
		txn("Netflix", "NETFLIX.COM", "15.49", date(2025, 2, 5), "Service"),
		txn("Amazon", "AMZN", "-20.00", date(2025, 2, 6), "Shopping"),
	}
}

func labels(b []Bucket) []string {
	out := make([]string, len(b))
	for i := range b {
		out[i] = b[i].Label
	}
	return out
}

func TestTotalSpent_IgnoresCredits(t *testing.T) {
	assert.Equal(t, "53.73", TotalSpent(sample()).StringFixed(2))
	assert.True(t, TotalSpent(nil).IsZero())
}

func TestByCategory(t *testing.T) {
	got := ByCategory(sample())
	assert.Equal(t, []string{"Service", Uncategorized, "Food and Drink"}, labels(got))
	assert.Equal(t, "30.98", got[0].Total.StringFixed(2))
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, "13.00", got[1].Total.StringFixed(2))
}

func TestByMerchant_FallsBackToName(t *testing.T) {
	got := ByMerchant(sample())
	assert.Equal(t, []string{"Netflix", "CORNER DELI", "Starbucks", UnknownMerchant}, labels(got))
	assert.Equal(t, 2, got[2].Count)
	assert.Equal(t, "9.75", got[2].Total.StringFixed(2))
}

func TestByMonth(t *testing.T) {
	got := ByMonth(sample())
	require.Len(t, got, 2)
	assert.Equal(t, "2025-01", got[0].Label)
	assert.Equal(t, "25.24", got[0].Total.StringFixed(2))
	assert.Equal(t, "2025-02", got[1].Label)
	assert.Equal(t, "28.49", got[1].Total.StringFixed(2))
}

func TestDaily(t *testing.T) {
	got := Daily(sample())
	assert.Equal(t, []string{"2025-01-05", "2025-01-07", "2025-02-01", "2025-02-02", "2025-02-05"}, labels(got))
	assert.Equal(t, 2, got[1].Count)
}

func TestByTotal_TiesOrderByLabel(t *testing.T) {
	txns := []model.Transaction{
		txn("B", "", "5", date(2025, 1, 1)),
		txn("A", "", "5", date(2025, 1, 2)),
	}
	assert.Equal(t, []string{"A", "B"}, labels(ByMerchant(txns)))
}

func TestWindow(t *testing.T) {
	end := date(2025, 2, 5)
	w := Window{Days: 30, End: end.Add(15 * time.Hour)}

	tests := []struct {
		d    time.Time
		want bool
	}{
		{date(2025, 2, 5), true},
		{date(2025, 2, 5).Add(23 * time.Hour), true},
		{date(2025, 1, 6), true},
		{date(2025, 1, 5), false},
		{date(2025, 2, 6), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.Contains(tt.d), "date %s", tt.d)
	}

	assert.True(t, Window{}.Contains(date(1999, 1, 1)))
}

func TestSummarize(t *testing.T) {
	s := Summarize(sample(), Window{Days: 10, End: date(2025, 2, 6)})
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, "28.49", s.Total.StringFixed(2))
	assert.Equal(t, []string{"2025-02"}, labels(s.ByMonth))
	assert.Len(t, s.Daily, 3)

	all := Summarize(sample(), Window{})
	assert.Equal(t, 6, all.Count)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, Window{Days: 30, End: date(2025, 2, 6)})
	assert.Equal(t, 0, s.Count)
	assert.True(t, s.Total.IsZero())
	assert.Empty(t, s.ByCategory)
}
