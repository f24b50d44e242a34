package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens/ledgerlens/internal/accounts"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/summary"
)

func cand(name, amount string, count int) model.SubscriptionCandidate {
	return model.SubscriptionCandidate{
		MerchantName:     name,
		AverageAmount:    decimal.RequireFromString(amount),
		TransactionCount: count,
	}
}

func names(cands []model.SubscriptionCandidate) []string {
	out := make([]string, len(cands))
	for i, c := range cands {
		out[i] = c.MerchantName
	}
	return out
}

func TestParseSortKey(t *testing.T) {
	tests := []struct {
		in      string
		want    SortKey
		wantErr bool
	}{
		{"", SortByName, false},
		{"name", SortByName, false},
		{"Amount", SortByAmount, false},
		{" count ", SortByCount, false},
		{"date", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSortKey(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSortCandidates(t *testing.T) {
	base := []model.SubscriptionCandidate{
		cand("Spotify", "11.99", 3),
		cand("Gym", "30.00", 2),
		cand("Netflix", "15.66", 3),
		cand("Adobe", "11.99", 2),
	}

	tests := []struct {
		key  SortKey
		want []string
	}{
		{SortByName, []string{"Adobe", "Gym", "Netflix", "Spotify"}},
		{SortByAmount, []string{"Gym", "Netflix", "Adobe", "Spotify"}},
		{SortByCount, []string{"Netflix", "Spotify", "Adobe", "Gym"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			cands := append([]model.SubscriptionCandidate(nil), base...)
			SortCandidates(cands, tt.key)
			assert.Equal(t, tt.want, names(cands))
		})
	}
}

func TestWriteCandidates(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCandidates(&buf, []model.SubscriptionCandidate{
		cand("Netflix", "15.66", 3),
		cand("Gym", "30", 2),
	}))

	out := buf.String()
	assert.Contains(t, out, "MERCHANT")
	assert.Contains(t, out, "Netflix")
	assert.Contains(t, out, "15.66")
	assert.Contains(t, out, "30.00")
	assert.Contains(t, out, "2 subscriptions")
	assert.Contains(t, out, "45.66 / month")
}

func TestWriteCandidates_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCandidates(&buf, nil))
	assert.Equal(t, "No subscriptions detected.\n", buf.String())
}

func TestWriteSummary(t *testing.T) {
	s := summary.Summary{
		Window: summary.Window{Days: 30, End: time.Date(2025, 2, 5, 0, 0, 0, 0, time.UTC)},
		Total:  decimal.RequireFromString("53.73"),
		Count:  6,
		ByCategory: []summary.Bucket{
			{Label: "Service", Total: decimal.RequireFromString("30.98"), Count: 2},
		},
		ByMerchant: []summary.Bucket{
			{Label: "Netflix", Total: decimal.RequireFromString("30.98"), Count: 2},
			{Label: "Starbucks", Total: decimal.RequireFromString("9.75"), Count: 2},
			{Label: "Deli", Total: decimal.RequireFromString("1"), Count: 1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, s, 2))
	out := buf.String()

	assert.Contains(t, out, "Last 30 days to 2025-02-05")
	assert.Contains(t, out, "53.73")
	assert.Contains(t, out, "Starbucks")
	assert.NotContains(t, out, "Deli")
	assert.Contains(t, out, "... 1 more")
	assert.Contains(t, out, "By month\n  (none)")
}

func TestWriteBalances(t *testing.T) {
	accts := []model.Account{
		{ID: "chk", Name: "Checking", Mask: "0000", Type: model.AccountTypeDepository, Current: decimal.RequireFromString("1500"),
			Available: decimal.NewNullDecimal(decimal.RequireFromString("1400")), Currency: "USD"},
		{ID: "card", Name: "Card", Type: model.AccountTypeCredit, Current: decimal.RequireFromString("300"), Currency: "USD"},
	}
	totals := accounts.NewService(accts).Totals("USD")

	var buf bytes.Buffer
	require.NoError(t, WriteBalances(&buf, accts, totals))
	out := buf.String()

	assert.Contains(t, out, "Checking (...0000)")
	assert.Contains(t, out, "1400.00")
	assert.Contains(t, out, "net 1200.00")

	buf.Reset()
	require.NoError(t, WriteBalances(&buf, nil, nil))
	assert.Equal(t, "No accounts found.\n", buf.String())
}

func TestExportImportCandidates(t *testing.T) {
	cands := []model.SubscriptionCandidate{
		cand("Netflix", "15.66", 3),
		cand("Gym, Downtown", "30", 2),
	}

	var buf bytes.Buffer
	require.NoError(t, ExportCandidates(&buf, cands))
	assert.True(t, strings.HasPrefix(buf.String(), "merchant_name,average_amount,transaction_count\n"))
	assert.Contains(t, buf.String(), "30.00")

	got, err := ImportCandidates(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Gym, Downtown", got[1].MerchantName)
	assert.True(t, got[0].AverageAmount.Equal(decimal.RequireFromString("15.66")))
	assert.Equal(t, 3, got[0].TransactionCount)
}

func TestExportCandidates_HeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ExportCandidates(&buf, nil))
	assert.Equal(t, "merchant_name,average_amount,transaction_count\n", buf.String())
}

func TestImportCandidates_BadAmount(t *testing.T) {
	in := "merchant_name,average_amount,transaction_count\nNetflix,lots,3\n"
	_, err := ImportCandidates(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "average_amount")
}

func TestExportSummary(t *testing.T) {
	s := summary.Summarize([]model.Transaction{
		{MerchantName: "Netflix", Amount: decimal.RequireFromString("15.49"), Date: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC)},
	}, summary.Window{})

	var buf bytes.Buffer
	require.NoError(t, ExportSummary(&buf, s))
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, "view,label,total,count\n"))
	assert.Contains(t, out, "total,all,15.49,1")
	assert.Contains(t, out, "category,Uncategorized,15.49,1")
	assert.Contains(t, out, "merchant,Netflix,15.49,1")
	assert.Contains(t, out, "month,2025-01,15.49,1")
	assert.Contains(t, out, "day,2025-01-05,15.49,1")
}

func TestCompareCandidates(t *testing.T) {
	prev := []model.SubscriptionCandidate{
		cand("Hulu", "7.99", 4),
		cand("Netflix", "15.49", 2),
		cand("Spotify", "11.99", 2),
	}
	cur := []model.SubscriptionCandidate{
		cand("Spotify", "11.990", 3),
		cand("Netflix", "15.66", 3),
		cand("Gym", "30", 2),
	}

	c := CompareCandidates(prev, cur)
	require.Len(t, c.Added, 1)
	assert.Equal(t, "Gym", c.Added[0].MerchantName)
	require.Len(t, c.Removed, 1)
	assert.Equal(t, "Hulu", c.Removed[0].MerchantName)
	require.Len(t, c.Repriced, 1, "same price at two places is not a change")
	assert.Equal(t, "Netflix", c.Repriced[0].MerchantName)
	assert.Equal(t, "15.49", c.Repriced[0].Before.StringFixed(2))
	assert.Equal(t, "15.66", c.Repriced[0].After.StringFixed(2))
	assert.False(t, c.Empty())
}

func TestWriteChanges(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteChanges(&buf, Changes{}))
	assert.Equal(t, "No changes since the previous export.\n", buf.String())

	buf.Reset()
	c := CompareCandidates(
		[]model.SubscriptionCandidate{cand("Hulu", "7.99", 4), cand("Netflix", "15.49", 2)},
		[]model.SubscriptionCandidate{cand("Netflix", "15.66", 3), cand("Gym", "30", 2)},
	)
	require.NoError(t, WriteChanges(&buf, c))
	out := buf.String()
	assert.Contains(t, out, "+ Gym")
	assert.Contains(t, out, "- Hulu")
	assert.Contains(t, out, "~ Netflix")
	assert.Contains(t, out, "15.49 -> 15.66")
}
