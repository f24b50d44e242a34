package ledger

import (
	"bytes"
	"strings"
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

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

func TestRoundTrip(t *testing.T) {
	txns := []model.Transaction{
		{
			TransactionID: "tx-1",
			AccountID:     "acc-1",
			Source:        model.SourceCredit,
			Date:          date(2025, 1, 3),
			Name:          "NETFLIX.COM",
			MerchantName:  "Netflix",
			Amount:        dec("15.49"),
			Currency:      "USD",
			Category:      []string{"Service", "Subscription"},
		},
		{
			TransactionID: "tx-2",
			AccountID:     "acc-2",
			Source:        model.SourceChecking,
			Date:          date(2025, 1, 4),
			Name:          "Payroll, ACME \"Inc\"",
			Amount:        dec("-2500"),
			Pending:       true,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteTransactions(&buf, txns))

	// Verify header is present.
	assert.True(t, strings.HasPrefix(buf.String(), "transaction_id,"))

	got, err := ReadTransactions(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)

	for i := range txns {
		assert.Equal(t, txns[i].TransactionID, got[i].TransactionID)
		assert.Equal(t, txns[i].AccountID, got[i].AccountID)
		assert.Equal(t, txns[i].Source, got[i].Source)
		assert.True(t, txns[i].Date.Equal(got[i].Date))
		assert.Equal(t, txns[i].Name, got[i].Name)
		assert.Equal(t, txns[i].MerchantName, got[i].MerchantName)
		assert.True(t, txns[i].Amount.Equal(got[i].Amount), "amount mismatch row %d", i)
		assert.Equal(t, txns[i].Currency, got[i].Currency)
		assert.Equal(t, txns[i].Category, got[i].Category)
		assert.Equal(t, txns[i].Pending, got[i].Pending)
	}
}

func TestReadTransactions_Empty(t *testing.T) {
	got, err := ReadTransactions(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ReadTransactions(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadTransactions_MissingDateKeptZero(t *testing.T) {
	in := Header + "\ntx-1,,credit,acc,Gym,Gym,30.00,USD,,false\n"
	got, err := ReadTransactions(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.True(t, got[0].Date.IsZero())
}

func TestUnmarshalTransaction_Errors(t *testing.T) {
	valid := MarshalTransaction(model.Transaction{Date: date(2025, 1, 1), Amount: dec("1")})

	tests := []struct {
		name   string
		mutate func([]string) []string
		want   string
	}{
		{"field count", func(r []string) []string { return r[:3] }, "expected 10 fields"},
		{"bad date", func(r []string) []string { r[colDate] = "01/01/2025"; return r }, "parsing date"},
		{"bad amount", func(r []string) []string { r[colAmount] = "ten"; return r }, "parsing amount"},
		{"bad pending", func(r []string) []string { r[colPending] = "maybe"; return r }, "parsing pending"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.mutate(append([]string(nil), valid...))
			_, err := UnmarshalTransaction(rec)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadTransactions_RowNumberInError(t *testing.T) {
	in := Header + "\ntx-1,2025-01-01,credit,acc,Gym,Gym,30.00,USD,,false\ntx-2,2025-01-02,credit,acc,Gym,Gym,oops,USD,,false\n"
	_, err := ReadTransactions(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 3")
}
