package plaid

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

const sampleDoc = `{
  "transactions": [
    {
      "transaction_id": "tx-1",
      "account_id": "acc-1",
      "name": "NETFLIX.COM",
      "merchant_name": "Netflix",
      "amount": 15.49,
      "iso_currency_code": "USD",
      "date": "2024-01-05",
      "category": ["Service", "Subscription"],
      "pending": false
    },
    {
      "transaction_id": "tx-2",
      "account_id": "acc-1",
      "name": "Payroll",
      "merchant_name": null,
      "amount": -2500,
      "iso_currency_code": "USD",
      "date": "2024-01-15",
      "category": null,
      "pending": true
    }
  ],
  "accounts_full": [
    {
      "account_id": "acc-1",
      "name": "Everyday Checking",
      "mask": "0000",
      "type": "depository",
      "subtype": "checking",
      "balances": {"current": 1200.5, "available": 1100, "iso_currency_code": "USD"}
    },
    {
      "account_id": "acc-2",
      "name": "Brokerage",
      "type": "brokerage",
      "balances": {"current": 10, "available": null}
    }
  ],
  "item": {"item_id": "item-1", "institution_id": "ins_3"}
}`

func TestDecode(t *testing.T) {
	doc, err := DecodeBytes([]byte(sampleDoc))
	require.NoError(t, err)

	require.Len(t, doc.Transactions, 2)
	assert.Equal(t, "item-1", doc.Item.ItemID)
	assert.Equal(t, Category{"Service", "Subscription"}, doc.Transactions[0].Category)
	assert.Nil(t, doc.Transactions[1].Category)
	assert.Nil(t, doc.Transactions[1].MerchantName)
	assert.True(t, doc.Transactions[0].Amount.Decimal.Equal(decimal.RequireFromString("15.49")))
}

func TestDecodeRejectsStringifiedCategory(t *testing.T) {
	in := `{"transactions": [{"transaction_id": "tx-9", "amount": 1, "date": "2024-01-01",
		"category": "['Food and Drink', 'Coffee']"}]}`

	_, err := DecodeBytes([]byte(in))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformed))
	assert.Contains(t, err.Error(), "transactions[0]")
	assert.Contains(t, err.Error(), "category")
}

func TestDecodeRejectsNonStringCategoryElement(t *testing.T) {
	in := `{"transactions": [{"transaction_id": "tx-9", "amount": 1, "date": "2024-01-01", "category": ["Food", 3]}]}`

	_, err := DecodeBytes([]byte(in))
	require.ErrorIs(t, err, ErrMalformed)
	assert.Contains(t, err.Error(), "category[1]")
}

func TestDecodeValidation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"bad date", `{"transactions": [{"transaction_id": "tx-1", "amount": 1, "date": "01/05/2024"}]}`, "tx-1"},
		{"missing date", `{"transactions": [{"transaction_id": "tx-2", "amount": 1}]}`, "tx-2"},
		{"missing amount", `{"transactions": [{"transaction_id": "tx-3", "date": "2024-01-01"}]}`, "amount is missing"},
		{"account without id", `{"accounts_full": [{"name": "x"}]}`, "accounts_full[0]"},
		{"not json", `[1, 2`, "malformed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes([]byte(tt.input))
			require.ErrorIs(t, err, ErrMalformed)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLedgerTransactions(t *testing.T) {
	doc, err := DecodeBytes([]byte(sampleDoc))
	require.NoError(t, err)

	txns := doc.LedgerTransactions(model.SourceCredit)
	require.Len(t, txns, 2)

	first := txns[0]
	assert.Equal(t, "tx-1", first.TransactionID)
	assert.Equal(t, "Netflix", first.MerchantName)
	assert.Equal(t, model.SourceCredit, first.Source)
	assert.Equal(t, "2024-01-05", first.Date.Format("2006-01-02"))
	assert.True(t, first.IsCharge())
	assert.Equal(t, "Service", first.PrimaryCategory())

	second := txns[1]
	assert.Equal(t, "", second.MerchantName)
	assert.False(t, second.IsCharge())
	assert.True(t, second.Pending)
}

func TestLedgerAccounts(t *testing.T) {
	doc, err := DecodeBytes([]byte(sampleDoc))
	require.NoError(t, err)

	accts := doc.LedgerAccounts()
	require.Len(t, accts, 2)
	assert.Equal(t, model.AccountTypeDepository, accts[0].Type)
	assert.Equal(t, "0000", accts[0].Mask)
	assert.True(t, accts[0].Current.Equal(decimal.RequireFromString("1200.5")))
	assert.True(t, accts[0].Available.Valid)
	assert.Equal(t, model.AccountTypeOther, accts[1].Type)
	assert.False(t, accts[1].Available.Valid)
	assert.Equal(t, "", accts[1].Currency)
}

func TestFromLedgerEncodeDecode(t *testing.T) {
	doc, err := DecodeBytes([]byte(sampleDoc))
	require.NoError(t, err)

	rebuilt := FromLedger(doc.LedgerTransactions(model.SourceChecking), doc.LedgerAccounts())

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, rebuilt))
	assert.True(t, strings.Contains(buf.String(), `"accounts_full"`))

	again, err := Decode(&buf)
	require.NoError(t, err)
	txns := again.LedgerTransactions(model.SourceChecking)
	require.Len(t, txns, 2)
	assert.Equal(t, "Netflix", txns[0].MerchantName)
	assert.Equal(t, []string{"Service", "Subscription"}, txns[0].Category)
	assert.True(t, txns[1].Amount.Equal(decimal.NewFromInt(-2500)))
}
