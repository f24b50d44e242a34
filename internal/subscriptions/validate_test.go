package subscriptions

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Validate(nil))
	assert.NoError(t, Validate([]model.Transaction{
		charge("Netflix", "2024-01-05", "15.49"),
		{MerchantName: "", Date: time.Now(), Amount: decimal.NewFromInt(-3)},
	}))
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name  string
		txn   model.Transaction
		field string
	}{
		{
			name:  "missing date",
			txn:   model.Transaction{MerchantName: "X", Amount: decimal.NewFromInt(1)},
			field: "date",
		},
		{
			name:  "invalid utf8 merchant",
			txn:   model.Transaction{MerchantName: "\xff\xfe", Date: day("2024-01-01")},
			field: "merchant_name",
		},
		{
			name:  "unknown source",
			txn:   model.Transaction{MerchantName: "X", Date: day("2024-01-01"), Source: "brokerage"},
			field: "account_source",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]model.Transaction{charge("ok", "2024-01-01", "1"), tt.txn})
			require.Error(t, err)
			verr, ok := err.(*ValidationError)
			require.True(t, ok)
			assert.Equal(t, 1, verr.Index)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Index: 3, Field: "date", Reason: "missing"}
	assert.Equal(t, "transaction 3: date: missing", err.Error())

	err.TransactionID = "abc"
	assert.Equal(t, "transaction 3 (abc): date: missing", err.Error())
}
