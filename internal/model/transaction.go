package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// AccountSource identifies which feed a transaction came from.
type AccountSource string

const (
	SourceChecking AccountSource = "checking"
	SourceCredit   AccountSource = "credit"
)

// Valid reports whether s is a known source.
func (s AccountSource) Valid() bool {
	return s == SourceChecking || s == SourceCredit
}

// Transaction is one row of the merged ledger.
type Transaction struct {
	TransactionID string
	AccountID     string
	Source        AccountSource
	Date          time.Time
	Name          string          // raw bank description
	MerchantName  string          // may be empty
	Amount        decimal.Decimal // positive = charge, negative = refund/payment/credit
	Currency      string
	Category      []string // most general first
	Pending       bool
}

// IsCharge reports whether the transaction moved money out of the account.
func (t Transaction) IsCharge() bool {
	return t.Amount.IsPositive()
}

// PrimaryCategory returns the first category, or "" when uncategorized.
func (t Transaction) PrimaryCategory() string {
	if len(t.Category) == 0 {
		return ""
	}
	return t.Category[0]
}

// HasMerchant reports whether the merchant name carries any non-space text.
func (t Transaction) HasMerchant() bool {
	return strings.TrimSpace(t.MerchantName) != ""
}

// YearMonth returns the calendar month key "YYYY-MM" of the transaction date.
func (t Transaction) YearMonth() string {
	return t.Date.Format("2006-01")
}
