package model

import "github.com/shopspring/decimal"

// SubscriptionCandidate is a merchant that looks like a recurring charge.
type SubscriptionCandidate struct {
	MerchantName     string
	AverageAmount    decimal.Decimal // mean of the merchant's charges, 2 places
	TransactionCount int
}

// MerchantMonth keys the transactions of one merchant within one calendar month.
type MerchantMonth struct {
	Merchant string
	Year     int
	Month    int
}

// MerchantMonthGroup counts a merchant's charges within one calendar month.
type MerchantMonthGroup struct {
	Key   MerchantMonth
	Count int
}
