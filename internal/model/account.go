package model

import "github.com/shopspring/decimal"

// AccountType classifies accounts reported by the aggregator.
type AccountType string

const (
	AccountTypeDepository AccountType = "depository"
	AccountTypeCredit     AccountType = "credit"
	AccountTypeLoan       AccountType = "loan"
	AccountTypeInvestment AccountType = "investment"
	AccountTypeOther      AccountType = "other"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeDepository, AccountTypeCredit, AccountTypeLoan, AccountTypeInvestment, AccountTypeOther:
		return true
	}
	return false
}

// Account is a bank or card account with its latest balances.
type Account struct {
	ID        string
	Name      string
	Mask      string // last digits of the account number
	Type      AccountType
	Subtype   string
	Current   decimal.Decimal
	Available decimal.NullDecimal
	Currency  string
}
