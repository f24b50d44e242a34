package plaid

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// LedgerTransactions converts the document's transactions into ledger rows
// tagged with source. Decode has already validated dates and amounts.
func (d *Document) LedgerTransactions(source model.AccountSource) []model.Transaction {
	out := make([]model.Transaction, 0, len(d.Transactions))
	for _, t := range d.Transactions {
		date, _ := time.Parse(dateLayout, t.Date)
		out = append(out, model.Transaction{
			TransactionID: t.TransactionID,
			AccountID:     t.AccountID,
			Source:        source,
			Date:          date,
			Name:          t.Name,
			MerchantName:  deref(t.MerchantName),
			Amount:        t.Amount.Decimal,
			Currency:      deref(t.ISOCurrencyCode),
			Category:      append([]string(nil), t.Category...),
			Pending:       t.Pending,
		})
	}
	return out
}

// LedgerAccounts converts accounts_full into model accounts.
func (d *Document) LedgerAccounts() []model.Account {
	out := make([]model.Account, 0, len(d.Accounts))
	for _, a := range d.Accounts {
		out = append(out, model.Account{
			ID:        a.AccountID,
			Name:      a.Name,
			Mask:      deref(a.Mask),
			Type:      accountType(a.Type),
			Subtype:   deref(a.Subtype),
			Current:   a.Balances.Current.Decimal,
			Available: a.Balances.Available,
			Currency:  deref(a.Balances.ISOCurrencyCode),
		})
	}
	return out
}

// FromLedger builds a document from parsed ledger rows, e.g. a bank CSV
// export, so file imports are stored in the same shape as aggregator pulls.
func FromLedger(txns []model.Transaction, accounts []model.Account) *Document {
	doc := &Document{
		Transactions: make([]Transaction, 0, len(txns)),
		Accounts:     make([]Account, 0, len(accounts)),
	}
	for _, t := range txns {
		doc.Transactions = append(doc.Transactions, Transaction{
			TransactionID:   t.TransactionID,
			AccountID:       t.AccountID,
			Name:            t.Name,
			MerchantName:    ref(t.MerchantName),
			Amount:          decimal.NewNullDecimal(t.Amount),
			ISOCurrencyCode: ref(t.Currency),
			Date:            t.Date.Format(dateLayout),
			Category:        Category(t.Category),
			Pending:         t.Pending,
		})
	}
	for _, a := range accounts {
		doc.Accounts = append(doc.Accounts, Account{
			AccountID: a.ID,
			Name:      a.Name,
			Mask:      ref(a.Mask),
			Type:      string(a.Type),
			Subtype:   ref(a.Subtype),
			Balances: Balances{
				Current:         decimal.NewNullDecimal(a.Current),
				Available:       a.Available,
				ISOCurrencyCode: ref(a.Currency),
			},
		})
	}
	return doc
}

func accountType(s string) model.AccountType {
	if t := model.AccountType(s); t.Valid() {
		return t
	}
	return model.AccountTypeOther
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
