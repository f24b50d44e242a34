package subscriptions

import (
	"fmt"
	"unicode/utf8"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// ValidationError identifies the first ledger record that breaks the
// detector's input contract.
type ValidationError struct {
	Index         int
	TransactionID string
	Field         string
	Reason        string
}

func (e *ValidationError) Error() string {
	if e.TransactionID != "" {
		return fmt.Sprintf("transaction %d (%s): %s: %s", e.Index, e.TransactionID, e.Field, e.Reason)
	}
	return fmt.Sprintf("transaction %d: %s: %s", e.Index, e.Field, e.Reason)
}

// Validate checks every record and returns the first violation.
func Validate(txns []model.Transaction) error {
	for i, txn := range txns {
		fail := func(field, reason string) error {
			return &ValidationError{Index: i, TransactionID: txn.TransactionID, Field: field, Reason: reason}
		}
		if txn.Date.IsZero() {
			return fail("date", "missing")
		}
		if !utf8.ValidString(txn.MerchantName) {
			return fail("merchant_name", "not valid UTF-8")
		}
		if txn.Source != "" && !txn.Source.Valid() {
			return fail("account_source", fmt.Sprintf("unknown source %q", txn.Source))
		}
	}
	return nil
}
