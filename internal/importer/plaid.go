package importer

import (
	"fmt"
	"io"

	"github.com/ledgerlens/ledgerlens/internal/plaid"
)

// PlaidParser reads a raw aggregator snapshot document. Amounts already
// use the ledger's sign convention.
type PlaidParser struct{}

// Format returns the parser name.
func (p *PlaidParser) Format() string { return "plaid" }

// Parse decodes the document. The source is left empty; the feed that
// imports the file decides it.
func (p *PlaidParser) Parse(r io.Reader) (*Batch, error) {
	doc, err := plaid.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("reading plaid JSON: %w", err)
	}
	return &Batch{
		Transactions: doc.LedgerTransactions(""),
		Accounts:     doc.LedgerAccounts(),
	}, nil
}
