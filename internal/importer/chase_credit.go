package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// ChaseCreditParser parses Chase credit card CSV exports:
// Transaction Date,Post Date,Description,Category,Type,Amount,Memo.
// Purchases are negative in the export and become positive charges.
type ChaseCreditParser struct{}

const (
	chaseCreditNumFields   = 7
	chaseCreditColDate     = 0
	chaseCreditColDesc     = 2
	chaseCreditColCategory = 3
	chaseCreditColAmount   = 5
)

// Format returns the parser name.
func (p *ChaseCreditParser) Format() string { return "chase-credit" }

// Parse reads a Chase credit card CSV.
func (p *ChaseCreditParser) Parse(r io.Reader) (*Batch, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseCreditNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase credit CSV: %w", err)
	}

	batch := &Batch{}
	if len(records) <= 1 {
		return batch, nil
	}

	refs := newRefSet()
	for i, rec := range records[1:] {
		date, err := time.Parse(chaseDateFormat, rec[chaseCreditColDate])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing date %q: %w", i+2, rec[chaseCreditColDate], err)
		}
		amount, err := decimal.NewFromString(rec[chaseCreditColAmount])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing amount %q: %w", i+2, rec[chaseCreditColAmount], err)
		}

		desc := strings.TrimSpace(rec[chaseCreditColDesc])
		var category []string
		if c := strings.TrimSpace(rec[chaseCreditColCategory]); c != "" {
			category = []string{c}
		}

		batch.Transactions = append(batch.Transactions, model.Transaction{
			TransactionID: refs.unique(makeChaseRef("chasecc", date, desc, amount.Neg())),
			Source:        model.SourceCredit,
			Date:          date,
			Name:          desc,
			MerchantName:  NormalizeMerchant(desc),
			Amount:        amount.Neg(),
			Category:      category,
		})
	}
	return batch, nil
}
