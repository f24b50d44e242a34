package importer

import (
	"encoding/csv"
	"fmt"
	"hash/fnv"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// ChaseParser parses Chase bank checking CSV exports. Chase reports debits
// as negative; the ledger stores them as positive charges.
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
)

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase checking CSV.
func (p *ChaseParser) Parse(r io.Reader) (*Batch, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}

	batch := &Batch{}
	if len(records) <= 1 {
		return batch, nil
	}

	refs := newRefSet()
	for i, rec := range records[1:] {
		txn, err := parseChaseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txn.TransactionID = refs.unique(makeChaseRef("chase", txn.Date, txn.Name, txn.Amount))
		batch.Transactions = append(batch.Transactions, txn)
	}
	return batch, nil
}

func parseChaseRow(rec []string) (model.Transaction, error) {
	date, err := time.Parse(chaseDateFormat, rec[chaseColDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}

	amount, err := decimal.NewFromString(rec[chaseColAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", rec[chaseColAmount], err)
	}

	desc := strings.TrimSpace(rec[chaseColDesc])

	return model.Transaction{
		Source:       model.SourceChecking,
		Date:         date,
		Name:         desc,
		MerchantName: NormalizeMerchant(desc),
		Amount:       amount.Neg(),
	}, nil
}

// makeChaseRef creates a reference like chase_20250103_GITHUBPROS_e1c01a96.
// The suffix hashes the full description and amount, so rows sharing a
// description prefix stay distinct across separate exports.
func makeChaseRef(format string, date time.Time, desc string, amount decimal.Decimal) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, desc)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	h := fnv.New32a()
	h.Write([]byte(desc + "|" + amount.StringFixed(2)))
	return fmt.Sprintf("%s_%s_%s_%08x", format, date.Format("20060102"), prefix, h.Sum32())
}

// refSet disambiguates references that collide within one file.
type refSet map[string]int

func newRefSet() refSet { return make(refSet) }

func (s refSet) unique(ref string) string {
	n := s[ref]
	s[ref] = n + 1
	if n == 0 {
		return ref
	}
	return fmt.Sprintf("%s_%d", ref, n+1)
}
