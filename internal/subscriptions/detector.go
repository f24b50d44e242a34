// Package subscriptions flags merchants whose charges look like a recurring
// subscription: roughly monthly spacing and a stable price.
package subscriptions

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens/ledgerlens/internal/logging"
	"github.com/ledgerlens/ledgerlens/internal/model"
)

// Options tunes the detector. Start from DefaultOptions.
type Options struct {
	MinGapDays      int             // exclusive lower bound on a monthly gap
	MaxGapDays      int             // exclusive upper bound on a monthly gap
	MaxPriceDelta   decimal.Decimal // inclusive bound on a consistent price change
	MinTransactions int

	// GroupBlankMerchants puts every charge without a merchant name into a
	// single "" bucket. When false those charges are never candidates.
	GroupBlankMerchants bool
}

// DefaultOptions returns the standard monthly-subscription heuristic.
func DefaultOptions() Options {
	return Options{
		MinGapDays:      25,
		MaxGapDays:      35,
		MaxPriceDelta:   decimal.NewFromInt(2),
		MinTransactions: 2,
	}
}

// Detector runs subscription detection. It holds no state between calls.
type Detector struct {
	opts Options
	log  logging.Logger
}

// NewDetector creates a Detector. A nil logger discards output.
func NewDetector(opts Options, log logging.Logger) *Detector {
	if log == nil {
		log = logging.NewDiscard()
	}
	return &Detector{opts: opts, log: log}
}

// Detect runs the default detector over a ledger.
func Detect(txns []model.Transaction) ([]model.SubscriptionCandidate, error) {
	return NewDetector(DefaultOptions(), nil).Detect(txns)
}

// Detect returns the subscription candidates found in txns, sorted by
// merchant name. Input order does not matter. The ledger is validated first;
// a malformed record fails the whole call with a *ValidationError.
func (d *Detector) Detect(txns []model.Transaction) ([]model.SubscriptionCandidate, error) {
	if err := Validate(txns); err != nil {
		return nil, err
	}

	charges := d.charges(txns)
	bad := badMerchants(charges)

	groups := make(map[string][]model.Transaction)
	for _, txn := range charges {
		if bad[txn.MerchantName] {
			continue
		}
		groups[txn.MerchantName] = append(groups[txn.MerchantName], txn)
	}

	var candidates []model.SubscriptionCandidate
	for merchant, group := range groups {
		if len(group) < d.opts.MinTransactions || len(group) < 2 {
			continue
		}
		if !d.recurring(group) {
			continue
		}
		candidates = append(candidates, model.SubscriptionCandidate{
			MerchantName:     merchant,
			AverageAmount:    average(group),
			TransactionCount: len(group),
		})
	}

	slices.SortFunc(candidates, func(a, b model.SubscriptionCandidate) int {
		return strings.Compare(a.MerchantName, b.MerchantName)
	})

	d.log.Debug("subscription detection finished",
		logging.Field{Key: logging.FieldCount, Value: len(txns)},
		logging.Field{Key: "charges", Value: len(charges)},
		logging.Field{Key: "excluded_merchants", Value: len(bad)},
		logging.Field{Key: "candidates", Value: len(candidates)},
	)
	return candidates, nil
}

// charges keeps positive amounts and applies the blank-merchant policy.
func (d *Detector) charges(txns []model.Transaction) []model.Transaction {
	var out []model.Transaction
	for _, txn := range txns {
		if !txn.IsCharge() {
			continue
		}
		if !txn.HasMerchant() {
			if !d.opts.GroupBlankMerchants {
				continue
			}
			txn.MerchantName = ""
		}
		out = append(out, txn)
	}
	return out
}

// MonthGroups counts charges per merchant and calendar month.
func MonthGroups(charges []model.Transaction) []model.MerchantMonthGroup {
	counts := make(map[model.MerchantMonth]int)
	var order []model.MerchantMonth
	for _, txn := range charges {
		key := model.MerchantMonth{
			Merchant: txn.MerchantName,
			Year:     txn.Date.Year(),
			Month:    int(txn.Date.Month()),
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	groups := make([]model.MerchantMonthGroup, len(order))
	for i, key := range order {
		groups[i] = model.MerchantMonthGroup{Key: key, Count: counts[key]}
	}
	return groups
}

// badMerchants returns merchants charged more than once in some calendar month.
func badMerchants(charges []model.Transaction) map[string]bool {
	bad := make(map[string]bool)
	for _, g := range MonthGroups(charges) {
		if g.Count > 1 {
			bad[g.Key.Merchant] = true
		}
	}
	return bad
}

// recurring reports whether a merchant's charges contain at least one
// monthly gap and at least one consistent price step. The two need not come
// from the same pair of charges.
func (d *Detector) recurring(group []model.Transaction) bool {
	slices.SortStableFunc(group, func(a, b model.Transaction) int {
		return a.Date.Compare(b.Date)
	})

	monthly, consistent := 0, 0
	for i := 1; i < len(group); i++ {
		gap := daysBetween(group[i-1].Date, group[i].Date)
		if gap > d.opts.MinGapDays && gap < d.opts.MaxGapDays {
			monthly++
		}
		delta := group[i].Amount.Sub(group[i-1].Amount).Abs()
		if delta.LessThanOrEqual(d.opts.MaxPriceDelta) {
			consistent++
		}
	}
	return monthly >= 1 && consistent >= 1
}

func average(group []model.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, txn := range group {
		sum = sum.Add(txn.Amount)
	}
	return sum.Div(decimal.NewFromInt(int64(len(group)))).Round(2)
}

// daysBetween counts calendar days from a to b, ignoring time of day.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
