// Package summary aggregates charges into spending views.
package summary

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// Uncategorized labels charges without a category.
const Uncategorized = "Uncategorized"

// UnknownMerchant labels charges with neither a merchant nor a name.
const UnknownMerchant = "Unknown"

// Window selects charges dated within Days days up to and including End.
// Days <= 0 selects every charge.
type Window struct {
	Days int
	End  time.Time
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d time.Time) bool {
	if w.Days <= 0 {
		return true
	}
	end := day(w.End)
	start := end.AddDate(0, 0, -w.Days)
	d = day(d)
	return !d.Before(start) && !d.After(end)
}

// Bucket is one row of a grouped view.
type Bucket struct {
	Label string
	Total decimal.Decimal
	Count int
}

// Summary is every view over one window.
type Summary struct {
	Window     Window
	Total      decimal.Decimal
	Count      int
	ByCategory []Bucket
	ByMerchant []Bucket
	ByMonth    []Bucket
	Daily      []Bucket
}

// Summarize computes all views over the charges in w.
func Summarize(txns []model.Transaction, w Window) Summary {
	charges := Charges(txns, w)
	return Summary{
		Window:     w,
		Total:      TotalSpent(charges),
		Count:      len(charges),
		ByCategory: ByCategory(charges),
		ByMerchant: ByMerchant(charges),
		ByMonth:    ByMonth(charges),
		Daily:      Daily(charges),
	}
}

// Charges returns the positive-amount transactions inside w.
func Charges(txns []model.Transaction, w Window) []model.Transaction {
	var out []model.Transaction
	for _, t := range txns {
		if t.IsCharge() && w.Contains(t.Date) {
			out = append(out, t)
		}
	}
	return out
}

// TotalSpent sums the charge amounts in txns.
func TotalSpent(txns []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txns {
		if t.IsCharge() {
			total = total.Add(t.Amount)
		}
	}
	return total
}

// ByCategory groups charges by primary category, largest total first.
func ByCategory(txns []model.Transaction) []Bucket {
	return byTotal(group(txns, func(t model.Transaction) string {
		if c := strings.TrimSpace(t.PrimaryCategory()); c != "" {
			return c
		}
		return Uncategorized
	}))
}

// ByMerchant groups charges by merchant, largest total first. A blank
// merchant falls back to the raw name.
func ByMerchant(txns []model.Transaction) []Bucket {
	return byTotal(group(txns, func(t model.Transaction) string {
		if t.HasMerchant() {
			return strings.TrimSpace(t.MerchantName)
		}
		if n := strings.TrimSpace(t.Name); n != "" {
			return n
		}
		return UnknownMerchant
	}))
}

// ByMonth groups charges by "YYYY-MM", oldest first.
func ByMonth(txns []model.Transaction) []Bucket {
	return byLabel(group(txns, model.Transaction.YearMonth))
}

// Daily groups charges by "YYYY-MM-DD", oldest first.
func Daily(txns []model.Transaction) []Bucket {
	return byLabel(group(txns, func(t model.Transaction) string {
		return t.Date.Format("2006-01-02")
	}))
}

func group(txns []model.Transaction, key func(model.Transaction) string) []Bucket {
	idx := make(map[string]int)
	var out []Bucket
	for _, t := range txns {
		if !t.IsCharge() {
			continue
		}
		k := key(t)
		i, ok := idx[k]
		if !ok {
			i = len(out)
			idx[k] = i
			out = append(out, Bucket{Label: k, Total: decimal.Zero})
		}
		out[i].Total = out[i].Total.Add(t.Amount)
		out[i].Count++
	}
	return out
}

func byTotal(b []Bucket) []Bucket {
	sort.SliceStable(b, func(i, j int) bool {
		if c := b[i].Total.Cmp(b[j].Total); c != 0 {
			return c > 0
		}
		return b[i].Label < b[j].Label
	})
	return b
}

func byLabel(b []Bucket) []Bucket {
	sort.SliceStable(b, func(i, j int) bool { return b[i].Label < b[j].Label })
	return b
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
