package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// PriceChange is a subscription whose average amount moved.
type PriceChange struct {
	MerchantName string
	Before       decimal.Decimal
	After        decimal.Decimal
}

// Changes is the difference between two candidate lists.
type Changes struct {
	Added    []model.SubscriptionCandidate
	Removed  []model.SubscriptionCandidate
	Repriced []PriceChange
}

// Empty reports whether nothing changed.
func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.Repriced) == 0
}

// CompareCandidates matches prev and cur by merchant name. Averages are
// compared at two decimal places.
func CompareCandidates(prev, cur []model.SubscriptionCandidate) Changes {
	before := make(map[string]model.SubscriptionCandidate, len(prev))
	for _, c := range prev {
		before[c.MerchantName] = c
	}

	var out Changes
	seen := make(map[string]bool, len(cur))
	for _, c := range cur {
		seen[c.MerchantName] = true
		old, ok := before[c.MerchantName]
		switch {
		case !ok:
			out.Added = append(out.Added, c)
		case !old.AverageAmount.Round(2).Equal(c.AverageAmount.Round(2)):
			out.Repriced = append(out.Repriced, PriceChange{
				MerchantName: c.MerchantName,
				Before:       old.AverageAmount,
				After:        c.AverageAmount,
			})
		}
	}
	for _, c := range prev {
		if !seen[c.MerchantName] {
			out.Removed = append(out.Removed, c)
		}
	}

	byName := func(s []model.SubscriptionCandidate) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].MerchantName < s[j].MerchantName })
	}
	byName(out.Added)
	byName(out.Removed)
	sort.SliceStable(out.Repriced, func(i, j int) bool {
		return out.Repriced[i].MerchantName < out.Repriced[j].MerchantName
	})
	return out
}

// WriteChanges renders c, one merchant per line: + new, - gone, ~ repriced.
func WriteChanges(w io.Writer, c Changes) error {
	if c.Empty() {
		_, err := fmt.Fprintln(w, "No changes since the previous export.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "Changes since the previous export:")
	for _, a := range c.Added {
		fmt.Fprintf(tw, "  + %s\t%s\n", a.MerchantName, a.AverageAmount.StringFixed(2))
	}
	for _, r := range c.Removed {
		fmt.Fprintf(tw, "  - %s\t%s\n", r.MerchantName, r.AverageAmount.StringFixed(2))
	}
	for _, p := range c.Repriced {
		fmt.Fprintf(tw, "  ~ %s\t%s -> %s\n", p.MerchantName, p.Before.StringFixed(2), p.After.StringFixed(2))
	}
	return tw.Flush()
}
