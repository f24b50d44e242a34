// Package report renders candidates, summaries and balances for the CLI.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ledgerlens/ledgerlens/internal/model"
)

// SortKey orders subscription candidates.
type SortKey string

const (
	SortByName   SortKey = "name"
	SortByAmount SortKey = "amount"
	SortByCount  SortKey = "count"
)

// ParseSortKey validates a --sort flag value.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortByName, SortByAmount, SortByCount:
		return k, nil
	case "":
		return SortByName, nil
	default:
		return "", fmt.Errorf("unknown sort key %q (want name, amount or count)", s)
	}
}

// SortCandidates orders cands in place. Amount and count sort descending;
// ties fall back to merchant name.
func SortCandidates(cands []model.SubscriptionCandidate, key SortKey) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		switch key {
		case SortByAmount:
			if c := a.AverageAmount.Cmp(b.AverageAmount); c != 0 {
				return c > 0
			}
		case SortByCount:
			if a.TransactionCount != b.TransactionCount {
				return a.TransactionCount > b.TransactionCount
			}
		}
		return a.MerchantName < b.MerchantName
	})
}
