package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens/ledgerlens/internal/accounts"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/summary"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// WriteCandidates renders candidates as an aligned table with a monthly
// total footer.
func WriteCandidates(w io.Writer, cands []model.SubscriptionCandidate) error {
	if len(cands) == 0 {
		_, err := fmt.Fprintln(w, "No subscriptions detected.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "MERCHANT\tAVG AMOUNT\tCHARGES")
	total := decimal.Zero
	for _, c := range cands {
		fmt.Fprintf(tw, "%s\t%s\t%d\n", c.MerchantName, c.AverageAmount.StringFixed(2), c.TransactionCount)
		total = total.Add(c.AverageAmount)
	}
	fmt.Fprintf(tw, "\t\t\n")
	fmt.Fprintf(tw, "%d subscriptions\t%s / month\t\n", len(cands), total.StringFixed(2))
	return tw.Flush()
}

// WriteSummary renders the spending views. top limits the merchant list;
// zero shows all.
func WriteSummary(w io.Writer, s summary.Summary, top int) error {
	tw := newTable(w)
	if s.Window.Days > 0 {
		fmt.Fprintf(tw, "Last %d days to %s\n", s.Window.Days, s.Window.End.Format("2006-01-02"))
	} else {
		fmt.Fprintln(tw, "All time")
	}
	fmt.Fprintf(tw, "Total spent:\t%s\t(%d charges)\n", s.Total.StringFixed(2), s.Count)

	writeBuckets(tw, "By category", s.ByCategory, 0)
	writeBuckets(tw, "By merchant", s.ByMerchant, top)
	writeBuckets(tw, "By month", s.ByMonth, 0)
	return tw.Flush()
}

func writeBuckets(tw *tabwriter.Writer, title string, b []summary.Bucket, limit int) {
	fmt.Fprintf(tw, "\n%s\n", title)
	if len(b) == 0 {
		fmt.Fprintln(tw, "  (none)")
		return
	}
	for i, row := range b {
		if limit > 0 && i == limit {
			fmt.Fprintf(tw, "  ... %d more\t\t\n", len(b)-limit)
			break
		}
		fmt.Fprintf(tw, "  %s\t%s\t%d\n", row.Label, row.Total.StringFixed(2), row.Count)
	}
}

// WriteBalances renders each account and the per-currency totals.
func WriteBalances(w io.Writer, accts []model.Account, totals []accounts.Total) error {
	if len(accts) == 0 {
		_, err := fmt.Fprintln(w, "No accounts found.")
		return err
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ACCOUNT\tTYPE\tCURRENT\tAVAILABLE\tCURRENCY")
	for _, a := range accts {
		name := a.Name
		if a.Mask != "" {
			name = fmt.Sprintf("%s (...%s)", a.Name, a.Mask)
		}
		avail := "-"
		if a.Available.Valid {
			avail = a.Available.Decimal.StringFixed(2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", name, a.Type, a.Current.StringFixed(2), avail, a.Currency)
	}

	fmt.Fprintln(tw, "\t\t\t\t")
	for _, t := range totals {
		fmt.Fprintf(tw, "%s\tassets %s\tdebts %s\tnet %s\t\n",
			t.Currency, t.Assets.StringFixed(2), t.Debts.StringFixed(2), t.Net().StringFixed(2))
	}
	return tw.Flush()
}
