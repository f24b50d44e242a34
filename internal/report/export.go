package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/summary"
)

// CandidateRow is the CSV shape of a subscription candidate.
type CandidateRow struct {
	MerchantName     string `csv:"merchant_name"`
	AverageAmount    string `csv:"average_amount"`
	TransactionCount int    `csv:"transaction_count"`
}

// BucketRow is the CSV shape of a summary bucket.
type BucketRow struct {
	View  string `csv:"view"`
	Label string `csv:"label"`
	Total string `csv:"total"`
	Count int    `csv:"count"`
}

// ExportCandidates writes cands as CSV with a header row.
func ExportCandidates(w io.Writer, cands []model.SubscriptionCandidate) error {
	rows := make([]CandidateRow, len(cands))
	for i, c := range cands {
		rows[i] = CandidateRow{
			MerchantName:     c.MerchantName,
			AverageAmount:    c.AverageAmount.StringFixed(2),
			TransactionCount: c.TransactionCount,
		}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing candidates CSV: %w", err)
	}
	return nil
}

// ImportCandidates reads a CSV written by ExportCandidates.
func ImportCandidates(r io.Reader) ([]model.SubscriptionCandidate, error) {
	var rows []CandidateRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("reading candidates CSV: %w", err)
	}

	out := make([]model.SubscriptionCandidate, len(rows))
	for i, row := range rows {
		amt, err := decimal.NewFromString(row.AverageAmount)
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing average_amount %q: %w", i+2, row.AverageAmount, err)
		}
		out[i] = model.SubscriptionCandidate{
			MerchantName:     row.MerchantName,
			AverageAmount:    amt,
			TransactionCount: row.TransactionCount,
		}
	}
	return out, nil
}

// ExportSummary writes every view of s as one long CSV.
func ExportSummary(w io.Writer, s summary.Summary) error {
	rows := []BucketRow{{View: "total", Label: windowLabel(s.Window), Total: s.Total.StringFixed(2), Count: s.Count}}
	for _, v := range []struct {
		name    string
		buckets []summary.Bucket
	}{
		{"category", s.ByCategory},
		{"merchant", s.ByMerchant},
		{"month", s.ByMonth},
		{"day", s.Daily},
	} {
		for _, b := range v.buckets {
			rows = append(rows, BucketRow{View: v.name, Label: b.Label, Total: b.Total.StringFixed(2), Count: b.Count})
		}
	}
	if err := gocsv.Marshal(rows, w); err != nil {
		return fmt.Errorf("writing summary CSV: %w", err)
	}
	return nil
}

func windowLabel(w summary.Window) string {
	if w.Days <= 0 {
		return "all"
	}
	return "last " + strconv.Itoa(w.Days) + " days"
}
