package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens/internal/report"
	"github.com/ledgerlens/ledgerlens/internal/summary"
)

type summaryOptions struct {
	repoDir    string
	ledgerFile string
	days       int
	end        string
	top        int
	csvOut     string
}

func newSummaryCommand() *cobra.Command {
	var opts summaryOptions

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show spending totals by category, merchant and month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("days") {
				opts.days = -1
			}
			return runSummary(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.repoDir, "repo", ".", "repository directory")
	cmd.Flags().StringVar(&opts.ledgerFile, "ledger", "", "read transactions from a ledger CSV instead of snapshots")
	cmd.Flags().IntVar(&opts.days, "days", 0, "window length in days, 0 for all time (default from config)")
	cmd.Flags().StringVar(&opts.end, "end", "", "last day of the window, YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&opts.top, "top", 10, "merchants to list, 0 for all")
	cmd.Flags().StringVar(&opts.csvOut, "csv", "", "also write every view to this CSV file")

	return cmd
}

func runSummary(ctx context.Context, cmd *cobra.Command, opts summaryOptions) error {
	end := time.Now()
	if opts.end != "" {
		var err error
		end, err = time.Parse("2006-01-02", opts.end)
		if err != nil {
			return fmt.Errorf("parsing --end: %w", err)
		}
	}

	p, txns, err := loadTransactions(ctx, cmd, opts.repoDir, opts.ledgerFile)
	if err != nil {
		return err
	}
	defer p.Close()

	if p.store != nil {
		if _, err := p.refreshStatus(ctx); err != nil {
			return err
		}
	}

	days := opts.days
	if days < 0 {
		days = p.cfg.Summary.WindowDays
	}

	s := summary.Summarize(txns, summary.Window{Days: days, End: end})
	if err := report.WriteSummary(cmd.OutOrStdout(), s, opts.top); err != nil {
		return err
	}

	if opts.csvOut != "" {
		w, err := createOutput(cmd, opts.csvOut)
		if err != nil {
			return err
		}
		if err := report.ExportSummary(w, s); err != nil {
			w.Close()
			return err
		}
		return w.Close()
	}
	return nil
}
