package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens/internal/ledger"
	"github.com/ledgerlens/ledgerlens/internal/logging"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/report"
	"github.com/ledgerlens/ledgerlens/internal/subscriptions"
)

type subscriptionsOptions struct {
	repoDir    string
	ledgerFile string
	sort       string
	csvOut     string
	compare    string
}

func newSubscriptionsCommand() *cobra.Command {
	var opts subscriptionsOptions

	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subs"},
		Short:   "Detect recurring monthly charges",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubscriptions(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.repoDir, "repo", ".", "repository directory")
	cmd.Flags().StringVar(&opts.ledgerFile, "ledger", "", "read transactions from a ledger CSV instead of snapshots")
	cmd.Flags().StringVar(&opts.sort, "sort", "name", "sort by name, amount or count")
	cmd.Flags().StringVar(&opts.csvOut, "csv", "", "also write candidates to this CSV file")
	cmd.Flags().StringVar(&opts.compare, "compare", "", "report changes against an earlier --csv export")

	return cmd
}

func runSubscriptions(ctx context.Context, cmd *cobra.Command, opts subscriptionsOptions) error {
	sortKey, err := report.ParseSortKey(opts.sort)
	if err != nil {
		return err
	}

	p, txns, err := loadTransactions(ctx, cmd, opts.repoDir, opts.ledgerFile)
	if err != nil {
		return err
	}
	defer p.Close()

	detOpts, err := p.detectorOptions()
	if err != nil {
		return err
	}
	det := subscriptions.NewDetector(detOpts, p.log)
	cands, err := det.Detect(txns)
	if err != nil {
		return fmt.Errorf("detecting subscriptions: %w", err)
	}
	report.SortCandidates(cands, sortKey)

	if err := report.WriteCandidates(cmd.OutOrStdout(), cands); err != nil {
		return err
	}

	if opts.compare != "" {
		prev, err := readCandidates(opts.compare)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
		if err := report.WriteChanges(cmd.OutOrStdout(), report.CompareCandidates(prev, cands)); err != nil {
			return err
		}
	}

	if opts.csvOut != "" {
		w, err := createOutput(cmd, opts.csvOut)
		if err != nil {
			return err
		}
		if err := report.ExportCandidates(w, cands); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return err
		}
		p.log.WithFields(
			logging.F(logging.FieldFile, opts.csvOut),
			logging.F(logging.FieldCount, len(cands)),
		).Info("Exported subscriptions")
	}
	return nil
}

func readCandidates(path string) ([]model.SubscriptionCandidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening previous export: %w", err)
	}
	defer f.Close()
	cands, err := report.ImportCandidates(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return cands, nil
}

// loadTransactions returns the ledger either from a CSV file or from the
// newest snapshots. A ledger file does not need a ledgerlens.yaml.
func loadTransactions(ctx context.Context, cmd *cobra.Command, repoDir, ledgerFile string) (*project, []model.Transaction, error) {
	if ledgerFile != "" {
		p, err := loadProject(cmd, repoDir, true)
		if err != nil {
			return nil, nil, err
		}
		f, err := os.Open(ledgerFile)
		if err != nil {
			return nil, nil, fmt.Errorf("opening ledger: %w", err)
		}
		defer f.Close()
		txns, err := ledger.ReadTransactions(f)
		if err != nil {
			return nil, nil, fmt.Errorf("reading ledger %s: %w", ledgerFile, err)
		}
		return p, txns, nil
	}

	p, l, err := currentLedger(ctx, cmd, repoDir)
	if err != nil {
		return nil, nil, err
	}
	return p, l.Transactions, nil
}

// currentLedger opens the project and derives the ledger from the newest
// snapshots. The caller closes the project.
func currentLedger(ctx context.Context, cmd *cobra.Command, repoDir string) (*project, *ledger.Ledger, error) {
	p, err := openProject(ctx, cmd, repoDir)
	if err != nil {
		return nil, nil, err
	}
	l, err := ledger.NewCache(p.store, p.ledgerDisk(), p.log).Current(ctx)
	if err != nil {
		p.Close()
		return nil, nil, fmt.Errorf("building ledger: %w", err)
	}
	p.log.WithFields(
		logging.F(logging.FieldSnapshot, l.Key.Snapshots()),
		logging.F(logging.FieldCount, len(l.Transactions)),
	).Debug("Ledger loaded")
	return p, l, nil
}
