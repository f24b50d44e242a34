package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens/internal/ledger"
	"github.com/ledgerlens/ledgerlens/internal/logging"
)

func newLedgerCommand() *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Merged ledger operations",
	}
	ledgerCmd.AddCommand(newLedgerExportCommand())
	return ledgerCmd
}

func newLedgerExportCommand() *cobra.Command {
	var repoDir, outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the merged ledger as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLedgerExport(cmd.Context(), cmd, repoDir, outPath)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "repository directory")
	cmd.Flags().StringVar(&outPath, "out", "-", "output file, - for stdout")

	return cmd
}

func runLedgerExport(ctx context.Context, cmd *cobra.Command, repoDir, outPath string) error {
	p, l, err := currentLedger(ctx, cmd, repoDir)
	if err != nil {
		return err
	}
	defer p.Close()

	w, err := createOutput(cmd, outPath)
	if err != nil {
		return err
	}
	if err := ledger.WriteTransactions(w, l.Transactions); err != nil {
		w.Close()
		return fmt.Errorf("writing ledger: %w", err)
	}
	if err := w.Close(); err != nil {
		return err
	}

	p.log.WithFields(
		logging.F(logging.FieldFile, outPath),
		logging.F(logging.FieldCount, len(l.Transactions)),
	).Info("Exported ledger")
	return nil
}
