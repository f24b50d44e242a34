package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens/internal/accounts"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/report"
)

type balancesOptions struct {
	repoDir     string
	from        string
	accountType string
	accountID   string
	csvOut      string
}

func newBalancesCommand() *cobra.Command {
	var opts balancesOptions

	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Show account balances from the newest snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBalances(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.repoDir, "repo", ".", "repository directory")
	cmd.Flags().StringVar(&opts.from, "from", "", "read balances from a CSV written by --csv instead of snapshots")
	cmd.Flags().StringVar(&opts.accountType, "type", "", "only accounts of this type (depository, credit, loan, investment, other)")
	cmd.Flags().StringVar(&opts.accountID, "account", "", "only the account with this ID")
	cmd.Flags().StringVar(&opts.csvOut, "csv", "", "also write the listed balances to this CSV file")

	return cmd
}

func runBalances(ctx context.Context, cmd *cobra.Command, opts balancesOptions) error {
	var accountType model.AccountType
	if opts.accountType != "" {
		accountType = model.AccountType(strings.ToLower(opts.accountType))
		if !accountType.Valid() {
			return fmt.Errorf("unknown account type %q", opts.accountType)
		}
	}

	out := cmd.OutOrStdout()
	p, svc, err := loadBalances(ctx, cmd, opts)
	if err != nil {
		return err
	}
	defer p.Close()

	accts := svc.All()
	if accountType != "" {
		accts = svc.ByType(accountType)
	}
	if opts.accountID != "" {
		a, ok := svc.Get(opts.accountID)
		if !ok || (accountType != "" && a.Type != accountType) {
			return fmt.Errorf("account %q not found", opts.accountID)
		}
		accts = []model.Account{a}
	}

	shown := accounts.NewService(accts)
	if err := report.WriteBalances(out, shown.All(), shown.Totals(p.cfg.Profile.Currency)); err != nil {
		return err
	}

	if opts.csvOut != "" {
		if err := shown.Save(opts.csvOut); err != nil {
			return err
		}
	}
	return nil
}

// loadBalances reads accounts from --from or from the newest snapshots.
// Snapshot balances are preceded by the refresh status line.
func loadBalances(ctx context.Context, cmd *cobra.Command, opts balancesOptions) (*project, *accounts.Service, error) {
	if opts.from != "" {
		p, err := loadProject(cmd, opts.repoDir, true)
		if err != nil {
			return nil, nil, err
		}
		svc, err := accounts.Load(opts.from)
		if err != nil {
			return nil, nil, err
		}
		return p, svc, nil
	}

	p, l, err := currentLedger(ctx, cmd, opts.repoDir)
	if err != nil {
		return nil, nil, err
	}
	status, err := p.refreshStatus(ctx)
	if err != nil {
		p.Close()
		return nil, nil, err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Data %s\n\n", status)
	return p, accounts.NewService(l.Accounts), nil
}
