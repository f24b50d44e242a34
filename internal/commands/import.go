package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ledgerlens/ledgerlens/internal/config"
	"github.com/ledgerlens/ledgerlens/internal/gitops"
	"github.com/ledgerlens/ledgerlens/internal/id"
	"github.com/ledgerlens/ledgerlens/internal/importer"
	"github.com/ledgerlens/ledgerlens/internal/ledger"
	"github.com/ledgerlens/ledgerlens/internal/logging"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/ledgerlens/ledgerlens/internal/plaid"
	"github.com/ledgerlens/ledgerlens/internal/refresh"
	"github.com/ledgerlens/ledgerlens/internal/snapshot"
)

type importOptions struct {
	repoDir  string
	format   string
	source   string
	noCommit bool
}

func newImportCommand() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import bank exports from import/ into snapshots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.repoDir, "repo", ".", "repository directory")
	cmd.Flags().StringVar(&opts.format, "format", "", "parser format for every file (overrides feeds)")
	cmd.Flags().StringVar(&opts.source, "source", "", "ledger source for every file: checking or credit")
	cmd.Flags().BoolVar(&opts.noCommit, "no-commit", false, "skip the git commit")

	return cmd
}

func runImport(ctx context.Context, cmd *cobra.Command, opts importOptions) error {
	if opts.source != "" && !model.AccountSource(opts.source).Valid() {
		return fmt.Errorf("--source %q must be checking or credit", opts.source)
	}

	p, err := openProject(ctx, cmd, opts.repoDir)
	if err != nil {
		return err
	}
	defer p.Close()

	files, err := importer.Scan(p.root)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(files) == 0 {
		fmt.Fprintln(out, "No files to import.")
		return nil
	}

	registry := importer.DefaultRegistry()
	batches := make(map[model.AccountSource]*importer.Batch)
	var parsed []string
	for _, f := range files {
		flog := p.log.WithField(logging.FieldFile, f.Name)
		feed, ok := resolveFeed(p.cfg.Feeds, f.Name, opts)
		if !ok {
			flog.Warn("No feed matches file, leaving it in import/")
			continue
		}

		parser, err := registry.Lookup(feed.Format)
		if err != nil {
			return fmt.Errorf("%s: %w", f.Name, err)
		}
		batch, err := parseImportFile(parser, f.Path)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", f.Name, err)
		}

		source := model.AccountSource(feed.Source)
		tagBatch(batch, source, id.Sanitize(feed.Name), p.cfg.Profile.Currency)
		acc, ok := batches[source]
		if !ok {
			acc = &importer.Batch{}
			batches[source] = acc
		}
		acc.Transactions = append(acc.Transactions, batch.Transactions...)
		acc.Accounts = append(acc.Accounts, batch.Accounts...)
		parsed = append(parsed, f.Name)

		flog.WithFields(
			logging.F(logging.FieldFormat, feed.Format),
			logging.F(logging.FieldSource, feed.Source),
			logging.F(logging.FieldCount, len(batch.Transactions)),
		).Info("Parsed import file")
	}

	if len(parsed) == 0 {
		fmt.Fprintln(out, "No files matched a feed.")
		return nil
	}

	recorder := refresh.NewRecorder(p.store, p.log)
	now := time.Now()
	for _, source := range []model.AccountSource{model.SourceChecking, model.SourceCredit} {
		batch, ok := batches[source]
		if !ok {
			continue
		}
		name, count, err := saveSnapshot(ctx, p.store, source, batch, now)
		if err != nil {
			return err
		}
		if err := recorder.Record(ctx, name, count); err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved %s (%d transactions, %d from this import)\n", name, count, len(batch.Transactions))
	}

	for _, name := range parsed {
		if err := importer.MarkProcessed(p.root, name); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "Imported %d file(s)\n", len(parsed))

	if p.cfg.Git.AutoCommit && !opts.noCommit {
		commitImport(p, len(parsed))
	}
	return nil
}

// resolveFeed picks the feed whose name is the longest case-insensitive
// prefix of the file name, then applies --format and --source.
func resolveFeed(feeds []config.Feed, fileName string, opts importOptions) (config.Feed, bool) {
	var best config.Feed
	found := false
	for _, f := range feeds {
		if id.HasPrefix(fileName, f.Name) && (!found || len(f.Name) > len(best.Name)) {
			best, found = f, true
		}
	}

	if opts.source != "" {
		best.Source = opts.source
		if best.Name == "" {
			best.Name = opts.source
		}
	}
	if opts.format != "" {
		best.Format = opts.format
	}
	return best, best.Source != "" && best.Format != ""
}

func parseImportFile(parser importer.Parser, path string) (*importer.Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parser.Parse(f)
}

// tagBatch stamps rows with the feed's source and fills account and
// currency gaps left by formats that do not carry them.
func tagBatch(batch *importer.Batch, source model.AccountSource, accountID, currency string) {
	for i := range batch.Transactions {
		t := &batch.Transactions[i]
		t.Source = source
		if t.AccountID == "" {
			t.AccountID = accountID
		}
		if t.Currency == "" {
			t.Currency = currency
		}
	}
}

// saveSnapshot folds batch into the newest snapshot of source and stores
// the result as <source>_<YYYYMMDD>.
func saveSnapshot(ctx context.Context, store snapshot.Store, source model.AccountSource, batch *importer.Batch, now time.Time) (string, int, error) {
	var (
		txns  []model.Transaction
		accts []model.Account
	)
	prev, err := store.Latest(ctx, string(source)+"_")
	switch {
	case err == nil:
		doc, err := plaid.DecodeBytes(prev.Content)
		if err != nil {
			return "", 0, fmt.Errorf("decoding snapshot %s: %w", prev.Name, err)
		}
		txns = doc.LedgerTransactions(source)
		accts = doc.LedgerAccounts()
	case !errors.Is(err, snapshot.ErrNotFound):
		return "", 0, fmt.Errorf("loading %s snapshot: %w", source, err)
	}

	txns = ledger.MergeTransactions(txns, batch.Transactions)
	accts = ledger.MergeAccounts(accts, batch.Accounts)

	content, err := encodeDocument(plaid.FromLedger(txns, accts))
	if err != nil {
		return "", 0, err
	}

	name := id.FormatSnapshotName(string(source), now)
	if _, err := store.Save(ctx, name, content); err != nil {
		return "", 0, fmt.Errorf("saving snapshot %s: %w", name, err)
	}
	return name, len(txns), nil
}

func commitImport(p *project, files int) {
	if p.cfg.Storage.Backend != config.BackendFile || !gitops.IsRepo(p.root) {
		return
	}
	changed, err := gitops.HasChanges(p.root)
	if err != nil || !changed {
		if err != nil {
			p.log.WithError(err).Warn("Skipping git commit")
		}
		return
	}
	msg := fmt.Sprintf("import: %d file(s)", files)
	hash, err := gitops.CommitAll(p.root, msg, p.cfg.Git.AuthorName, p.cfg.Git.AuthorEmail)
	if err != nil {
		p.log.WithError(err).Warn("Git commit failed")
		return
	}
	p.log.WithField("commit", hash).Info("Committed import")
}

func encodeDocument(doc *plaid.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := plaid.Encode(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
