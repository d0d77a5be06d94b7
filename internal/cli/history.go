package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/mlops-seed/internal/history"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Project    string
	Limit      int
	ConfigHash string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded builds and deployments",
		Long: `List the entries of the deployment ledger, newest first.

Entries are written by build-config and deploy-stack when --history-db is set.
With --config-hash, every build and deployment of that exact configuration is
listed oldest first, which traces a built config to the stacks it reached.

Example:
  seed history --history-db ./seed.db
  seed history --history-db ./seed.db --project churn --limit 5 --format json
  seed history --history-db ./seed.db --config-hash 3f9a1c...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Project, "project", "", "only show entries for this project")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "maximum number of entries (0 for all)")
	cmd.Flags().StringVar(&opts.ConfigHash, "config-hash", "", "only show entries that shipped this config hash (oldest first, --limit ignored)")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	out := opts.formatter(cmd)
	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	if opts.HistoryDB == "" {
		return out.FailWith(ErrCodeInvalidFlags, ExitCommandError, "--history-db is required", nil)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ledger, err := openLedger(opts.RootOptions)
	if err != nil {
		return out.FailWith(ErrCodeHistory, ExitCommandError, "failed to open ledger", err)
	}
	defer closeLedger(ledger, logger)

	entries, err := listEntries(ctx, ledger, opts)
	if err != nil {
		return out.FailWith(ErrCodeHistory, ExitFailure, "failed to list ledger", err)
	}

	if opts.Format == "json" {
		return out.JSON(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No entries recorded")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SEQ\tRECORDED\tKIND\tPROJECT\tSTAGE\tTARGET\tHASH")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Seq,
			e.RecordedAt.Format(time.RFC3339),
			e.Kind,
			e.ProjectName,
			e.Stage,
			target(e),
			shortHash(e.ConfigHash),
		)
	}
	return tw.Flush()
}

// listEntries applies the history filters.
func listEntries(ctx context.Context, ledger *history.Store, opts *HistoryOptions) ([]history.Entry, error) {
	if opts.ConfigHash == "" {
		return ledger.List(ctx, opts.Project, opts.Limit)
	}
	entries, err := ledger.ByConfigHash(ctx, opts.ConfigHash)
	if err != nil {
		return nil, err
	}
	if opts.Project == "" {
		return entries, nil
	}
	filtered := []history.Entry{}
	for _, e := range entries {
		if e.ProjectName == opts.Project {
			filtered = append(filtered, e)
		}
	}
	return filtered, nil
}

// target is the stack for deployments and the model package for builds.
func target(e history.Entry) string {
	if e.Kind == history.KindDeployStack {
		return fmt.Sprintf("%s (%s)", e.StackName, e.Action)
	}
	return e.ModelPackageARN
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
