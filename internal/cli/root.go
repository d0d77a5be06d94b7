package cli

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose   bool
	Format    string // "json" | "text"
	LogLevel  string
	HistoryDB string

	// Clients builds the AWS service clients for a region.
	// If nil, defaults to DefaultClients.
	Clients ClientFactory
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the seed CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "seed - model deployment tooling",
		Long: `Deployment tooling for SageMaker project model endpoints.

build-config resolves the latest approved model package of a project and writes
extended staging and prod configurations. deploy-stack creates or updates the
CloudFormation stack of one stage from such a configuration.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if _, err := parseLevel(opts.LogLevel); err != nil {
				return err
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", defaultLogLevel(), "log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.HistoryDB, "history-db", "", "path to the deployment ledger (disabled when empty)")

	// Add subcommands
	cmd.AddCommand(NewBuildConfigCommand(opts))
	cmd.AddCommand(NewDeployStackCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// defaultLogLevel reads $LOGLEVEL, falling back to info.
func defaultLogLevel() string {
	if v := os.Getenv("LOGLEVEL"); v != "" {
		return strings.ToLower(v)
	}
	return "info"
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter builds the OutputFormatter for a command invocation.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// clients returns the configured client factory.
func (o *RootOptions) clients() ClientFactory {
	if o.Clients != nil {
		return o.Clients
	}
	return DefaultClients
}
