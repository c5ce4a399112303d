// ABOUTME: Root CLI command with global flags and subcommand registration
// ABOUTME: Builds the App from environment configuration for subcommands
package commands

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/docteam/ragstack/internal/app"
	"github.com/docteam/ragstack/internal/config"
)

var (
	verbose bool
	quiet   bool
)

// NewRootCmd creates the root command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ragstack",
		Short: "Retrieval-augmented question answering over a document collection",
		Long: `ragstack ingests documents into a vector-indexed MongoDB collection
and answers questions grounded in the retrieved passages.

Configuration is read from environment variables (and .env if present);
MONGODB_URI, COHERE_API_KEY, and COMPLETION_ENDPOINT are required.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose && quiet {
				return fmt.Errorf("--verbose and --quiet are mutually exclusive")
			}
			switch {
			case verbose:
				log.SetLevel(log.DebugLevel)
			case quiet:
				log.SetLevel(log.ErrorLevel)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")

	cmd.AddCommand(NewIngestCmd())
	cmd.AddCommand(NewIndexCmd())
	cmd.AddCommand(NewQueryCmd())
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// newApp loads configuration and builds the production pipeline.
func newApp(ctx context.Context) (*app.App, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("initializing pipeline: %w", err)
	}
	return a, nil
}
