// ABOUTME: CLI command to print deployment statistics
// ABOUTME: Shows document count and the effective model and chunking settings
package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

// NewStatsCmd creates the stats command.
func NewStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print knowledge base statistics",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}

	cmd.Flags().BoolVar(&statsJSON, "json", false, "Print statistics as JSON")

	return cmd
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	stats, err := a.Stats(ctx)
	if err != nil {
		return fmt.Errorf("reading stats: %w", err)
	}

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Documents:       %d\n", stats.DocumentCount)
	fmt.Fprintf(cmd.OutOrStdout(), "Database:        %s.%s\n", stats.Database, stats.Collection)
	fmt.Fprintf(cmd.OutOrStdout(), "Embedding model: %s (%d dimensions)\n", stats.EmbeddingModel, stats.EmbeddingDimensions)
	fmt.Fprintf(cmd.OutOrStdout(), "Rerank model:    %s\n", stats.RerankModel)
	fmt.Fprintf(cmd.OutOrStdout(), "Chunk size:      %d\n", stats.ChunkSize)
	return nil
}
