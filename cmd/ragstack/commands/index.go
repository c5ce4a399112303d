// ABOUTME: CLI command to rebuild the vector search index
// ABOUTME: Drops any existing index, recreates it, and waits for READY
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var indexFilters []string

// NewIndexCmd creates the index command.
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Rebuild the vector search index",
		Long: `Drop the vector search index if it exists, recreate it from the
configured dimensions, and wait for the build to report READY.

Examples:
  ragstack index
  ragstack index --filters metadata.productName --filters metadata.contentType`,
		Args: cobra.NoArgs,
		RunE: runIndex,
	}

	cmd.Flags().StringSliceVar(&indexFilters, "filters", []string{"metadata.productName", "metadata.contentType"},
		"Metadata paths declared filterable in the vector index")

	return cmd
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	ready, err := a.EnsureVectorIndex(ctx, indexFilters...)
	if err != nil {
		return fmt.Errorf("rebuilding vector index: %w", err)
	}
	if !ready {
		return fmt.Errorf("vector index did not become queryable (filters: %s)", strings.Join(indexFilters, ", "))
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Vector index is ready")
	}
	return nil
}
