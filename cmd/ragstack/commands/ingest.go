// ABOUTME: CLI command to ingest a JSON document file into the knowledge base
// ABOUTME: Chunks, embeds, replaces the collection, and rebuilds the vector index
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/docteam/ragstack/internal/ingest"
)

var (
	ingestFilters   []string
	ingestSkipIndex bool
)

// NewIngestCmd creates the ingest command.
func NewIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file.json>",
		Short: "Load documents into the knowledge base",
		Long: `Ingest a JSON array of documents: each document is chunked, its
chunks are embedded as one batch, and the collection's previous
contents are replaced. The vector search index is then rebuilt unless
--skip-index is given.

Examples:
  ragstack ingest docs.json
  ragstack ingest --filters metadata.productName docs.json
  ragstack ingest --skip-index docs.json`,
		Args: cobra.ExactArgs(1),
		RunE: runIngest,
	}

	cmd.Flags().StringSliceVar(&ingestFilters, "filters", []string{"metadata.productName", "metadata.contentType"},
		"Metadata paths declared filterable in the vector index")
	cmd.Flags().BoolVar(&ingestSkipIndex, "skip-index", false, "Do not rebuild the vector search index")

	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	docs, err := ingest.LoadJSON(args[0])
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("%s contains no documents", args[0])
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	n, err := a.Ingest(ctx, docs)
	if err != nil {
		return fmt.Errorf("ingesting documents: %w", err)
	}
	if !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Stored %d chunks from %d documents\n", n, len(docs))
	}

	if ingestSkipIndex {
		return nil
	}
	ready, err := a.EnsureVectorIndex(ctx, ingestFilters...)
	if err != nil {
		return fmt.Errorf("rebuilding vector index: %w", err)
	}
	if !ready {
		return fmt.Errorf("vector index did not become queryable; check the deployment and retry (filters: %s)",
			strings.Join(ingestFilters, ", "))
	}
	if !quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "Vector index is ready")
	}
	return nil
}
