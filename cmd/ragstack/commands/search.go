// ABOUTME: CLI command to run raw retrieval without answer generation
// ABOUTME: Prints scored passages as a table or JSON
package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	searchLimit   int
	searchRerank  bool
	searchProduct string
	searchJSON    bool
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Retrieve passages without generating an answer",
		Long: `Run vector search (optionally with a rerank pass) and print the
scored passages.

Examples:
  ragstack search "power supply"
  ragstack search --limit 10 --rerank "mounting bracket"
  ragstack search --json "battery life"`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}

	cmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum results to return")
	cmd.Flags().BoolVar(&searchRerank, "rerank", false, "Rerank results before printing")
	cmd.Flags().StringVar(&searchProduct, "product", "", "Restrict retrieval to one productName")
	cmd.Flags().BoolVar(&searchJSON, "json", false, "Print results as JSON")

	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if searchLimit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", searchLimit)
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	results, err := a.Search(ctx, args[0], searchLimit, searchRerank, productFilter(searchProduct))
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if len(results) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No results for query: %s\n", args[0])
		}
		return nil
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n", data)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tPRODUCT\tBODY")
	for _, res := range results {
		score := res.Score
		if res.RerankScore != nil {
			score = *res.RerankScore
		}
		product, _ := res.Metadata["productName"].(string)
		fmt.Fprintf(w, "%.4f\t%s\t%s\n", score, product, truncate(res.Body, 80))
	}
	return w.Flush()
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
