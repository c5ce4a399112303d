// ABOUTME: CLI command to ask a question over the knowledge base
// ABOUTME: Supports session continuity, reranking, and metadata filters
package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	querySession    string
	queryNewSession bool
	queryRerank     bool
	queryProduct    string
)

// NewQueryCmd creates the query command.
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <question>",
		Short: "Ask a question grounded in the knowledge base",
		Long: `Retrieve relevant passages and generate an answer. With --session
the conversation continues across invocations; --new-session starts a
fresh session and prints its id.

Examples:
  ragstack query "Does the X-100 support dual power inputs?"
  ragstack query --rerank "What ships in the box?"
  ragstack query --new-session "First question"
  ragstack query --session 7f9a... "And the follow-up?"`,
		Args: cobra.ExactArgs(1),
		RunE: runQuery,
	}

	cmd.Flags().StringVar(&querySession, "session", "", "Session id for conversation continuity")
	cmd.Flags().BoolVar(&queryNewSession, "new-session", false, "Start a new session and print its id")
	cmd.Flags().BoolVar(&queryRerank, "rerank", false, "Rerank retrieved passages before answering")
	cmd.Flags().StringVar(&queryProduct, "product", "", "Restrict retrieval to one productName")

	return cmd
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if queryNewSession && querySession != "" {
		return fmt.Errorf("--session and --new-session are mutually exclusive")
	}
	sessionID := querySession
	if queryNewSession {
		sessionID = uuid.NewString()
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	answer, err := a.Query(ctx, args[0], sessionID, queryRerank, productFilter(queryProduct))
	if err != nil {
		return fmt.Errorf("answering query: %w", err)
	}

	if queryNewSession && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Session: %s\n\n", sessionID)
	}
	fmt.Fprintln(cmd.OutOrStdout(), answer)
	return nil
}

// productFilter builds the metadata filter for a product restriction.
func productFilter(product string) map[string]any {
	if product == "" {
		return nil
	}
	return map[string]any{"metadata.productName": product}
}
