// ABOUTME: CLI command to show or clear a session's conversation history
// ABOUTME: Prints turns oldest-first with relative timestamps
package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var historyClear bool

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <session-id>",
		Short: "Show or clear a session's conversation history",
		Long: `Print the session's turns oldest-first, or delete them with --clear.
Unknown sessions print nothing and clear as a no-op.

Examples:
  ragstack history 7f9a0c1e-...
  ragstack history --clear 7f9a0c1e-...`,
		Args: cobra.ExactArgs(1),
		RunE: runHistory,
	}

	cmd.Flags().BoolVar(&historyClear, "clear", false, "Delete the session's history")

	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sessionID := args[0]

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close(ctx)

	if historyClear {
		if err := a.ClearHistory(ctx, sessionID); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared history for session %s\n", sessionID)
		}
		return nil
	}

	messages, err := a.GetHistory(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}
	if len(messages) == 0 {
		if !quiet {
			fmt.Fprintf(cmd.OutOrStdout(), "No history for session %s\n", sessionID)
		}
		return nil
	}
	for _, msg := range messages {
		fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s: %s\n", formatTime(msg.Timestamp), msg.Role, msg.Content)
	}
	return nil
}

// formatTime formats a timestamp relative to now for display.
func formatTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
	return t.Format("2006-01-02")
}
