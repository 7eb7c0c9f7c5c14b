package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/jules/internal/llm"
	"github.com/joescharf/jules/internal/models"
	"github.com/joescharf/jules/internal/output"
	"github.com/joescharf/jules/internal/sessions"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize <session-id>",
	Short: "Summarize a session's activity log with an LLM",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return summarizeRun(args[0])
	},
}

func init() {
	rootCmd.AddCommand(summarizeCmd)
}

func summarizeRun(id string) error {
	anthropicKey := viper.GetString("anthropic.api_key")
	if anthropicKey == "" {
		anthropicKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if anthropicKey == "" {
		return fmt.Errorf("summarize needs an Anthropic API key (set anthropic.api_key or ANTHROPIC_API_KEY)")
	}

	ctx := context.Background()
	engine := sessions.NewEngine(apiClient, models.Session{ID: id})
	if err := engine.Refresh(ctx); err != nil {
		return friendlyErr(err)
	}
	snap := engine.Current()

	client := llm.NewClient(anthropicKey, viper.GetString("anthropic.model"))
	summary, err := client.SummarizeSession(ctx, snap.Session, snap.Activities)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	ui.Info("%s", output.Cyan(summary.Title))
	fmt.Fprintln(ui.Out, summary.Summary)
	if summary.NextStep != "" {
		ui.Info("Next: %s", summary.NextStep)
	}
	for _, r := range summary.Risks {
		ui.Warning("%s", r)
	}
	return nil
}
