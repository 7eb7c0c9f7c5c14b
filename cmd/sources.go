package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joescharf/jules/internal/output"
)

var sourcesFilter string

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List repositories connected as session sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return sourcesListRun()
	},
}

var sourcesShowCmd = &cobra.Command{
	Use:   "show <source-id>",
	Short: "Show one source and its branches",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return sourcesShowRun(args[0])
	},
}

func init() {
	sourcesCmd.Flags().StringVar(&sourcesFilter, "filter", "", "Server-side filter expression")
	sourcesCmd.AddCommand(sourcesShowCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func sourcesListRun() error {
	ctx := context.Background()
	resp, err := apiClient.ListSources(ctx, 100, "", sourcesFilter)
	if err != nil {
		return friendlyErr(err)
	}

	if len(resp.Sources) == 0 {
		ui.Info("No sources connected. Connect a repository at jules.google.com.")
		return nil
	}

	table := ui.Table([]string{"NAME", "REPO", "DEFAULT BRANCH", "PRIVATE"})
	for _, s := range resp.Sources {
		repo, branch, private := "", "", ""
		if gh := s.GitHubRepo; gh != nil {
			repo = s.DisplayName()
			if gh.DefaultBranch != nil {
				branch = gh.DefaultBranch.DisplayName
			}
			if gh.IsPrivate {
				private = "yes"
			}
		}
		table.Append([]string{s.Name, repo, branch, private})
	}
	return table.Render()
}

func sourcesShowRun(id string) error {
	ctx := context.Background()
	src, err := apiClient.GetSource(ctx, id)
	if err != nil {
		return friendlyErr(err)
	}

	ui.Info("%s", output.Cyan(src.Name))
	gh := src.GitHubRepo
	if gh == nil {
		ui.Warning("No GitHub metadata for this source")
		return nil
	}

	fmt.Fprintf(ui.Out, "  repo:    %s\n", src.DisplayName())
	if gh.DefaultBranch != nil {
		fmt.Fprintf(ui.Out, "  default: %s\n", gh.DefaultBranch.DisplayName)
	}
	if gh.IsPrivate {
		fmt.Fprintf(ui.Out, "  private: yes\n")
	}
	if len(gh.Branches) > 0 {
		fmt.Fprintf(ui.Out, "  branches:\n")
		for _, b := range gh.Branches {
			fmt.Fprintf(ui.Out, "    %s\n", b.DisplayName)
		}
	}
	return nil
}
