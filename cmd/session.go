package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/jules/internal/api"
	"github.com/joescharf/jules/internal/models"
	"github.com/joescharf/jules/internal/output"
	"github.com/joescharf/jules/internal/sessions"
)

var (
	newSource          string
	newBranch          string
	newTitle           string
	newRequireApproval bool
	newAutoPR          bool
	newWatch           bool

	watchInterval time.Duration
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List remote agent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listRun()
	},
}

var newCmd = &cobra.Command{
	Use:   "new <prompt>",
	Short: "Create a new agent session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return newRun(args[0])
	},
}

var showCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Show a session and its full activity log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return showRun(args[0])
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch <session-id>",
	Short: "Follow a session's activity log live",
	Long:  "Poll the session and print new activities as they arrive. Ctrl-C stops.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchRun(args[0])
	},
}

var messageCmd = &cobra.Command{
	Use:     "message <session-id> <text>",
	Aliases: []string{"msg"},
	Short:   "Send a follow-up message to a session",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return messageRun(args[0], args[1])
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <session-id>",
	Short: "Approve a session's pending plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return approveRun(args[0])
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <session-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a session",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return deleteRun(args[0])
	},
}

func init() {
	newCmd.Flags().StringVar(&newSource, "source", "", "Source resource name (default: first connected source)")
	newCmd.Flags().StringVar(&newBranch, "branch", "", "Starting branch (default: repository default branch)")
	newCmd.Flags().StringVar(&newTitle, "title", "", "Session title")
	newCmd.Flags().BoolVar(&newRequireApproval, "require-approval", false, "Pause for plan approval before work starts")
	newCmd.Flags().BoolVar(&newAutoPR, "auto-pr", false, "Open a pull request automatically on completion")
	newCmd.Flags().BoolVar(&newWatch, "watch", false, "Watch the session after creating it")

	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "Polling interval (default from config, 5s)")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(messageCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(deleteCmd)
}

// friendlyErr rewrites credential errors into a pointer at 'jules auth set'
// instead of a raw error dump.
func friendlyErr(err error) error {
	if errors.Is(err, api.ErrMissingAPIKey) {
		return fmt.Errorf("no API key configured; run %s or set JULES_API_KEY", output.Cyan("jules auth set"))
	}
	return err
}

func listRun() error {
	ctx := context.Background()
	list := sessions.NewList(apiClient)
	if err := list.Load(ctx); err != nil {
		return friendlyErr(err)
	}

	all := list.Sessions()
	if len(all) == 0 {
		ui.Info("No sessions. Create one with: jules new \"<prompt>\"")
		return nil
	}

	table := ui.Table([]string{"ID", "TITLE", "STATE", "UPDATED"})
	for _, s := range all {
		title := s.DisplayTitle()
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		table.Append([]string{s.ID, title, output.StateColor(s.State), s.UpdateTime})
	}
	return table.Render()
}

func newRun(prompt string) error {
	ctx := context.Background()

	source := newSource
	branch := newBranch
	if source == "" {
		// Mirror the source picker: first connected source, its default branch.
		resp, err := apiClient.ListSources(ctx, 100, "", "")
		if err != nil {
			return friendlyErr(err)
		}
		if len(resp.Sources) == 0 {
			return fmt.Errorf("no sources connected; connect a repository at jules.google.com first")
		}
		first := resp.Sources[0]
		source = first.Name
		if branch == "" && first.GitHubRepo != nil && first.GitHubRepo.DefaultBranch != nil {
			branch = first.GitHubRepo.DefaultBranch.DisplayName
		}
		ui.VerboseLog("using source %s", source)
	}

	req := &models.CreateSessionRequest{
		Prompt:              prompt,
		Title:               newTitle,
		SourceContext:       &models.SourceContext{Source: source},
		RequirePlanApproval: newRequireApproval,
	}
	if branch != "" {
		req.SourceContext.GitHubRepoContext = &models.GitHubRepoContext{StartingBranch: branch}
	}
	if newAutoPR {
		req.AutomationMode = models.AutomationModeAutoCreatePR
	}

	sess, err := apiClient.CreateSession(ctx, req)
	if err != nil {
		return friendlyErr(err)
	}

	ui.Success("Created session %s (%s)", output.Cyan(sess.ID), output.StateColor(sess.State))
	if sess.URL != "" {
		ui.Info("Web: %s", sess.URL)
	}

	if newWatch {
		return watchSession(*sess)
	}
	return nil
}

func showRun(id string) error {
	ctx := context.Background()
	engine := sessions.NewEngine(apiClient, models.Session{ID: id})
	if err := engine.Refresh(ctx); err != nil {
		return friendlyErr(err)
	}

	snap := engine.Current()
	fmt.Fprint(ui.Out, output.RenderSessionHeader(snap.Session))
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, output.RenderTimeline(snap.Activities))

	if snap.Session.State == models.SessionStateAwaitingPlanApproval {
		ui.Info("Plan awaiting approval: jules approve %s", id)
	}
	return nil
}

func watchRun(id string) error {
	return watchSession(models.Session{ID: id})
}

// watchSession polls until interrupted, printing the session header on
// state changes and each activity once as it appears. The log is
// append-only and snapshots are sorted ascending, so printing past the
// last seen index never skips or repeats an entry.
func watchSession(seed models.Session) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine := sessions.NewEngine(apiClient, seed)
	interval := watchInterval
	if interval == 0 {
		interval = viper.GetDuration("poll_interval")
	}
	engine.SetInterval(interval)

	printed := 0
	lastState := models.SessionState("")
	var lastErrMsg string

	engine.Run(ctx, func(snap sessions.Snapshot) {
		if err := engine.LastErr(); err != nil {
			// Transient poll failures keep the last-known-good view; warn
			// once per distinct error rather than every tick.
			if msg := friendlyErr(err).Error(); msg != lastErrMsg {
				ui.Warning("refresh failed (will retry): %s", msg)
				lastErrMsg = msg
			}
			return
		}
		lastErrMsg = ""

		if snap.Session.State != lastState {
			fmt.Fprint(ui.Out, output.RenderSessionHeader(snap.Session))
			lastState = snap.Session.State
		}
		for ; printed < len(snap.Activities); printed++ {
			fmt.Fprint(ui.Out, output.RenderActivity(snap.Activities[printed]))
		}
		if snap.Session.State == models.SessionStateAwaitingPlanApproval {
			ui.Info("Plan awaiting approval: jules approve %s", snap.Session.ID)
		}
	})

	return nil
}

func messageRun(id, text string) error {
	if strings.TrimSpace(text) == "" {
		ui.Warning("Empty message, nothing sent")
		return nil
	}

	ctx := context.Background()
	engine := sessions.NewEngine(apiClient, models.Session{ID: id})
	if err := engine.SendMessage(ctx, text); err != nil {
		return friendlyErr(err)
	}

	ui.Success("Message sent")
	if snap := engine.Current(); len(snap.Activities) > 0 {
		fmt.Fprint(ui.Out, output.RenderActivity(snap.Activities[len(snap.Activities)-1]))
	}
	return nil
}

func approveRun(id string) error {
	ctx := context.Background()
	engine := sessions.NewEngine(apiClient, models.Session{ID: id})
	if err := engine.ApprovePlan(ctx); err != nil {
		return friendlyErr(err)
	}

	snap := engine.Current()
	ui.Success("Plan approved (%s)", output.StateColor(snap.Session.State))
	return nil
}

func deleteRun(id string) error {
	ctx := context.Background()
	list := sessions.NewList(apiClient)
	if err := list.Load(ctx); err != nil {
		return friendlyErr(err)
	}
	if err := list.Delete(ctx, id); err != nil {
		return friendlyErr(err)
	}
	ui.Success("Deleted session %s", output.Cyan(id))
	return nil
}
