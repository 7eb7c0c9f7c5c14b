package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joescharf/jules/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	userActorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	agentActorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true)

	systemActorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("243")).
				Bold(true)

	bodyStyle = lipgloss.NewStyle().
			Padding(0, 2)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)

	planStepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			PaddingLeft(4)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	artifactStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			PaddingLeft(4)
)

// RenderSessionHeader formats the session banner shown above a timeline.
func RenderSessionHeader(s models.Session) string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(s.DisplayTitle()))
	sb.WriteString("\n")

	meta := fmt.Sprintf("%s  %s  updated %s", s.ID, s.State, s.UpdateTime)
	sb.WriteString(metaStyle.Render(meta))
	sb.WriteString("\n")

	if url := s.PullRequestURL(); url != "" {
		sb.WriteString(metaStyle.Render("PR: " + url))
		sb.WriteString("\n")
	}
	return sb.String()
}

// actorStyle picks the label style for an originator. Unrecognized
// originators render as the system actor.
func actorStyle(originator string) lipgloss.Style {
	switch originator {
	case models.OriginatorUser:
		return userActorStyle
	case models.OriginatorAgent:
		return agentActorStyle
	default:
		return systemActorStyle
	}
}

// RenderActivity formats one timeline entry: actor, timestamp, payload
// body, and attached artifacts.
func RenderActivity(a models.Activity) string {
	var sb strings.Builder
	sb.WriteString(actorStyle(a.Originator).Render(a.Originator))
	sb.WriteString(" ")
	sb.WriteString(timestampStyle.Render(a.CreateTime))
	sb.WriteString("\n")

	switch a.Kind() {
	case models.ActivityKindPlanGenerated:
		sb.WriteString(bodyStyle.Render("proposed a plan:"))
		sb.WriteString("\n")
		for _, step := range a.PlanGenerated.Plan.Steps {
			line := fmt.Sprintf("%d. %s", step.Index+1, step.Title)
			sb.WriteString(planStepStyle.Render(line))
			sb.WriteString("\n")
		}
	case models.ActivityKindPlanApproved:
		sb.WriteString(bodyStyle.Render("approved the plan"))
		sb.WriteString("\n")
	case models.ActivityKindUserMessaged:
		sb.WriteString(bodyStyle.Render(a.UserMessaged.UserMessage))
		sb.WriteString("\n")
	case models.ActivityKindAgentMessaged:
		sb.WriteString(bodyStyle.Render(a.AgentMessaged.AgentMessage))
		sb.WriteString("\n")
	case models.ActivityKindProgressUpdated:
		sb.WriteString(bodyStyle.Render(a.ProgressUpdated.Title))
		sb.WriteString("\n")
		if a.ProgressUpdated.Description != "" {
			sb.WriteString(bodyStyle.Render(a.ProgressUpdated.Description))
			sb.WriteString("\n")
		}
	case models.ActivityKindSessionCompleted:
		sb.WriteString(bodyStyle.Render("session completed"))
		sb.WriteString("\n")
	case models.ActivityKindSessionFailed:
		sb.WriteString(bodyStyle.Render(failStyle.Render("session failed: " + a.SessionFailed.Reason)))
		sb.WriteString("\n")
	default:
		desc := a.Description
		if desc == "" {
			desc = "(unrecognized activity)"
		}
		sb.WriteString(bodyStyle.Render(desc))
		sb.WriteString("\n")
	}

	for _, art := range a.Artifacts {
		sb.WriteString(artifactStyle.Render(renderArtifact(art)))
		sb.WriteString("\n")
	}
	return sb.String()
}

func renderArtifact(a models.Artifact) string {
	switch {
	case a.ChangeSet != nil:
		if p := a.ChangeSet.GitPatch; p != nil {
			lines := strings.Count(p.UnidiffPatch, "\n")
			if p.SuggestedCommitMessage != "" {
				return fmt.Sprintf("[patch] %d lines - %s", lines, firstLine(p.SuggestedCommitMessage))
			}
			return fmt.Sprintf("[patch] %d lines", lines)
		}
		return "[changeset] " + a.ChangeSet.Source
	case a.BashOutput != nil:
		return fmt.Sprintf("[cmd exit=%d] $ %s", a.BashOutput.ExitCode, a.BashOutput.Command)
	case a.Media != nil:
		return "[media] " + a.Media.MimeType
	default:
		return "[artifact]"
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// RenderTimeline formats the full chronological activity log.
func RenderTimeline(activities []models.Activity) string {
	if len(activities) == 0 {
		return metaStyle.Render("no activity yet") + "\n"
	}
	var sb strings.Builder
	for _, a := range activities {
		sb.WriteString(RenderActivity(a))
	}
	return sb.String()
}
