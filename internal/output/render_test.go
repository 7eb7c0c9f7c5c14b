package output

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joescharf/jules/internal/models"
)

func TestRenderSessionHeader(t *testing.T) {
	s := models.Session{
		ID:         "s1",
		Title:      "Fix login bug",
		State:      models.SessionStateInProgress,
		UpdateTime: "2025-01-01T10:00:00Z",
	}

	got := RenderSessionHeader(s)
	assert.Contains(t, got, "Fix login bug")
	assert.Contains(t, got, "s1")
	assert.Contains(t, got, "IN_PROGRESS")
}

func TestRenderSessionHeader_WithPR(t *testing.T) {
	s := models.Session{
		ID:     "s1",
		Prompt: "add dark mode",
		State:  models.SessionStateCompleted,
		Outputs: []models.SessionOutput{
			{PullRequest: &models.PullRequest{URL: "https://github.com/o/r/pull/7"}},
		},
	}

	got := RenderSessionHeader(s)
	assert.Contains(t, got, "add dark mode", "falls back to prompt when untitled")
	assert.Contains(t, got, "PR: https://github.com/o/r/pull/7")
}

func TestRenderActivity_PlanSteps(t *testing.T) {
	a := models.Activity{
		Originator: models.OriginatorAgent,
		CreateTime: "2025-01-01T10:00:00Z",
		PlanGenerated: &models.PlanGenerated{Plan: models.Plan{
			Steps: []models.PlanStep{
				{Index: 0, Title: "Investigate"},
				{Index: 1, Title: "Fix"},
			},
		}},
	}

	got := RenderActivity(a)
	assert.Contains(t, got, "proposed a plan")
	assert.Contains(t, got, "1. Investigate")
	assert.Contains(t, got, "2. Fix")
}

func TestRenderActivity_UnknownFallsBackToDescription(t *testing.T) {
	a := models.Activity{
		Originator:  "provisioner",
		CreateTime:  "2025-01-01T10:00:00Z",
		Description: "Environment ready",
	}

	got := RenderActivity(a)
	assert.Contains(t, got, "Environment ready")
}

func TestRenderActivity_UnknownWithoutDescription(t *testing.T) {
	a := models.Activity{Originator: "system", CreateTime: "2025-01-01T10:00:00Z"}

	got := RenderActivity(a)
	assert.Contains(t, got, "(unrecognized activity)")
}

func TestRenderActivity_Artifacts(t *testing.T) {
	a := models.Activity{
		Originator: models.OriginatorAgent,
		CreateTime: "2025-01-01T10:00:00Z",
		ProgressUpdated: &models.ProgressUpdated{
			Title: "Running tests",
		},
		Artifacts: []models.Artifact{
			{BashOutput: &models.BashOutput{Command: "go test ./...", ExitCode: 1}},
			{ChangeSet: &models.ChangeSet{
				Source: "sources/x",
				GitPatch: &models.GitPatch{
					UnidiffPatch:           "line1\nline2\n",
					SuggestedCommitMessage: "fix parser\n\nlonger body",
				},
			}},
			{Media: &models.Media{MimeType: "image/png"}},
		},
	}

	got := RenderActivity(a)
	assert.Contains(t, got, "[cmd exit=1] $ go test ./...")
	assert.Contains(t, got, "[patch] 2 lines - fix parser")
	assert.Contains(t, got, "[media] image/png")
}

func TestRenderTimeline_Empty(t *testing.T) {
	assert.Contains(t, RenderTimeline(nil), "no activity yet")
}

func TestStateColor_UnknownPassthrough(t *testing.T) {
	assert.Contains(t, StateColor(models.SessionStateUnknown), "UNKNOWN")
}
