package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/joescharf/jules/internal/models"
)

// Summary holds the LLM-generated digest of a session's activity log.
type Summary struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	NextStep string   `json:"next_step"`
	Risks    []string `json:"risks"`
}

// Client wraps the Anthropic API for session summarization.
type Client struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClient creates an LLM client with the given API key and model.
func NewClient(apiKey, model string) *Client {
	opts := []option.RequestOption{}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &Client{
		api:   &client,
		model: anthropic.Model(model),
	}
}

// buildPrompt constructs the system and user prompts for summarization.
func buildPrompt(session models.Session, activities []models.Activity) (system string, user string) {
	system = `You summarize the activity log of a remote autonomous coding agent session. Return ONLY a JSON object with these fields:
- "title": a concise title for the session (under 10 words)
- "summary": 2-4 sentences covering what the agent was asked to do, what it has done so far, and the current state
- "next_step": one sentence on what happens next ("" if the session is finished)
- "risks": array of short strings flagging anything that needs human attention (failed commands, unapproved plans, failures); empty array if none

Rules:
- Base everything strictly on the provided log; do not invent progress
- Return valid JSON only, no markdown fencing or explanation`

	var sb strings.Builder
	fmt.Fprintf(&sb, "Session state: %s\n", session.State)
	fmt.Fprintf(&sb, "Original prompt: %s\n\n", session.Prompt)
	sb.WriteString("Activity log (chronological):\n")
	for _, a := range activities {
		fmt.Fprintf(&sb, "[%s] %s: %s\n", a.CreateTime, a.Originator, FlattenActivity(a))
	}
	user = sb.String()
	return
}

// FlattenActivity renders an activity's payload as one line of plain text.
func FlattenActivity(a models.Activity) string {
	switch a.Kind() {
	case models.ActivityKindPlanGenerated:
		steps := a.PlanGenerated.Plan.Steps
		var sb strings.Builder
		fmt.Fprintf(&sb, "proposed a plan with %d steps:", len(steps))
		for _, step := range steps {
			fmt.Fprintf(&sb, " (%d) %s.", step.Index+1, step.Title)
		}
		return sb.String()
	case models.ActivityKindPlanApproved:
		return "plan approved"
	case models.ActivityKindUserMessaged:
		return a.UserMessaged.UserMessage
	case models.ActivityKindAgentMessaged:
		return a.AgentMessaged.AgentMessage
	case models.ActivityKindProgressUpdated:
		if a.ProgressUpdated.Description != "" {
			return a.ProgressUpdated.Title + " - " + a.ProgressUpdated.Description
		}
		return a.ProgressUpdated.Title
	case models.ActivityKindSessionCompleted:
		return "session completed"
	case models.ActivityKindSessionFailed:
		return "session failed: " + a.SessionFailed.Reason
	default:
		return a.Description
	}
}

// SummarizeSession sends the activity log to the LLM and returns a digest.
func (c *Client) SummarizeSession(ctx context.Context, session models.Session, activities []models.Activity) (*Summary, error) {
	systemPrompt, userPrompt := buildPrompt(session, activities)

	msg, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call: %w", err)
	}

	// Extract text from response
	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}

	if text == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	// Strip markdown fencing if present
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.SplitN(text, "\n", 2)
		if len(lines) > 1 {
			text = lines[1]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	var summary Summary
	if err := json.Unmarshal([]byte(text), &summary); err != nil {
		return nil, fmt.Errorf("parse LLM response as JSON: %w\nraw response: %s", err, text)
	}

	return &summary, nil
}
