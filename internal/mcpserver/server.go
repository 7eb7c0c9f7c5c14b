// Package mcpserver exposes the Jules client as MCP tools so other agents
// can create and steer remote sessions.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/joescharf/jules/internal/api"
	"github.com/joescharf/jules/internal/models"
	"github.com/joescharf/jules/internal/sessions"
)

// Server wraps the Jules API client and exposes it as MCP tools.
type Server struct {
	client *api.Client
}

// NewServer creates the MCP server wrapper.
func NewServer(client *api.Client) *Server {
	return &Server{client: client}
}

// MCPServer returns a configured mcp-go server with all tools registered.
func (s *Server) MCPServer() *server.MCPServer {
	srv := server.NewMCPServer("jules", "1.0.0", server.WithToolCapabilities(true))

	srv.AddTool(s.listSessionsTool())
	srv.AddTool(s.getSessionTool())
	srv.AddTool(s.createSessionTool())
	srv.AddTool(s.sendMessageTool())
	srv.AddTool(s.approvePlanTool())
	srv.AddTool(s.listActivitiesTool())
	srv.AddTool(s.listSourcesTool())

	return srv
}

// ServeStdio starts the stdio transport, blocking until ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	srv := s.MCPServer()
	stdioServer := server.NewStdioServer(srv)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// ---------------------------------------------------------------------------
// Tool definitions and handlers
// ---------------------------------------------------------------------------

// jules_list_sessions
func (s *Server) listSessionsTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_list_sessions",
		mcp.WithDescription("List remote agent sessions. Returns a JSON array with id, title, state, and update time."),
	)
	return tool, s.handleListSessions
}

func (s *Server) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.client.ListSessions(ctx, sessions.SessionPageSize, "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sessions: %v", err)), nil
	}

	type sessionOut struct {
		ID         string `json:"id"`
		Title      string `json:"title"`
		State      string `json:"state"`
		UpdateTime string `json:"updateTime"`
		PRURL      string `json:"prUrl,omitempty"`
	}
	out := make([]sessionOut, 0, len(resp.Sessions))
	for _, sess := range resp.Sessions {
		out = append(out, sessionOut{
			ID:         sess.ID,
			Title:      sess.DisplayTitle(),
			State:      string(sess.State),
			UpdateTime: sess.UpdateTime,
			PRURL:      sess.PullRequestURL(),
		})
	}
	return jsonResult(out), nil
}

// jules_get_session
func (s *Server) getSessionTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_get_session",
		mcp.WithDescription("Get the current detail of one session by id."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
	)
	return tool, s.handleGetSession
}

func (s *Server) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session_id", "")
	if id == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	sess, err := s.client.GetSession(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get session: %v", err)), nil
	}
	return jsonResult(sess), nil
}

// jules_create_session
func (s *Server) createSessionTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_create_session",
		mcp.WithDescription("Create a new remote agent session against a source repository."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("Task prompt for the agent")),
		mcp.WithString("source", mcp.Required(), mcp.Description("Source resource name, e.g. sources/github/owner/repo")),
		mcp.WithString("branch", mcp.Description("Starting branch (default: repository default)")),
		mcp.WithString("title", mcp.Description("Optional session title")),
		mcp.WithBoolean("require_plan_approval", mcp.Description("Pause for plan approval before work starts")),
		mcp.WithBoolean("auto_create_pr", mcp.Description("Open a pull request automatically on completion")),
	)
	return tool, s.handleCreateSession
}

func (s *Server) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt := request.GetString("prompt", "")
	source := request.GetString("source", "")
	if prompt == "" || source == "" {
		return mcp.NewToolResultError("prompt and source are required"), nil
	}

	req := &models.CreateSessionRequest{
		Prompt:              prompt,
		Title:               request.GetString("title", ""),
		SourceContext:       &models.SourceContext{Source: source},
		RequirePlanApproval: request.GetBool("require_plan_approval", false),
	}
	if branch := request.GetString("branch", ""); branch != "" {
		req.SourceContext.GitHubRepoContext = &models.GitHubRepoContext{StartingBranch: branch}
	}
	if request.GetBool("auto_create_pr", false) {
		req.AutomationMode = models.AutomationModeAutoCreatePR
	}

	sess, err := s.client.CreateSession(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create session: %v", err)), nil
	}
	return jsonResult(sess), nil
}

// jules_send_message
func (s *Server) sendMessageTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_send_message",
		mcp.WithDescription("Send a follow-up message to a running session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
		mcp.WithString("message", mcp.Required(), mcp.Description("Message text")),
	)
	return tool, s.handleSendMessage
}

func (s *Server) handleSendMessage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session_id", "")
	message := request.GetString("message", "")
	if id == "" || message == "" {
		return mcp.NewToolResultError("session_id and message are required"), nil
	}
	if err := s.client.SendMessage(ctx, id, message); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to send message: %v", err)), nil
	}
	return mcp.NewToolResultText("message sent"), nil
}

// jules_approve_plan
func (s *Server) approvePlanTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_approve_plan",
		mcp.WithDescription("Approve the pending plan of a session awaiting plan approval."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
	)
	return tool, s.handleApprovePlan
}

func (s *Server) handleApprovePlan(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session_id", "")
	if id == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	if err := s.client.ApprovePlan(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to approve plan: %v", err)), nil
	}
	return mcp.NewToolResultText("plan approved"), nil
}

// jules_list_activities
func (s *Server) listActivitiesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_list_activities",
		mcp.WithDescription("List a session's activity log in chronological order."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session id")),
	)
	return tool, s.handleListActivities
}

func (s *Server) handleListActivities(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session_id", "")
	if id == "" {
		return mcp.NewToolResultError("session_id is required"), nil
	}
	resp, err := s.client.ListActivities(ctx, id, sessions.ActivityPageSize, "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list activities: %v", err)), nil
	}
	return jsonResult(sessions.Chronological(resp.Activities)), nil
}

// jules_list_sources
func (s *Server) listSourcesTool() (mcp.Tool, server.ToolHandlerFunc) {
	tool := mcp.NewTool("jules_list_sources",
		mcp.WithDescription("List repositories available as session sources."),
	)
	return tool, s.handleListSources
}

func (s *Server) handleListSources(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resp, err := s.client.ListSources(ctx, 100, "", "")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list sources: %v", err)), nil
	}

	type sourceOut struct {
		Name          string `json:"name"`
		Repo          string `json:"repo"`
		DefaultBranch string `json:"defaultBranch,omitempty"`
	}
	out := make([]sourceOut, 0, len(resp.Sources))
	for _, src := range resp.Sources {
		entry := sourceOut{Name: src.Name, Repo: src.DisplayName()}
		if src.GitHubRepo != nil && src.GitHubRepo.DefaultBranch != nil {
			entry.DefaultBranch = src.GitHubRepo.DefaultBranch.DisplayName
		}
		out = append(out, entry)
	}
	return jsonResult(out), nil
}
