package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/joescharf/jules/internal/models"
)

// ListSessions fetches one page of sessions.
func (c *Client) ListSessions(ctx context.Context, pageSize int, pageToken string) (*models.ListSessionsResponse, error) {
	q := url.Values{"pageSize": {strconv.Itoa(pageSize)}}
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	return request[models.ListSessionsResponse](ctx, c, http.MethodGet, "sessions", q, nil)
}

// CreateSession starts a new agent session and returns the created record.
func (c *Client) CreateSession(ctx context.Context, req *models.CreateSessionRequest) (*models.Session, error) {
	return request[models.Session](ctx, c, http.MethodPost, "sessions", nil, req)
}

// GetSession fetches the current detail of one session by id.
func (c *Client) GetSession(ctx context.Context, id string) (*models.Session, error) {
	return request[models.Session](ctx, c, http.MethodGet, "sessions/"+id, nil, nil)
}

// DeleteSession removes a session.
func (c *Client) DeleteSession(ctx context.Context, id string) error {
	return requestVoid(ctx, c, http.MethodDelete, "sessions/"+id, nil, nil)
}

// ListActivities fetches one page of a session's activity log. Server
// order is unspecified; callers sort for chronological display.
func (c *Client) ListActivities(ctx context.Context, sessionID string, pageSize int, pageToken string) (*models.ListActivitiesResponse, error) {
	q := url.Values{"pageSize": {strconv.Itoa(pageSize)}}
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	return request[models.ListActivitiesResponse](ctx, c, http.MethodGet, "sessions/"+sessionID+"/activities", q, nil)
}

// SendMessage posts a user message to a running session.
func (c *Client) SendMessage(ctx context.Context, sessionID, prompt string) error {
	body := models.SendMessageRequest{Prompt: prompt}
	return requestVoid(ctx, c, http.MethodPost, "sessions/"+sessionID+":sendMessage", nil, body)
}

// ApprovePlan approves the pending plan. The endpoint takes an empty
// JSON object body.
func (c *Client) ApprovePlan(ctx context.Context, sessionID string) error {
	return requestVoid(ctx, c, http.MethodPost, "sessions/"+sessionID+":approvePlan", nil, struct{}{})
}
