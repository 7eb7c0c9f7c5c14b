package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/joescharf/jules/internal/models"
)

// ListSources fetches one page of connected sources. filter is the
// server-side filter expression, empty for all.
func (c *Client) ListSources(ctx context.Context, pageSize int, pageToken, filter string) (*models.ListSourcesResponse, error) {
	q := url.Values{"pageSize": {strconv.Itoa(pageSize)}}
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	if filter != "" {
		q.Set("filter", filter)
	}
	return request[models.ListSourcesResponse](ctx, c, http.MethodGet, "sources", q, nil)
}

// GetSource fetches one source by id.
func (c *Client) GetSource(ctx context.Context, id string) (*models.Source, error) {
	return request[models.Source](ctx, c, http.MethodGet, "sources/"+id, nil, nil)
}
