package sessions

import (
	"context"
	"strings"
	"sync"

	"github.com/joescharf/jules/internal/models"
)

// SessionPageSize is the page fetched by List.Load.
const SessionPageSize = 50

// ListAPI is the slice of the Jules client a List needs.
type ListAPI interface {
	ListSessions(ctx context.Context, pageSize int, pageToken string) (*models.ListSessionsResponse, error)
	DeleteSession(ctx context.Context, id string) error
}

// List is the thin session-list coordinator: it fetches pages wholesale
// and deletes by id, with no merge semantics.
type List struct {
	api ListAPI

	mu       sync.Mutex
	sessions []models.Session
	lastErr  error
}

// NewList creates an empty list coordinator.
func NewList(client ListAPI) *List {
	return &List{api: client}
}

// Sessions returns the current local list.
func (l *List) Sessions() []models.Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sessions
}

// LastErr returns the most recent load/delete failure, nil on success.
func (l *List) LastErr() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastErr
}

// Load replaces the local list with one fresh page. On failure the prior
// contents stay visible and the error is recorded.
func (l *List) Load(ctx context.Context) error {
	l.mu.Lock()
	l.lastErr = nil
	l.mu.Unlock()

	resp, err := l.api.ListSessions(ctx, SessionPageSize, "")
	if err != nil {
		l.mu.Lock()
		l.lastErr = err
		l.mu.Unlock()
		return err
	}

	l.mu.Lock()
	l.sessions = resp.Sessions
	l.mu.Unlock()
	return nil
}

// Delete removes the session remotely, then drops the matching local
// entry. The id returned by creation and the id used for lookup are not
// guaranteed to be byte-identical, so when neither id nor name suffix
// matches, Delete falls back to a full reload instead of silently doing
// nothing.
func (l *List) Delete(ctx context.Context, id string) error {
	l.mu.Lock()
	l.lastErr = nil
	l.mu.Unlock()

	if err := l.api.DeleteSession(ctx, id); err != nil {
		l.mu.Lock()
		l.lastErr = err
		l.mu.Unlock()
		return err
	}

	l.mu.Lock()
	idx := -1
	for i, s := range l.sessions {
		if s.ID == id || strings.HasSuffix(s.Name, id) {
			idx = i
			break
		}
	}
	if idx >= 0 {
		l.sessions = append(l.sessions[:idx:idx], l.sessions[idx+1:]...)
		l.mu.Unlock()
		return nil
	}
	l.mu.Unlock()

	return l.Load(ctx)
}
