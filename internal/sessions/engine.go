package sessions

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/joescharf/jules/internal/models"
)

// ActivityPageSize is the single page fetched per refresh. One page covers
// typical sessions; paging the live view beyond it is out of scope.
const ActivityPageSize = 100

// DefaultInterval is the polling cadence between refresh cycles.
const DefaultInterval = 5 * time.Second

// ErrBusy is returned when a mutating action is requested while another
// one is still in flight. The engine accepts at most one at a time.
var ErrBusy = errors.New("another action is in flight")

// API is the slice of the Jules client an Engine needs.
type API interface {
	GetSession(ctx context.Context, id string) (*models.Session, error)
	ListActivities(ctx context.Context, sessionID string, pageSize int, pageToken string) (*models.ListActivitiesResponse, error)
	SendMessage(ctx context.Context, sessionID, prompt string) error
	ApprovePlan(ctx context.Context, sessionID string) error
}

// Snapshot is the immutable (session, ordered activities) pair the engine
// exposes at any instant. Activities are sorted ascending by create time.
// Callers must treat the slice as read-only; the engine never mutates a
// published snapshot, it swaps in a new one.
type Snapshot struct {
	Session    models.Session
	Activities []models.Activity
}

// Engine owns the live state of one session: it polls the API, reconciles
// fetched data into a chronologically ordered snapshot, and serializes
// user actions (send message, approve plan) with its refresh cycles.
type Engine struct {
	api      API
	id       string
	interval time.Duration

	mu      sync.Mutex
	current Snapshot
	busy    bool
	lastErr error
}

// NewEngine creates an engine seeded with a session object the caller
// already has (from a create or list response), so there is something to
// display before the first refresh lands.
func NewEngine(client API, seed models.Session) *Engine {
	return &Engine{
		api:      client,
		id:       seed.ID,
		interval: DefaultInterval,
		current:  Snapshot{Session: seed},
	}
}

// SetInterval overrides the polling cadence. Must be called before Run.
func (e *Engine) SetInterval(d time.Duration) {
	if d > 0 {
		e.interval = d
	}
}

// Current returns the latest merged snapshot.
func (e *Engine) Current() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Busy reports whether a mutating action is in flight.
func (e *Engine) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// LastErr returns the most recent unrecovered failure, nil after a clean
// cycle.
func (e *Engine) LastErr() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Refresh runs one fetch-and-merge cycle: session detail and one activity
// page fetched concurrently, joined, then applied as a single snapshot
// swap. On any failure the previous snapshot is kept untouched and the
// error is recorded for the next cycle to retry.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	e.lastErr = nil
	e.mu.Unlock()

	var (
		sess    *models.Session
		sessErr error
		acts    *models.ListActivitiesResponse
		actsErr error
	)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		sess, sessErr = e.api.GetSession(ctx, e.id)
	}()
	go func() {
		defer wg.Done()
		acts, actsErr = e.api.ListActivities(ctx, e.id, ActivityPageSize, "")
	}()
	wg.Wait()

	if err := errors.Join(sessErr, actsErr); err != nil {
		e.recordErr(err)
		return err
	}

	activities := Chronological(acts.Activities)

	e.mu.Lock()
	e.current = Snapshot{Session: *sess, Activities: activities}
	e.mu.Unlock()
	return nil
}

// Chronological returns a copy ordered ascending by create time. The
// sort is stable so equal timestamps keep their server-returned order.
// Timestamps are ISO-8601 strings, so lexical comparison is sufficient.
func Chronological(in []models.Activity) []models.Activity {
	out := append([]models.Activity(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreateTime < out[j].CreateTime
	})
	return out
}

// SendMessage posts a user message, then forces one refresh so the new
// activity shows up without waiting for the next tick. Empty text is a
// no-op. Returns ErrBusy if another action is still in flight.
func (e *Engine) SendMessage(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	if !e.acquire() {
		return ErrBusy
	}
	defer e.release()

	if err := e.api.SendMessage(ctx, e.id, text); err != nil {
		e.recordErr(err)
		return err
	}
	return e.Refresh(ctx)
}

// ApprovePlan approves the pending plan, then forces one refresh.
// Returns ErrBusy if another action is still in flight.
func (e *Engine) ApprovePlan(ctx context.Context) error {
	if !e.acquire() {
		return ErrBusy
	}
	defer e.release()

	if err := e.api.ApprovePlan(ctx, e.id); err != nil {
		e.recordErr(err)
		return err
	}
	return e.Refresh(ctx)
}

// Run polls until ctx is cancelled: one immediate refresh, then one per
// interval. onUpdate is called after every cycle, including failed ones,
// with the current snapshot; on failure that snapshot is the previous
// one, so consumers never regress to empty. A refresh in flight when ctx
// is cancelled finishes and its result is the last applied.
func (e *Engine) Run(ctx context.Context, onUpdate func(Snapshot)) {
	// Fetches run detached from the stop signal: cancelling ctx stops
	// scheduling new cycles but never aborts the one in flight.
	fetchCtx := context.WithoutCancel(ctx)
	cycle := func() {
		_ = e.Refresh(fetchCtx)
		if onUpdate != nil {
			onUpdate(e.Current())
		}
	}

	cycle()
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cycle()
		}
	}
}

func (e *Engine) acquire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.busy {
		return false
	}
	e.busy = true
	e.lastErr = nil
	return true
}

func (e *Engine) release() {
	e.mu.Lock()
	e.busy = false
	e.mu.Unlock()
}

func (e *Engine) recordErr(err error) {
	e.mu.Lock()
	e.lastErr = err
	e.mu.Unlock()
}
