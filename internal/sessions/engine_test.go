package sessions

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joescharf/jules/internal/api"
	"github.com/joescharf/jules/internal/models"
)

// fakeAPI is an in-memory stand-in for the Jules client.
type fakeAPI struct {
	mu sync.Mutex

	session       models.Session
	sessionErr    error
	activities    []models.Activity
	activitiesErr error
	sendErr       error
	approveErr    error

	getSessionCalls int
	sendCalls       []string
	approveCalls    int

	// blockSend, when non-nil, makes SendMessage wait until it is closed.
	blockSend chan struct{}
	// blockGet, when non-nil, makes GetSession signal getStarted and then
	// wait until it is closed.
	blockGet   chan struct{}
	getStarted chan struct{}
	// onSend runs after a successful send, e.g. to append the echoed activity.
	onSend func(prompt string)
}

func (f *fakeAPI) GetSession(ctx context.Context, id string) (*models.Session, error) {
	f.mu.Lock()
	block := f.blockGet
	f.mu.Unlock()
	if block != nil {
		f.getStarted <- struct{}{}
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.getSessionCalls++
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	s := f.session
	return &s, nil
}

func (f *fakeAPI) ListActivities(ctx context.Context, sessionID string, pageSize int, pageToken string) (*models.ListActivitiesResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activitiesErr != nil {
		return nil, f.activitiesErr
	}
	acts := append([]models.Activity(nil), f.activities...)
	return &models.ListActivitiesResponse{Activities: acts}, nil
}

func (f *fakeAPI) SendMessage(ctx context.Context, sessionID, prompt string) error {
	f.mu.Lock()
	block := f.blockSend
	f.mu.Unlock()
	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sendCalls = append(f.sendCalls, prompt)
	if f.onSend != nil {
		f.onSend(prompt)
	}
	return nil
}

func (f *fakeAPI) ApprovePlan(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.approveErr != nil {
		return f.approveErr
	}
	f.approveCalls++
	return nil
}

func activity(id, createTime, originator string) models.Activity {
	return models.Activity{
		ID:         id,
		Name:       "sessions/s1/activities/" + id,
		Originator: originator,
		CreateTime: createTime,
	}
}

func newFake() *fakeAPI {
	return &fakeAPI{
		session: models.Session{
			ID:    "s1",
			Name:  "sessions/s1",
			State: models.SessionStateInProgress,
		},
	}
}

func TestNewEngine_SeedVisibleBeforeFirstRefresh(t *testing.T) {
	seed := models.Session{ID: "s1", Prompt: "fix bug", State: models.SessionStateQueued}
	e := NewEngine(newFake(), seed)

	snap := e.Current()
	assert.Equal(t, seed, snap.Session)
	assert.Empty(t, snap.Activities)
}

func TestRefresh_SortsAscendingAndStable(t *testing.T) {
	f := newFake()
	f.activities = []models.Activity{
		activity("a3", "2025-01-01T10:00:02Z", "agent"),
		activity("a1", "2025-01-01T10:00:00Z", "user"),
		// Equal timestamps: server-returned relative order must survive.
		activity("a2a", "2025-01-01T10:00:01Z", "agent"),
		activity("a2b", "2025-01-01T10:00:01Z", "agent"),
	}
	e := NewEngine(f, f.session)

	require.NoError(t, e.Refresh(context.Background()))

	got := e.Current().Activities
	require.Len(t, got, 4)
	assert.Equal(t, []string{"a1", "a2a", "a2b", "a3"},
		[]string{got[0].ID, got[1].ID, got[2].ID, got[3].ID})
}

func TestRefresh_Idempotent(t *testing.T) {
	f := newFake()
	f.activities = []models.Activity{
		activity("a2", "2025-01-01T10:00:01Z", "agent"),
		activity("a1", "2025-01-01T10:00:00Z", "user"),
	}
	e := NewEngine(f, f.session)

	require.NoError(t, e.Refresh(context.Background()))
	first := e.Current()
	require.NoError(t, e.Refresh(context.Background()))
	second := e.Current()

	assert.Equal(t, first, second)
}

func TestRefresh_SessionFetchFails_NeverRegresses(t *testing.T) {
	f := newFake()
	f.activities = []models.Activity{activity("a1", "2025-01-01T10:00:00Z", "user")}
	e := NewEngine(f, f.session)
	require.NoError(t, e.Refresh(context.Background()))
	before := e.Current()

	f.mu.Lock()
	f.sessionErr = &api.ServerError{Status: 500, Body: "boom"}
	f.mu.Unlock()

	err := e.Refresh(context.Background())
	require.Error(t, err)

	var serverErr *api.ServerError
	assert.ErrorAs(t, e.LastErr(), &serverErr)
	assert.Equal(t, before, e.Current(), "failed cycle must not touch the snapshot")
}

func TestRefresh_ActivityFetchFails_NeverRegresses(t *testing.T) {
	f := newFake()
	f.activities = []models.Activity{activity("a1", "2025-01-01T10:00:00Z", "user")}
	e := NewEngine(f, f.session)
	require.NoError(t, e.Refresh(context.Background()))
	before := e.Current()

	f.mu.Lock()
	f.activitiesErr = &api.TransportError{Err: context.DeadlineExceeded}
	f.session.State = models.SessionStateCompleted // would be visible if applied
	f.mu.Unlock()

	require.Error(t, e.Refresh(context.Background()))

	// One fetch succeeded, one failed: nothing is applied.
	assert.Equal(t, before, e.Current())
	var transportErr *api.TransportError
	assert.ErrorAs(t, e.LastErr(), &transportErr)
}

func TestRefresh_ErrorClearedByNextSuccess(t *testing.T) {
	f := newFake()
	e := NewEngine(f, f.session)

	f.mu.Lock()
	f.sessionErr = &api.ServerError{Status: 503}
	f.mu.Unlock()
	require.Error(t, e.Refresh(context.Background()))
	require.Error(t, e.LastErr())

	f.mu.Lock()
	f.sessionErr = nil
	f.mu.Unlock()
	require.NoError(t, e.Refresh(context.Background()))
	assert.NoError(t, e.LastErr())
}

func TestSendMessage_EmptyIsNoOp(t *testing.T) {
	f := newFake()
	e := NewEngine(f, f.session)

	require.NoError(t, e.SendMessage(context.Background(), ""))
	assert.Empty(t, f.sendCalls)
	assert.Zero(t, f.getSessionCalls, "no forced refresh for a no-op")
}

func TestSendMessage_ForcesRefresh_NewActivityLast(t *testing.T) {
	f := newFake()
	f.activities = []models.Activity{
		activity("a1", "2025-01-01T10:00:00Z", "agent"),
	}
	f.onSend = func(prompt string) {
		a := activity("a2", "2025-01-01T10:00:05Z", models.OriginatorUser)
		a.UserMessaged = &models.UserMessaged{UserMessage: prompt}
		f.activities = append(f.activities, a)
	}
	e := NewEngine(f, f.session)
	require.NoError(t, e.Refresh(context.Background()))

	require.NoError(t, e.SendMessage(context.Background(), "hello"))

	assert.Equal(t, []string{"hello"}, f.sendCalls)
	got := e.Current().Activities
	require.Len(t, got, 2)
	last := got[len(got)-1]
	assert.Equal(t, models.ActivityKindUserMessaged, last.Kind())
	assert.Equal(t, models.OriginatorUser, last.Originator)
	assert.Equal(t, "hello", last.UserMessaged.UserMessage)
	assert.False(t, e.Busy())
}

func TestSendMessage_FailureRecordsErrorWithoutRefresh(t *testing.T) {
	f := newFake()
	f.sendErr = &api.ServerError{Status: 400, Body: "bad request"}
	e := NewEngine(f, f.session)

	err := e.SendMessage(context.Background(), "hello")
	require.Error(t, err)

	assert.Zero(t, f.getSessionCalls, "no refresh forced after a failed action")
	assert.False(t, e.Busy())
	var serverErr *api.ServerError
	assert.ErrorAs(t, e.LastErr(), &serverErr)
}

func TestMutatingActions_RejectedWhileBusy(t *testing.T) {
	f := newFake()
	f.blockSend = make(chan struct{})
	e := NewEngine(f, f.session)

	done := make(chan error, 1)
	go func() {
		done <- e.SendMessage(context.Background(), "first")
	}()

	require.Eventually(t, e.Busy, time.Second, time.Millisecond)

	assert.ErrorIs(t, e.SendMessage(context.Background(), "second"), ErrBusy)
	assert.ErrorIs(t, e.ApprovePlan(context.Background()), ErrBusy)

	close(f.blockSend)
	require.NoError(t, <-done)
	assert.False(t, e.Busy())
}

func TestApprovePlan_ForcesRefresh(t *testing.T) {
	f := newFake()
	e := NewEngine(f, f.session)

	require.NoError(t, e.ApprovePlan(context.Background()))
	assert.Equal(t, 1, f.approveCalls)
	assert.Equal(t, 1, f.getSessionCalls, "approval forces one refresh")
}

func TestRun_ImmediateRefreshThenStops(t *testing.T) {
	f := newFake()
	f.activities = []models.Activity{activity("a1", "2025-01-01T10:00:00Z", "agent")}
	e := NewEngine(f, f.session)
	e.SetInterval(time.Hour) // only the immediate cycle should fire

	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan Snapshot, 1)

	ran := make(chan struct{})
	go func() {
		defer close(ran)
		e.Run(ctx, func(s Snapshot) {
			select {
			case updates <- s:
			default:
			}
		})
	}()

	select {
	case snap := <-updates:
		assert.Len(t, snap.Activities, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("no update from immediate refresh")
	}

	cancel()
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}

func TestRun_StopLetsInflightRefreshComplete(t *testing.T) {
	f := newFake()
	f.blockGet = make(chan struct{})
	f.getStarted = make(chan struct{}, 1)
	f.session.State = models.SessionStateCompleted
	e := NewEngine(f, models.Session{ID: "s1", State: models.SessionStateQueued})

	ctx, cancel := context.WithCancel(context.Background())
	ran := make(chan struct{})
	go func() {
		defer close(ran)
		e.Run(ctx, nil)
	}()

	// The immediate cycle is now parked inside the session fetch.
	select {
	case <-f.getStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never started")
	}

	cancel()
	close(f.blockGet)

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after the in-flight cycle finished")
	}

	// Stopping only stops scheduling: the cycle that was in flight at
	// cancel time still completes and its result is applied.
	assert.Equal(t, models.SessionStateCompleted, e.Current().Session.State)
	assert.NoError(t, e.LastErr())
}

func TestChronological_DoesNotMutateInput(t *testing.T) {
	in := []models.Activity{
		activity("b", "2025-01-01T10:00:01Z", "agent"),
		activity("a", "2025-01-01T10:00:00Z", "user"),
	}
	out := Chronological(in)

	assert.Equal(t, "b", in[0].ID, "input order untouched")
	assert.Equal(t, "a", out[0].ID)
}
