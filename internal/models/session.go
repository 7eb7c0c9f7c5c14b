package models

import "encoding/json"

// SessionState is the lifecycle state reported by the Jules API.
type SessionState string

const (
	SessionStateQueued               SessionState = "QUEUED"
	SessionStatePlanning             SessionState = "PLANNING"
	SessionStateAwaitingPlanApproval SessionState = "AWAITING_PLAN_APPROVAL"
	SessionStateAwaitingUserFeedback SessionState = "AWAITING_USER_FEEDBACK"
	SessionStateInProgress           SessionState = "IN_PROGRESS"
	SessionStatePaused               SessionState = "PAUSED"
	SessionStateCompleted            SessionState = "COMPLETED"
	SessionStateFailed               SessionState = "FAILED"
	SessionStateUnknown              SessionState = "UNKNOWN"
)

var knownStates = map[SessionState]bool{
	SessionStateQueued:               true,
	SessionStatePlanning:             true,
	SessionStateAwaitingPlanApproval: true,
	SessionStateAwaitingUserFeedback: true,
	SessionStateInProgress:           true,
	SessionStatePaused:               true,
	SessionStateCompleted:            true,
	SessionStateFailed:               true,
}

// UnmarshalJSON degrades unrecognized state strings to SessionStateUnknown
// so decoding never fails when the API adds new states.
func (s *SessionState) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if st := SessionState(raw); knownStates[st] {
		*s = st
	} else {
		*s = SessionStateUnknown
	}
	return nil
}

// Terminal reports whether the session can make no further progress.
func (s SessionState) Terminal() bool {
	return s == SessionStateCompleted || s == SessionStateFailed
}

// NeedsAttention reports whether the session is blocked on user input.
func (s SessionState) NeedsAttention() bool {
	return s == SessionStateAwaitingPlanApproval || s == SessionStateAwaitingUserFeedback
}

// Session is a unit of remote autonomous work. ID is stable for the
// session's lifetime and is the merge key everywhere; Name is the
// fully-qualified resource name ("sessions/{id}").
type Session struct {
	Name          string          `json:"name"`
	ID            string          `json:"id"`
	Prompt        string          `json:"prompt"`
	Title         string          `json:"title,omitempty"`
	State         SessionState    `json:"state"`
	URL           string          `json:"url,omitempty"`
	CreateTime    string          `json:"createTime"`
	UpdateTime    string          `json:"updateTime"`
	SourceContext *SourceContext  `json:"sourceContext,omitempty"`
	Outputs       []SessionOutput `json:"outputs,omitempty"`
}

// DisplayTitle returns the title, falling back to the prompt.
func (s *Session) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Prompt
}

// PullRequestURL returns the URL of the first pull-request output, if any.
func (s *Session) PullRequestURL() string {
	for _, out := range s.Outputs {
		if out.PullRequest != nil {
			return out.PullRequest.URL
		}
	}
	return ""
}

// SessionOutput wraps an optional pull-request descriptor produced by a
// completed session.
type SessionOutput struct {
	PullRequest *PullRequest `json:"pullRequest,omitempty"`
}

// PullRequest describes a PR created on the session's behalf.
type PullRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// AutomationModeAutoCreatePR asks the service to open a PR when the
// session completes.
const AutomationModeAutoCreatePR = "AUTO_CREATE_PR"

// CreateSessionRequest is the POST sessions body. Optional fields are
// omitted entirely when unset; the server rejects null placeholders.
type CreateSessionRequest struct {
	Prompt              string         `json:"prompt"`
	Title               string         `json:"title,omitempty"`
	SourceContext       *SourceContext `json:"sourceContext,omitempty"`
	RequirePlanApproval bool           `json:"requirePlanApproval,omitempty"`
	AutomationMode      string         `json:"automationMode,omitempty"`
}

// SendMessageRequest is the POST sessions/{id}:sendMessage body.
type SendMessageRequest struct {
	Prompt string `json:"prompt"`
}

// ListSessionsResponse is a page of sessions. Sessions may be absent on
// an empty page; callers treat nil as empty.
type ListSessionsResponse struct {
	Sessions      []Session `json:"sessions,omitempty"`
	NextPageToken string    `json:"nextPageToken,omitempty"`
}
