package models

// Originator values observed from the API. The field is an open string:
// anything unrecognized is rendered as a system actor, never an error.
const (
	OriginatorSystem = "system"
	OriginatorAgent  = "agent"
	OriginatorUser   = "user"
)

// ActivityKind discriminates the payload variant carried by an Activity.
type ActivityKind string

const (
	ActivityKindPlanGenerated    ActivityKind = "planGenerated"
	ActivityKindPlanApproved     ActivityKind = "planApproved"
	ActivityKindUserMessaged     ActivityKind = "userMessaged"
	ActivityKindAgentMessaged    ActivityKind = "agentMessaged"
	ActivityKindProgressUpdated  ActivityKind = "progressUpdated"
	ActivityKindSessionCompleted ActivityKind = "sessionCompleted"
	ActivityKindSessionFailed    ActivityKind = "sessionFailed"
	ActivityKindUnknown          ActivityKind = "unknown"
)

// Activity is one immutable event in a session's history. The server
// populates at most one of the payload pointers; an activity with none is
// still valid and renders through Description.
type Activity struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	Originator  string `json:"originator"`
	Description string `json:"description,omitempty"`
	CreateTime  string `json:"createTime"`

	PlanGenerated    *PlanGenerated    `json:"planGenerated,omitempty"`
	PlanApproved     *PlanApproved     `json:"planApproved,omitempty"`
	UserMessaged     *UserMessaged     `json:"userMessaged,omitempty"`
	AgentMessaged    *AgentMessaged    `json:"agentMessaged,omitempty"`
	ProgressUpdated  *ProgressUpdated  `json:"progressUpdated,omitempty"`
	SessionCompleted *SessionCompleted `json:"sessionCompleted,omitempty"`
	SessionFailed    *SessionFailed    `json:"sessionFailed,omitempty"`

	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// Kind returns the populated payload variant, checking fields in the
// server's documented order. The server guarantees at most one is set;
// the client does not defend against multiple.
func (a *Activity) Kind() ActivityKind {
	switch {
	case a.PlanGenerated != nil:
		return ActivityKindPlanGenerated
	case a.PlanApproved != nil:
		return ActivityKindPlanApproved
	case a.UserMessaged != nil:
		return ActivityKindUserMessaged
	case a.AgentMessaged != nil:
		return ActivityKindAgentMessaged
	case a.ProgressUpdated != nil:
		return ActivityKindProgressUpdated
	case a.SessionCompleted != nil:
		return ActivityKindSessionCompleted
	case a.SessionFailed != nil:
		return ActivityKindSessionFailed
	default:
		return ActivityKindUnknown
	}
}

// ListActivitiesResponse is a page of activities.
type ListActivitiesResponse struct {
	Activities    []Activity `json:"activities,omitempty"`
	NextPageToken string     `json:"nextPageToken,omitempty"`
}

// PlanGenerated carries the plan the agent proposes before working.
type PlanGenerated struct {
	Plan Plan `json:"plan"`
}

// Plan is an ordered sequence of steps. Steps keep decode order; they are
// never reordered locally.
type Plan struct {
	ID         string     `json:"id"`
	Steps      []PlanStep `json:"steps"`
	CreateTime string     `json:"createTime,omitempty"`
}

// PlanStep is one step of a plan. Index is 0-based and used only for
// 1-based display numbering.
type PlanStep struct {
	ID          string `json:"id"`
	Index       int    `json:"index"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// PlanApproved records the user approving a previously generated plan.
type PlanApproved struct {
	PlanID string `json:"planId"`
}

// UserMessaged carries a message the user sent to the agent.
type UserMessaged struct {
	UserMessage string `json:"userMessage"`
}

// AgentMessaged carries a message from the agent to the user.
type AgentMessaged struct {
	AgentMessage string `json:"agentMessage"`
}

// ProgressUpdated is an incremental status report while the agent works.
type ProgressUpdated struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// SessionCompleted marks successful completion. It carries no fields.
type SessionCompleted struct{}

// SessionFailed carries the terminal failure reason.
type SessionFailed struct {
	Reason string `json:"reason"`
}

// Artifact is auxiliary output attached to an activity. Exactly one of
// the pointers is populated per artifact; server order is preserved.
type Artifact struct {
	ChangeSet  *ChangeSet  `json:"changeSet,omitempty"`
	BashOutput *BashOutput `json:"bashOutput,omitempty"`
	Media      *Media      `json:"media,omitempty"`
}

// ChangeSet is a code-change artifact referencing a source.
type ChangeSet struct {
	Source   string    `json:"source"`
	GitPatch *GitPatch `json:"gitPatch,omitempty"`
}

// GitPatch is a unified diff against a base commit.
type GitPatch struct {
	BaseCommitID           string `json:"baseCommitId,omitempty"`
	UnidiffPatch           string `json:"unidiffPatch,omitempty"`
	SuggestedCommitMessage string `json:"suggestedCommitMessage,omitempty"`
}

// BashOutput is the captured result of a command the agent ran.
type BashOutput struct {
	Command  string `json:"command"`
	Output   string `json:"output"`
	ExitCode int    `json:"exitCode"`
}

// Media is an encoded binary artifact (screenshots, mostly).
type Media struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}
