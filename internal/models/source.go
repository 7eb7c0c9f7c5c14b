package models

// Source is a repository the agent can work against.
type Source struct {
	Name       string      `json:"name"`
	ID         string      `json:"id"`
	GitHubRepo *GitHubRepo `json:"githubRepo,omitempty"`
}

// DisplayName returns "owner/repo" when GitHub metadata is present,
// otherwise the resource name.
func (s *Source) DisplayName() string {
	if s.GitHubRepo != nil {
		return s.GitHubRepo.Owner + "/" + s.GitHubRepo.Repo
	}
	return s.Name
}

// GitHubRepo describes a connected GitHub repository.
type GitHubRepo struct {
	Owner         string   `json:"owner"`
	Repo          string   `json:"repo"`
	IsPrivate     bool     `json:"isPrivate,omitempty"`
	DefaultBranch *Branch  `json:"defaultBranch,omitempty"`
	Branches      []Branch `json:"branches,omitempty"`
}

// Branch is a git branch known to the service.
type Branch struct {
	DisplayName string `json:"displayName"`
}

// SourceContext names the source a session works in, plus optional
// GitHub-specific context. Embedded in session-creation requests.
type SourceContext struct {
	Source            string             `json:"source"`
	GitHubRepoContext *GitHubRepoContext `json:"githubRepoContext,omitempty"`
}

// GitHubRepoContext pins the branch a session starts from.
type GitHubRepoContext struct {
	StartingBranch string `json:"startingBranch"`
}

// ListSourcesResponse is a page of sources.
type ListSourcesResponse struct {
	Sources       []Source `json:"sources,omitempty"`
	NextPageToken string   `json:"nextPageToken,omitempty"`
}
