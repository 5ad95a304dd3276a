// Package release implements the release-set derivation and description-merge
// engine: computing which feature pull requests belong in the next release,
// rendering the release pull request's checklist body, and reconciling a fresh
// rendering with the body a human may have edited.
package release

import "fmt"

// PullRequest is the record of one pull request as the engine sees it. It is
// fetched fresh from the hosting API on every run and never persisted.
type PullRequest struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	Author   string `json:"author,omitempty"`
	Assignee string `json:"assignee,omitempty"`
	HeadRef  string `json:"head_ref"`
	BaseRef  string `json:"base_ref"`
	Body     string `json:"body"`
	URL      string `json:"url"`
}

// MentionLogin returns the login to credit on the checklist line: the
// assignee when present, the author otherwise, empty when neither is known.
func (pr *PullRequest) MentionLogin() string {
	if pr.Assignee != "" {
		return pr.Assignee
	}
	return pr.Author
}

// Handle abstracts over the release pull request during rendering, so
// templates never branch on whether the pull request exists yet.
type Handle interface {
	// Number is the pull request number, 0 for the absent sentinel.
	Number() int
	// Title is the current title, a fixed placeholder for the sentinel.
	Title() string
	// Link is the canonical web link, empty for the sentinel.
	Link() string
	// Exists reports whether a real pull request backs this handle.
	Exists() bool
}

type realHandle struct {
	pr *PullRequest
}

// NewHandle wraps an existing release pull request.
func NewHandle(pr *PullRequest) Handle {
	return realHandle{pr: pr}
}

func (h realHandle) Number() int { return h.pr.Number }
func (h realHandle) Title() string { return h.pr.Title }
func (h realHandle) Link() string  { return h.pr.URL }
func (h realHandle) Exists() bool  { return true }

type absentHandle struct{}

// AbsentHandle stands in for "no release pull request exists yet". It renders
// fixed placeholder values instead of forcing callers to branch on nil.
func AbsentHandle() Handle {
	return absentHandle{}
}

func (absentHandle) Number() int { return 0 }
func (absentHandle) Title() string { return "(not created yet)" }
func (absentHandle) Link() string  { return "" }
func (absentHandle) Exists() bool  { return false }

func (pr *PullRequest) String() string {
	return fmt.Sprintf("#%d %s", pr.Number, pr.Title)
}
