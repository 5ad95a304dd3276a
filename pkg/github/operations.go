package github

import (
	"context"
	"fmt"

	"github.com/google/go-github/v68/github"

	"github.com/git-pr-release/git-pr-release/pkg/release"
)

// ChangedFile is one file touched by a pull request.
type ChangedFile struct {
	Filename  string `json:"filename"`
	Status    string `json:"status"`
	Additions int    `json:"additions"`
	Deletions int    `json:"deletions"`
	Changes   int    `json:"changes"`
}

// convertPullRequest maps a go-github pull request to the engine's record.
func convertPullRequest(pr *github.PullRequest) *release.PullRequest {
	rec := &release.PullRequest{
		Number: pr.GetNumber(),
		Title:  pr.GetTitle(),
		Body:   pr.GetBody(),
		URL:    pr.GetHTMLURL(),
	}

	if user := pr.GetUser(); user != nil {
		rec.Author = user.GetLogin()
	}
	if assignee := pr.GetAssignee(); assignee != nil {
		rec.Assignee = assignee.GetLogin()
	}
	if head := pr.GetHead(); head != nil {
		rec.HeadRef = head.GetRef()
	}
	if base := pr.GetBase(); base != nil {
		rec.BaseRef = base.GetRef()
	}

	return rec
}

// GetPullRequest fetches a single pull request by number.
func (c *Client) GetPullRequest(ctx context.Context, owner, repo string, number int) (*release.PullRequest, error) {
	pr, _, err := c.GitHubClient().PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull request #%d: %w", number, err)
	}
	return convertPullRequest(pr), nil
}

// ListOpenPullRequests lists all open pull requests, following pagination.
func (c *Client) ListOpenPullRequests(ctx context.Context, owner, repo string) ([]*release.PullRequest, error) {
	opts := &github.PullRequestListOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var all []*release.PullRequest
	for {
		prs, resp, err := c.GitHubClient().PullRequests.List(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list open pull requests: %w", err)
		}
		for _, pr := range prs {
			all = append(all, convertPullRequest(pr))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// ListPullRequestFiles lists the files changed by a pull request.
func (c *Client) ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]ChangedFile, error) {
	opts := &github.ListOptions{PerPage: 100}

	var files []ChangedFile
	for {
		page, resp, err := c.GitHubClient().PullRequests.ListFiles(ctx, owner, repo, number, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list files of pull request #%d: %w", number, err)
		}
		for _, f := range page {
			files = append(files, ChangedFile{
				Filename:  f.GetFilename(),
				Status:    f.GetStatus(),
				Additions: f.GetAdditions(),
				Deletions: f.GetDeletions(),
				Changes:   f.GetChanges(),
			})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return files, nil
}

// CreatePullRequest opens a new pull request from head into base.
func (c *Client) CreatePullRequest(ctx context.Context, owner, repo, base, head, title, body string) (*release.PullRequest, error) {
	pr, _, err := c.GitHubClient().PullRequests.Create(ctx, owner, repo, &github.NewPullRequest{
		Title: github.String(title),
		Head:  github.String(head),
		Base:  github.String(base),
		Body:  github.String(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create pull request %s -> %s: %w", head, base, err)
	}
	return convertPullRequest(pr), nil
}

// UpdatePullRequest replaces a pull request's title and body.
func (c *Client) UpdatePullRequest(ctx context.Context, owner, repo string, number int, title, body string) (*release.PullRequest, error) {
	pr, _, err := c.GitHubClient().PullRequests.Edit(ctx, owner, repo, number, &github.PullRequest{
		Title: github.String(title),
		Body:  github.String(body),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update pull request #%d: %w", number, err)
	}
	return convertPullRequest(pr), nil
}

// AddLabels attaches labels to a pull request.
func (c *Client) AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error {
	if len(labels) == 0 {
		return nil
	}
	_, _, err := c.GitHubClient().Issues.AddLabelsToIssue(ctx, owner, repo, number, labels)
	if err != nil {
		return fmt.Errorf("failed to add labels to pull request #%d: %w", number, err)
	}
	return nil
}
