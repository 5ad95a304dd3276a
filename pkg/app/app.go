// Package app drives one git-pr-release run: resolve configuration, derive
// the merge-set, locate or create the release pull request, render and
// reconcile its body, persist it and apply labels.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/git-pr-release/git-pr-release/pkg/config"
	"github.com/git-pr-release/git-pr-release/pkg/git"
	"github.com/git-pr-release/git-pr-release/pkg/github"
	"github.com/git-pr-release/git-pr-release/pkg/gitremote"
	"github.com/git-pr-release/git-pr-release/pkg/log"
	"github.com/git-pr-release/git-pr-release/pkg/release"
)

// placeholderTitle is the title a freshly created release pull request gets
// before the first render lands.
const placeholderTitle = "Preparing release pull request..."

// GitRunner is the slice of the git client the orchestrator uses.
type GitRunner interface {
	config.GitConfig
	RepoRoot(ctx context.Context) (string, error)
	RemoteURL(ctx context.Context, remote string) (string, error)
	Fetch(ctx context.Context, remote string) error
	MergeCommits(ctx context.Context, base, head string) ([]git.MergeCommit, error)
	LsRemote(ctx context.Context, remote, pattern string) ([]git.RemoteRef, error)
	IsAncestor(ctx context.Context, commit, ref string) (bool, error)
	ConfigSetGlobal(ctx context.Context, key, value string) error
}

// HostingClient is the slice of the hosting API client the orchestrator uses.
type HostingClient interface {
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*release.PullRequest, error)
	ListOpenPullRequests(ctx context.Context, owner, repo string) ([]*release.PullRequest, error)
	ListPullRequestFiles(ctx context.Context, owner, repo string, number int) ([]github.ChangedFile, error)
	CreatePullRequest(ctx context.Context, owner, repo, base, head, title, body string) (*release.PullRequest, error)
	UpdatePullRequest(ctx context.Context, owner, repo string, number int, title, body string) (*release.PullRequest, error)
	AddLabels(ctx context.Context, owner, repo string, number int, labels []string) error
}

// TokenAcquirer obtains an API token interactively when configuration holds
// none. The returned token is persisted back to global git configuration.
type TokenAcquirer func(ctx context.Context, remote *gitremote.Remote) (string, error)

// Options selects run behavior.
type Options struct {
	// DryRun renders and prints without calling any mutating API operation.
	DryRun bool

	// JSON additionally dumps the run's records as a JSON object on stdout.
	JSON bool

	// Overrides carries CLI flag values into configuration resolution.
	Overrides config.Overrides
}

// App wires the collaborators for a run. Fields other than Git and NewHosting
// are optional.
type App struct {
	Git GitRunner

	// NewHosting builds the API client once the token and remote are known.
	NewHosting func(token string, remote *gitremote.Remote) HostingClient

	// AcquireToken is the interactive fallback when no token is configured.
	AcquireToken TokenAcquirer

	// Stdout receives dry-run output and the JSON dump. Defaults to os.Stdout.
	Stdout io.Writer

	// Now defaults to time.Now; tests pin it.
	Now func() time.Time
}

// jsonDump is the --json payload.
type jsonDump struct {
	ReleasePullRequest *release.PullRequest   `json:"release_pull_request"`
	MergedPullRequests []*release.PullRequest `json:"merged_pull_requests"`
	ChangedFiles       []github.ChangedFile   `json:"changed_files"`
}

// Run executes one end-to-end maintenance pass.
func (a *App) Run(ctx context.Context, opts Options) error {
	stdout := a.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	now := a.Now
	if now == nil {
		now = time.Now
	}

	repoRoot, err := a.Git.RepoRoot(ctx)
	if err != nil {
		return err
	}

	remoteURL, err := a.Git.RemoteURL(ctx, "origin")
	if err != nil {
		return err
	}
	// Resolved once and carried on the run state for the rest of the pass.
	remote, err := gitremote.Parse(remoteURL)
	if err != nil {
		return err
	}
	log.Debug("resolved remote", "remote", remote.String(), "scheme", remote.Scheme)

	loader := &config.Loader{Git: a.Git, RepoRoot: repoRoot, Host: remote.Host}
	cfg, err := loader.Load(ctx, opts.Overrides)
	if err != nil {
		return err
	}
	log.Debug("resolved configuration",
		"production", cfg.ProductionBranch,
		"staging", cfg.StagingBranch,
		"labels", len(cfg.Labels),
	)

	token, err := a.resolveToken(ctx, cfg, remote)
	if err != nil {
		return err
	}
	hosting := a.NewHosting(token, remote)

	spinner := log.StartSpinner("fetching origin")
	err = a.Git.Fetch(ctx, "origin")
	spinner.Stop()
	if err != nil {
		return err
	}

	prs, err := a.fetchMergeSet(ctx, hosting, remote, cfg)
	if err != nil {
		return err
	}

	templateText, err := loadTemplate(cfg.TemplatePath)
	if err != nil {
		return err
	}

	existing, err := a.locateReleasePR(ctx, hosting, remote, cfg)
	if err != nil {
		return err
	}

	if opts.DryRun {
		return a.dryRun(ctx, stdout, hosting, remote, templateText, existing, prs, now(), opts.JSON)
	}

	releasePR, err := a.persist(ctx, hosting, remote, cfg, templateText, existing, prs, now())
	if err != nil {
		return err
	}

	if len(cfg.Labels) > 0 {
		if err := hosting.AddLabels(ctx, remote.Owner(), remote.Name(), releasePR.Number, cfg.Labels); err != nil {
			return &ExitError{Code: ExitLabelFailed, Err: err}
		}
		log.Info("labels applied", "labels", len(cfg.Labels))
	}

	changedFiles, err := hosting.ListPullRequestFiles(ctx, remote.Owner(), remote.Name(), releasePR.Number)
	if err != nil {
		return err
	}

	log.Info("release pull request up to date",
		"number", releasePR.Number,
		"url", releasePR.URL,
		"pull_requests", len(prs),
	)

	if opts.JSON {
		return writeJSON(stdout, jsonDump{
			ReleasePullRequest: releasePR,
			MergedPullRequests: prs,
			ChangedFiles:       changedFiles,
		})
	}
	return nil
}

// resolveToken walks configured sources, falling back to interactive
// acquisition, and persists an interactively obtained token.
func (a *App) resolveToken(ctx context.Context, cfg *config.Config, remote *gitremote.Remote) (string, error) {
	if cfg.Token != "" {
		return cfg.Token, nil
	}

	if a.AcquireToken == nil {
		return "", fmt.Errorf("no API token configured; set %s or pr-release.token", config.EnvVar("token"))
	}

	token, err := a.AcquireToken(ctx, remote)
	if err != nil {
		return "", fmt.Errorf("failed to acquire API token: %w", err)
	}

	key := config.TokenGitConfigKey(remote.Host)
	if err := a.Git.ConfigSetGlobal(ctx, key, token); err != nil {
		return "", err
	}
	log.Info("token persisted to global git config", "key", key)
	return token, nil
}

// fetchMergeSet derives the release merge-set and resolves its records.
func (a *App) fetchMergeSet(ctx context.Context, hosting HostingClient, remote *gitremote.Remote, cfg *config.Config) ([]*release.PullRequest, error) {
	productionRef := "origin/" + cfg.ProductionBranch
	stagingRef := "origin/" + cfg.StagingBranch

	mergeCommits, err := a.Git.MergeCommits(ctx, productionRef, stagingRef)
	if err != nil {
		return nil, err
	}

	refs, err := a.Git.LsRemote(ctx, "origin", "refs/pull/*/head")
	if err != nil {
		return nil, err
	}

	numbers, err := release.CalculateMergeSet(ctx, mergeCommits, refs, func(ctx context.Context, commit string) (bool, error) {
		return a.Git.IsAncestor(ctx, commit, productionRef)
	})
	if err != nil {
		return nil, err
	}

	if len(numbers) == 0 {
		log.Error("nothing to release", "production", cfg.ProductionBranch, "staging", cfg.StagingBranch)
		return nil, &ExitError{Code: ExitNothingToRelease, Err: release.ErrNothingToRelease}
	}
	log.Info("merge-set computed", "count", len(numbers))

	prs := make([]*release.PullRequest, 0, len(numbers))
	for _, number := range numbers {
		pr, err := hosting.GetPullRequest(ctx, remote.Owner(), remote.Name(), number)
		if err != nil {
			return nil, err
		}
		log.Debug("resolved pull request", "number", pr.Number, "title", pr.Title)
		prs = append(prs, pr)
	}
	return prs, nil
}

// locateReleasePR finds the open pull request whose head/base exactly match
// the staging/production branch pair, or nil when none exists.
func (a *App) locateReleasePR(ctx context.Context, hosting HostingClient, remote *gitremote.Remote, cfg *config.Config) (*release.PullRequest, error) {
	open, err := hosting.ListOpenPullRequests(ctx, remote.Owner(), remote.Name())
	if err != nil {
		return nil, err
	}

	for _, pr := range open {
		if pr.HeadRef == cfg.StagingBranch && pr.BaseRef == cfg.ProductionBranch {
			return pr, nil
		}
	}
	return nil, nil
}

// persist renders the body and writes it to the release pull request,
// creating a placeholder first when none exists.
func (a *App) persist(ctx context.Context, hosting HostingClient, remote *gitremote.Remote, cfg *config.Config, templateText string, existing *release.PullRequest, prs []*release.PullRequest, now time.Time) (*release.PullRequest, error) {
	target := existing
	if target == nil {
		created, err := hosting.CreatePullRequest(ctx, remote.Owner(), remote.Name(), cfg.ProductionBranch, cfg.StagingBranch, placeholderTitle, "")
		if err != nil {
			return nil, &ExitError{Code: ExitCreateFailed, Err: err}
		}
		log.Info("created release pull request", "number", created.Number, "url", created.URL)
		target = created
	}

	title, body, err := release.Render(templateText, release.TemplateData{
		ReleasePullRequest: release.NewHandle(target),
		PullRequests:       prs,
		Now:                now,
	})
	if err != nil {
		return nil, err
	}

	if target.Body != "" {
		body = release.Reconcile(target.Body, body)
	}

	updated, err := hosting.UpdatePullRequest(ctx, remote.Owner(), remote.Name(), target.Number, title, body)
	if err != nil {
		return nil, &ExitError{Code: ExitUpdateFailed, Err: err}
	}
	return updated, nil
}

// dryRun renders (and reconciles, when a release pull request exists) and
// prints the result without touching the remote.
func (a *App) dryRun(ctx context.Context, stdout io.Writer, hosting HostingClient, remote *gitremote.Remote, templateText string, existing *release.PullRequest, prs []*release.PullRequest, now time.Time, dumpJSON bool) error {
	handle := release.AbsentHandle()
	if existing != nil {
		handle = release.NewHandle(existing)
	}

	title, body, err := release.Render(templateText, release.TemplateData{
		ReleasePullRequest: handle,
		PullRequests:       prs,
		Now:                now,
	})
	if err != nil {
		return err
	}

	if existing != nil && existing.Body != "" {
		body = release.Reconcile(existing.Body, body)
	}

	log.Info("dry-run: not persisting", "would_create", existing == nil)
	fmt.Fprintln(stdout, title)
	fmt.Fprintln(stdout)
	fmt.Fprintln(stdout, body)

	if !dumpJSON {
		return nil
	}

	var changedFiles []github.ChangedFile
	if existing != nil {
		changedFiles, err = hosting.ListPullRequestFiles(ctx, remote.Owner(), remote.Name(), existing.Number)
		if err != nil {
			return err
		}
	}
	return writeJSON(stdout, jsonDump{
		ReleasePullRequest: existing,
		MergedPullRequests: prs,
		ChangedFiles:       changedFiles,
	})
}

// loadTemplate reads the configured template file, or falls back to the
// built-in template.
func loadTemplate(path string) (string, error) {
	if path == "" {
		return release.DefaultTemplate, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read body template %s: %w", path, err)
	}
	return string(data), nil
}

func writeJSON(w io.Writer, dump jsonDump) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dump); err != nil {
		return fmt.Errorf("failed to encode JSON dump: %w", err)
	}
	return nil
}
