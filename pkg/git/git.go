// Package git wraps the system git binary with the plumbing git-pr-release
// needs: merge-commit history, remote pull-request refs, ancestry tests and
// scoped configuration. It shells out rather than linking a git library so the
// textual contracts match what the git CLI serves byte for byte.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Client runs git commands against one repository.
type Client struct {
	// Dir is the working directory of the git repository.
	Dir string
}

// NewClient creates a git client for the given directory.
func NewClient(dir string) *Client {
	return &Client{Dir: dir}
}

// MergeCommit is one merge commit from history, with its parent hashes in the
// order git reports them (first parent is the branch merged into).
type MergeCommit struct {
	Hash    string
	Parents []string
}

// FeatureHead returns the second-parent hash, the tip of the branch that was
// merged in. Empty for degenerate entries with fewer than two parents.
func (m MergeCommit) FeatureHead() string {
	if len(m.Parents) < 2 {
		return ""
	}
	return m.Parents[1]
}

// RemoteRef is one entry of ls-remote output.
type RemoteRef struct {
	SHA string
	Ref string
}

// execCommand executes a git command with proper error handling.
func (c *Client) execCommand(ctx context.Context, args ...string) ([]byte, error) {
	cmdArgs := c.baseArgs()
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	output, err := cmd.Output()
	if err != nil {
		detail := ""
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			detail = strings.TrimSpace(string(exitErr.Stderr))
		}
		return output, fmt.Errorf("git %s failed: %w: %s", strings.Join(args, " "), err, detail)
	}

	return output, nil
}

// RepoRoot resolves the repository root path.
func (c *Client) RepoRoot(ctx context.Context) (string, error) {
	output, err := c.execCommand(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("failed to resolve repository root: %w", err)
	}
	return strings.TrimSpace(string(output)), nil
}

// RemoteURL returns the configured URL of the named remote.
func (c *Client) RemoteURL(ctx context.Context, remote string) (string, error) {
	output, err := c.execCommand(ctx, "config", "--get", fmt.Sprintf("remote.%s.url", remote))
	if err != nil {
		return "", fmt.Errorf("failed to read URL of remote %q: %w", remote, err)
	}
	return strings.TrimSpace(string(output)), nil
}

// Fetch updates remote-tracking refs from the named remote.
func (c *Client) Fetch(ctx context.Context, remote string) error {
	if _, err := c.execCommand(ctx, "fetch", remote); err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}
	return nil
}

// MergeCommits lists merge commits reachable in "base..head", each with its
// parent hashes. Output order is git log order, newest first.
func (c *Client) MergeCommits(ctx context.Context, base, head string) ([]MergeCommit, error) {
	rangeSpec := fmt.Sprintf("%s..%s", base, head)
	output, err := c.execCommand(ctx, "log", "--merges", "--pretty=format:%H %P", rangeSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to list merge commits in %s: %w", rangeSpec, err)
	}
	return ParseMergeCommits(string(output)), nil
}

// ParseMergeCommits parses "log --pretty=format:%H %P" output. Blank lines are
// skipped; a line's first field is the commit hash, the rest are parents.
func ParseMergeCommits(output string) []MergeCommit {
	var commits []MergeCommit
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		commits = append(commits, MergeCommit{
			Hash:    fields[0],
			Parents: fields[1:],
		})
	}
	return commits
}

// LsRemote lists refs on the named remote matching the given pattern, for
// example "refs/pull/*/head".
func (c *Client) LsRemote(ctx context.Context, remote, pattern string) ([]RemoteRef, error) {
	output, err := c.execCommand(ctx, "ls-remote", remote, pattern)
	if err != nil {
		return nil, fmt.Errorf("ls-remote %s %s failed: %w", remote, pattern, err)
	}
	return ParseLsRemote(string(output)), nil
}

// ParseLsRemote parses ls-remote output lines of the form "<sha>\t<ref>".
func ParseLsRemote(output string) []RemoteRef {
	var refs []RemoteRef
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		refs = append(refs, RemoteRef{SHA: fields[0], Ref: fields[1]})
	}
	return refs
}

// IsAncestor reports whether commit is an ancestor of ref. A negative answer
// is not an error; git signals it with exit status 1.
func (c *Client) IsAncestor(ctx context.Context, commit, ref string) (bool, error) {
	cmd := exec.CommandContext(ctx, "git", "-C", c.Dir, "merge-base", "--is-ancestor", commit, ref)
	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("merge-base --is-ancestor %s %s failed: %w", commit, ref, err)
}

// ConfigGet reads a config key from the repository-default scopes. A missing
// key returns an empty value and no error; configuration is always optional.
func (c *Client) ConfigGet(ctx context.Context, key string) (string, error) {
	return c.configGet(ctx, "config", "--get", key)
}

// ConfigGetFromFile reads a config key from a specific config file, used for
// the repository-local override file.
func (c *Client) ConfigGetFromFile(ctx context.Context, file, key string) (string, error) {
	return c.configGet(ctx, "config", "-f", file, "--get", key)
}

// ConfigSetGlobal writes a key into the user's global git configuration.
func (c *Client) ConfigSetGlobal(ctx context.Context, key, value string) error {
	if _, err := c.execCommand(ctx, "config", "--global", key, value); err != nil {
		return fmt.Errorf("failed to set global config %s: %w", key, err)
	}
	return nil
}

// baseArgs scopes commands to the client's directory. An empty Dir runs git
// in the process working directory.
func (c *Client) baseArgs() []string {
	if c.Dir == "" {
		return nil
	}
	return []string{"-C", c.Dir}
}

func (c *Client) configGet(ctx context.Context, args ...string) (string, error) {
	cmdArgs := c.baseArgs()
	cmdArgs = append(cmdArgs, args...)

	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	output, err := cmd.Output()
	if err != nil {
		// Exit status 1 means the key (or the file) is absent, which callers
		// treat as "fall back to the next tier".
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", nil
		}
		return "", fmt.Errorf("git %s failed: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(output)), nil
}
