// Package gitremote resolves a git remote URL into the coordinates the rest
// of the tool needs: the API host (empty for github.com), the owner/repo path
// and the web scheme. It is pure string parsing with no network access.
package gitremote

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// DefaultHost is the public code-hosting host. Remotes on it report an empty
// Host so callers know to use the default API endpoint.
const DefaultHost = "github.com"

// scpLikeRegex matches SCP-style remotes such as "git@github.com:org/repo.git".
var scpLikeRegex = regexp.MustCompile(`^(?:[\w.-]+@)?[\w.-]+:`)

// Remote holds the resolved coordinates of a git remote.
type Remote struct {
	// Host is the remote host, or empty when the remote lives on DefaultHost.
	Host string

	// Repository is the "owner/name" path with no leading slash or .git suffix.
	Repository string

	// Scheme is "http" only when the remote URL scheme was literally http,
	// "https" otherwise.
	Scheme string
}

// Parse resolves a raw remote URL. SCP-style remotes without a scheme are
// normalized to ssh:// before parsing.
func Parse(raw string) (*Remote, error) {
	normalized := raw
	if !strings.Contains(raw, "://") && scpLikeRegex.MatchString(raw) {
		normalized = "ssh://" + strings.Replace(raw, ":", "/", 1)
	}

	u, err := url.Parse(normalized)
	if err != nil {
		return nil, fmt.Errorf("failed to parse remote url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("remote url %q has no host", raw)
	}

	repo := strings.TrimPrefix(u.Path, "/")
	repo = strings.TrimSuffix(repo, ".git")
	if repo == "" {
		return nil, fmt.Errorf("remote url %q has no repository path", raw)
	}

	scheme := "https"
	if u.Scheme == "http" {
		scheme = "http"
	}

	host := u.Hostname()
	if host == DefaultHost {
		host = ""
	}

	return &Remote{
		Host:       host,
		Repository: repo,
		Scheme:     scheme,
	}, nil
}

// IsEnterprise reports whether the remote lives on a self-hosted instance.
func (r *Remote) IsEnterprise() bool {
	return r.Host != ""
}

// Owner returns the repository owner segment.
func (r *Remote) Owner() string {
	owner, _, _ := strings.Cut(r.Repository, "/")
	return owner
}

// Name returns the repository name segment.
func (r *Remote) Name() string {
	_, name, _ := strings.Cut(r.Repository, "/")
	return name
}

// WebHost returns the host used for browser-facing links.
func (r *Remote) WebHost() string {
	if r.Host == "" {
		return DefaultHost
	}
	return r.Host
}

// APIEndpoint returns the API base URL for this remote. Enterprise hosts use
// the /api/v3 prefix variant.
func (r *Remote) APIEndpoint() string {
	if r.IsEnterprise() {
		return fmt.Sprintf("%s://%s/api/v3/", r.Scheme, r.Host)
	}
	return "https://api.github.com/"
}

// String returns the canonical "host/owner/repo" form for logging.
func (r *Remote) String() string {
	return fmt.Sprintf("%s/%s", r.WebHost(), r.Repository)
}
