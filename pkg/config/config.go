// Package config resolves git-pr-release settings. Every key is optional and
// falls back through layers: explicit overrides (CLI flags), environment
// variables, a project .git-pr-release.yml, the repository-local
// .git-pr-release git-config file, and finally global git configuration
// (host-qualified keys first on enterprise hosts).
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// LocalFileName is the repository-local git-config override file.
	LocalFileName = ".git-pr-release"

	// YAMLFileName is the optional project configuration file.
	YAMLFileName = ".git-pr-release.yml"

	// gitConfigSection prefixes every git-config key this tool reads.
	gitConfigSection = "pr-release"

	// envPrefix prefixes every environment variable this tool reads.
	envPrefix = "GIT_PR_RELEASE_"
)

// Defaults for branch names.
const (
	DefaultProductionBranch = "master"
	DefaultStagingBranch    = "staging"
)

// GitConfig is the slice of the git client used for configuration lookups.
type GitConfig interface {
	ConfigGet(ctx context.Context, key string) (string, error)
	ConfigGetFromFile(ctx context.Context, file, key string) (string, error)
}

// Config holds the resolved settings for one run.
type Config struct {
	// ProductionBranch is the branch releases land on.
	ProductionBranch string

	// StagingBranch is the branch feature work is merged into.
	StagingBranch string

	// TemplatePath points at a body template overriding the built-in one.
	// Relative paths are resolved against the repository root.
	TemplatePath string

	// Labels are attached to the release pull request after persisting.
	Labels []string

	// Token authenticates against the hosting API. May be empty, in which
	// case the caller falls back to interactive acquisition.
	Token string
}

// Overrides carries values with the highest precedence, typically CLI flags.
// Labels is comma-separated like the git-config form.
type Overrides struct {
	ProductionBranch string
	StagingBranch    string
	TemplatePath     string
	Labels           string
	Token            string
}

// yamlConfig mirrors the .git-pr-release.yml schema.
type yamlConfig struct {
	Branch struct {
		Production string `yaml:"production,omitempty"`
		Staging    string `yaml:"staging,omitempty"`
	} `yaml:"branch,omitempty"`
	Template string   `yaml:"template,omitempty"`
	Labels   []string `yaml:"labels,omitempty"`
	Token    string   `yaml:"token,omitempty"`
}

// Loader resolves configuration for one repository.
type Loader struct {
	// Git performs the git-config lookups.
	Git GitConfig

	// RepoRoot is the repository root path; the override files live there.
	RepoRoot string

	// Host is the enterprise host, empty for the default public host. It
	// qualifies global git-config keys so one machine can hold settings for
	// several hosts.
	Host string
}

// Load resolves the full configuration. Missing values are not errors; they
// fall back layer by layer down to the defaults.
func (l *Loader) Load(ctx context.Context, ov Overrides) (*Config, error) {
	yml, err := l.loadYAML()
	if err != nil {
		return nil, err
	}

	production, err := l.resolve(ctx, "branch.production", ov.ProductionBranch, yml.Branch.Production)
	if err != nil {
		return nil, err
	}
	if production == "" {
		production = DefaultProductionBranch
	}

	staging, err := l.resolve(ctx, "branch.staging", ov.StagingBranch, yml.Branch.Staging)
	if err != nil {
		return nil, err
	}
	if staging == "" {
		staging = DefaultStagingBranch
	}

	templatePath, err := l.resolve(ctx, "template", ov.TemplatePath, yml.Template)
	if err != nil {
		return nil, err
	}
	if templatePath != "" && !filepath.IsAbs(templatePath) {
		templatePath = filepath.Join(l.RepoRoot, templatePath)
	}

	labels, err := l.resolve(ctx, "labels", ov.Labels, strings.Join(yml.Labels, ","))
	if err != nil {
		return nil, err
	}

	token, err := l.resolve(ctx, "token", ov.Token, yml.Token)
	if err != nil {
		return nil, err
	}

	return &Config{
		ProductionBranch: production,
		StagingBranch:    staging,
		TemplatePath:     templatePath,
		Labels:           SplitLabels(labels),
		Token:            token,
	}, nil
}

// resolve walks the layers for one key, most specific first.
func (l *Loader) resolve(ctx context.Context, key, override, yamlValue string) (string, error) {
	if override != "" {
		return override, nil
	}

	if v := os.Getenv(EnvVar(key)); v != "" {
		return v, nil
	}

	if yamlValue != "" {
		return yamlValue, nil
	}

	localFile := filepath.Join(l.RepoRoot, LocalFileName)
	v, err := l.Git.ConfigGetFromFile(ctx, localFile, gitConfigSection+"."+key)
	if err != nil {
		return "", fmt.Errorf("failed to read %s from %s: %w", key, LocalFileName, err)
	}
	if v != "" {
		return v, nil
	}

	if l.Host != "" {
		v, err = l.Git.ConfigGet(ctx, fmt.Sprintf("%s.%s.%s", gitConfigSection, l.Host, key))
		if err != nil {
			return "", fmt.Errorf("failed to read host-qualified config %s: %w", key, err)
		}
		if v != "" {
			return v, nil
		}
	}

	v, err = l.Git.ConfigGet(ctx, gitConfigSection+"."+key)
	if err != nil {
		return "", fmt.Errorf("failed to read config %s: %w", key, err)
	}
	return v, nil
}

// loadYAML reads the project yaml file when present. An absent file yields a
// zero config; a malformed one is an error so typos do not pass silently.
func (l *Loader) loadYAML() (*yamlConfig, error) {
	var cfg yamlConfig

	data, err := os.ReadFile(filepath.Join(l.RepoRoot, YAMLFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", YAMLFileName, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", YAMLFileName, err)
	}
	return &cfg, nil
}

// EnvVar maps a config key to its environment variable, for example
// "branch.production" to "GIT_PR_RELEASE_BRANCH_PRODUCTION".
func EnvVar(key string) string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// SplitLabels parses a comma-separated label list, trimming whitespace and
// dropping empty entries.
func SplitLabels(s string) []string {
	var labels []string
	for _, part := range strings.Split(s, ",") {
		if label := strings.TrimSpace(part); label != "" {
			labels = append(labels, label)
		}
	}
	return labels
}

// TokenGitConfigKey is the global git-config key an interactively created
// token is persisted under.
func TokenGitConfigKey(host string) string {
	if host != "" {
		return fmt.Sprintf("%s.%s.token", gitConfigSection, host)
	}
	return gitConfigSection + ".token"
}
