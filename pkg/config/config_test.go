package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGitConfig serves config lookups from maps keyed by full git-config key.
type fakeGitConfig struct {
	file   map[string]string
	global map[string]string
}

func (f *fakeGitConfig) ConfigGet(_ context.Context, key string) (string, error) {
	return f.global[key], nil
}

func (f *fakeGitConfig) ConfigGetFromFile(_ context.Context, _, key string) (string, error) {
	return f.file[key], nil
}

func TestLoadDefaults(t *testing.T) {
	loader := &Loader{Git: &fakeGitConfig{}, RepoRoot: t.TempDir()}

	cfg, err := loader.Load(context.Background(), Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "master", cfg.ProductionBranch)
	assert.Equal(t, "staging", cfg.StagingBranch)
	assert.Empty(t, cfg.TemplatePath)
	assert.Empty(t, cfg.Labels)
	assert.Empty(t, cfg.Token)
}

func TestLoadPrecedence(t *testing.T) {
	fake := &fakeGitConfig{
		file:   map[string]string{"pr-release.branch.production": "file-prod"},
		global: map[string]string{"pr-release.branch.production": "global-prod"},
	}
	loader := &Loader{Git: fake, RepoRoot: t.TempDir()}
	ctx := context.Background()

	t.Run("local file beats global", func(t *testing.T) {
		cfg, err := loader.Load(ctx, Overrides{})
		require.NoError(t, err)
		assert.Equal(t, "file-prod", cfg.ProductionBranch)
	})

	t.Run("env beats local file", func(t *testing.T) {
		t.Setenv("GIT_PR_RELEASE_BRANCH_PRODUCTION", "env-prod")
		cfg, err := loader.Load(ctx, Overrides{})
		require.NoError(t, err)
		assert.Equal(t, "env-prod", cfg.ProductionBranch)
	})

	t.Run("override beats everything", func(t *testing.T) {
		t.Setenv("GIT_PR_RELEASE_BRANCH_PRODUCTION", "env-prod")
		cfg, err := loader.Load(ctx, Overrides{ProductionBranch: "flag-prod"})
		require.NoError(t, err)
		assert.Equal(t, "flag-prod", cfg.ProductionBranch)
	})
}

func TestLoadHostQualifiedGlobal(t *testing.T) {
	fake := &fakeGitConfig{
		global: map[string]string{
			"pr-release.ghe.example.com.token": "ghe-token",
			"pr-release.token":                 "plain-token",
		},
	}

	ctx := context.Background()

	enterprise := &Loader{Git: fake, RepoRoot: t.TempDir(), Host: "ghe.example.com"}
	cfg, err := enterprise.Load(ctx, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "ghe-token", cfg.Token, "host-qualified key wins on enterprise hosts")

	public := &Loader{Git: fake, RepoRoot: t.TempDir()}
	cfg, err = public.Load(ctx, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "plain-token", cfg.Token)
}

func TestLoadYAMLFile(t *testing.T) {
	root := t.TempDir()
	yml := `branch:
  production: main
  staging: develop
template: .github/release.tmpl
labels:
  - release
  - deploy
`
	require.NoError(t, os.WriteFile(filepath.Join(root, YAMLFileName), []byte(yml), 0644))

	loader := &Loader{Git: &fakeGitConfig{}, RepoRoot: root}
	cfg, err := loader.Load(context.Background(), Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.ProductionBranch)
	assert.Equal(t, "develop", cfg.StagingBranch)
	assert.Equal(t, filepath.Join(root, ".github/release.tmpl"), cfg.TemplatePath, "relative template paths resolve against the repo root")
	assert.Equal(t, []string{"release", "deploy"}, cfg.Labels)
}

func TestLoadYAMLMalformed(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, YAMLFileName), []byte("branch: ["), 0644))

	loader := &Loader{Git: &fakeGitConfig{}, RepoRoot: root}
	_, err := loader.Load(context.Background(), Overrides{})
	require.Error(t, err, "a malformed project file must not pass silently")
}

func TestSplitLabels(t *testing.T) {
	assert.Nil(t, SplitLabels(""))
	assert.Equal(t, []string{"release"}, SplitLabels("release"))
	assert.Equal(t, []string{"release", "deploy"}, SplitLabels(" release , deploy ,"))
}

func TestEnvVar(t *testing.T) {
	assert.Equal(t, "GIT_PR_RELEASE_BRANCH_PRODUCTION", EnvVar("branch.production"))
	assert.Equal(t, "GIT_PR_RELEASE_TOKEN", EnvVar("token"))
}

func TestTokenGitConfigKey(t *testing.T) {
	assert.Equal(t, "pr-release.token", TokenGitConfigKey(""))
	assert.Equal(t, "pr-release.ghe.example.com.token", TokenGitConfigKey("ghe.example.com"))
}
