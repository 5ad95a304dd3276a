package main

import (
	"context"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/git-pr-release/git-pr-release/pkg/app"
	"github.com/git-pr-release/git-pr-release/pkg/config"
	"github.com/git-pr-release/git-pr-release/pkg/git"
	"github.com/git-pr-release/git-pr-release/pkg/github"
	"github.com/git-pr-release/git-pr-release/pkg/gitremote"
	"github.com/git-pr-release/git-pr-release/pkg/log"
	"github.com/git-pr-release/git-pr-release/pkg/release"
)

var (
	flagDryRun     bool
	flagJSON       bool
	flagVerbose    bool
	flagProduction string
	flagStaging    string
	flagTemplate   string
	flagLabels     string
	flagToken      string
)

var rootCmd = &cobra.Command{
	Use:   "git-pr-release",
	Short: "Maintain a release pull request from staging to production",
	Long: `git-pr-release maintains a long-lived release pull request that
aggregates the feature pull requests merged into the staging branch but not
yet released to the production branch. The body is a checklist, one line per
feature pull request, and manual edits to it survive re-runs.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagVerbose {
			log.SetLevel(log.LevelDebug)
		}

		a := &app.App{
			Git:          &git.Client{},
			NewHosting:   newHosting,
			AcquireToken: acquireToken,
		}
		return a.Run(cmd.Context(), app.Options{
			DryRun: flagDryRun,
			JSON:   flagJSON,
			Overrides: config.Overrides{
				ProductionBranch: flagProduction,
				StagingBranch:    flagStaging,
				TemplatePath:     flagTemplate,
				Labels:           flagLabels,
				Token:            flagToken,
			},
		})
	},
}

func newHosting(token string, remote *gitremote.Remote) app.HostingClient {
	return github.NewClient(token,
		github.WithBaseURL(remote.APIEndpoint()),
		// Enterprise hosts commonly terminate TLS with internal CAs.
		github.WithInsecureTLS(remote.IsEnterprise()),
	)
}

func init() {
	rootCmd.Flags().BoolVarP(&flagDryRun, "dry-run", "n", false, "Render and print without updating anything")
	rootCmd.Flags().BoolVar(&flagJSON, "json", false, "Dump release information as JSON to stdout")
	rootCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	rootCmd.Flags().StringVar(&flagProduction, "production", "", "Production branch name (default \"master\")")
	rootCmd.Flags().StringVar(&flagStaging, "staging", "", "Staging branch name (default \"staging\")")
	rootCmd.Flags().StringVar(&flagTemplate, "template", "", "Path to the body template file")
	rootCmd.Flags().StringVar(&flagLabels, "labels", "", "Comma-separated labels to apply to the release pull request")
	rootCmd.Flags().StringVar(&flagToken, "token", "", "API token (overrides configuration)")
}

func main() {
	ctx := context.Background()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// "nothing to release" was already reported by the run itself.
		if !errors.Is(err, release.ErrNothingToRelease) {
			log.Error("failed", "error", err)
		}
		os.Exit(app.ExitCode(err))
	}
}
