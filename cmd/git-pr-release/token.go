package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/git-pr-release/git-pr-release/pkg/github"
	"github.com/git-pr-release/git-pr-release/pkg/gitremote"
)

// acquireToken prompts for basic credentials on the terminal and creates a
// personal access token scoped to "repo". The orchestrator persists the
// result to global git configuration.
func acquireToken(ctx context.Context, remote *gitremote.Remote) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no token configured and stdin is not a terminal")
	}

	fmt.Fprintf(os.Stderr, "No API token configured for %s.\n", remote.WebHost())

	login, err := promptLine(fmt.Sprintf("Username for %s: ", remote.WebHost()))
	if err != nil {
		return "", err
	}
	password, err := promptPassword(fmt.Sprintf("Password for %s: ", login))
	if err != nil {
		return "", err
	}

	client := github.NewClient("",
		github.WithBaseURL(remote.APIEndpoint()),
		github.WithInsecureTLS(remote.IsEnterprise()),
	)
	note := fmt.Sprintf("git-pr-release @ %s", remote.Repository)
	return client.CreateAuthorization(ctx, login, password, note, func(attempt int) (string, error) {
		return promptLine(fmt.Sprintf("Two-factor code (attempt %d): ", attempt))
	})
}

func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}
