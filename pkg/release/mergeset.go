package release

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/git-pr-release/git-pr-release/pkg/git"
	"github.com/git-pr-release/git-pr-release/pkg/log"
)

// ErrNothingToRelease signals that no feature pull request is waiting to be
// released. It is an expected outcome, distinct from any transport failure.
var ErrNothingToRelease = errors.New("nothing to release")

// pullHeadRegexp extracts the pull request number from a pull head ref.
var pullHeadRegexp = regexp.MustCompile(`^refs/pull/(\d+)/head$`)

// AncestorFunc reports whether a commit is already an ancestor of the
// production branch.
type AncestorFunc func(ctx context.Context, commit string) (bool, error)

// CalculateMergeSet computes the ordered pull request numbers that belong in
// the release:
//
//  1. Second-parent hashes of the merge commits in production..staging are the
//     feature branch tips merged into staging.
//  2. Remote refs matching refs/pull/<n>/head whose hash is among those tips
//     identify the candidate pull requests, in the order the refs were seen.
//  3. Candidates whose head commit is already an ancestor of production are
//     excluded as released.
//
// Refs that carry an unexpected name are skipped with a warning. An empty
// result is a normal outcome; the caller decides how to surface it.
func CalculateMergeSet(ctx context.Context, mergeCommits []git.MergeCommit, refs []git.RemoteRef, isAncestorOfProduction AncestorFunc) ([]int, error) {
	featureHeads := make(map[string]bool, len(mergeCommits))
	for _, mc := range mergeCommits {
		if head := mc.FeatureHead(); head != "" {
			featureHeads[head] = true
		}
	}

	var numbers []int
	seen := make(map[int]bool)
	for _, ref := range refs {
		if !featureHeads[ref.SHA] {
			continue
		}

		m := pullHeadRegexp.FindStringSubmatch(ref.Ref)
		if m == nil {
			log.Warn("matched ref is not a pull request head, skipping", "ref", ref.Ref, "sha", ref.SHA)
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil {
			log.Warn("pull request number out of range, skipping", "ref", ref.Ref)
			continue
		}

		released, err := isAncestorOfProduction(ctx, ref.SHA)
		if err != nil {
			return nil, fmt.Errorf("ancestor check for #%d (%s) failed: %w", number, ref.SHA, err)
		}
		if released {
			log.Debug("pull request already released, excluding", "number", number, "sha", ref.SHA)
			continue
		}

		// Each number should map to exactly one head ref; if the remote
		// reports duplicates, the first occurrence wins.
		if seen[number] {
			continue
		}
		seen[number] = true
		numbers = append(numbers, number)
	}

	return numbers, nil
}
