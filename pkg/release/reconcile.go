package release

import (
	"regexp"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/git-pr-release/git-pr-release/pkg/log"
)

// lineSplitRegexp tolerates CRLF bodies as stored by the hosting API.
var lineSplitRegexp = regexp.MustCompile(`\r?\n`)

// Reconcile merges a freshly rendered body with the previous body of the
// release pull request, preserving human edits:
//
//   - lines both sides agree on, and lines only the new body has, are taken
//     from the new body;
//   - lines only the old body has are kept (manually added content);
//   - where a line was replaced and both versions are checklist lines, the
//     old line wins, so checked boxes stay checked;
//   - any other replacement keeps both versions, old line first.
//
// Reconciling a body against itself returns it unchanged.
func Reconcile(oldBody, newBody string) string {
	oldLines := lineSplitRegexp.Split(oldBody, -1)
	newLines := lineSplitRegexp.Split(newBody, -1)

	var merged []string
	for _, op := range difflib.NewMatcher(oldLines, newLines).GetOpCodes() {
		switch op.Tag {
		case 'e', 'i':
			merged = append(merged, newLines[op.J1:op.J2]...)
		case 'd':
			merged = append(merged, oldLines[op.I1:op.I2]...)
		case 'r':
			merged = append(merged, reconcileReplaced(oldLines[op.I1:op.I2], newLines[op.J1:op.J2])...)
		default:
			log.Warn("unexpected diff opcode, skipping hunk", "tag", string(op.Tag))
		}
	}

	return strings.Join(merged, "\n")
}

// reconcileReplaced applies the changed-pair policy position by position.
// Hunks of unequal length leave unpaired old lines behaving as deletions and
// unpaired new lines as insertions.
func reconcileReplaced(oldLines, newLines []string) []string {
	var out []string
	n := len(oldLines)
	if len(newLines) > n {
		n = len(newLines)
	}

	for i := 0; i < n; i++ {
		switch {
		case i >= len(newLines):
			out = append(out, oldLines[i])
		case i >= len(oldLines):
			out = append(out, newLines[i])
		case IsChecklistLine(oldLines[i]) && IsChecklistLine(newLines[i]):
			// Checkbox-state change only: the human's mark wins.
			out = append(out, oldLines[i])
		default:
			out = append(out, oldLines[i], newLines[i])
		}
	}

	return out
}
