package release

import (
	"fmt"
	"regexp"
)

// checklistRegexp matches the head of a checklist line: "- [ ] " or "- [x] ",
// with the mark matched case-insensitively.
var checklistRegexp = regexp.MustCompile(`^- \[( |x|X)\] `)

// IsChecklistLine reports whether line starts with a checklist checkbox.
func IsChecklistLine(line string) bool {
	return checklistRegexp.MatchString(line)
}

// IsChecked reports whether line is a checklist line with its box marked.
func IsChecked(line string) bool {
	m := checklistRegexp.FindStringSubmatch(line)
	return m != nil && m[1] != " "
}

// FormatChecklistLine renders the unchecked checklist line for a pull
// request: "- [ ] #12 Title @login". The mention suffix is omitted when no
// assignee or author login is known.
func FormatChecklistLine(pr *PullRequest) string {
	line := fmt.Sprintf("- [ ] #%d %s", pr.Number, pr.Title)
	if login := pr.MentionLogin(); login != "" {
		line += " @" + login
	}
	return line
}
