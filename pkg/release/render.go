package release

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
)

// DefaultTemplate is the built-in body template. The first rendered line
// becomes the pull request title; the rest becomes the body.
const DefaultTemplate = `Release {{ .Now.Format "2006-01-02 15:04:05 -0700" }}
{{- range .PullRequests }}
{{ checklist . }}
{{- end }}
`

// TemplateData is the evaluation context exposed to body templates.
type TemplateData struct {
	// ReleasePullRequest is the release pull request being maintained, or the
	// absent sentinel when it does not exist yet.
	ReleasePullRequest Handle

	// PullRequests are the resolved merge-set records, in release order.
	PullRequests []*PullRequest

	// Now is the render time.
	Now time.Time
}

// Render evaluates a body template and splits the result at the first newline
// into a title and a body. Templates have the sprig function map plus
// "checklist", which formats a pull request as an unchecked checklist line.
// Rendering succeeds for an empty merge-set and for the absent sentinel.
func Render(templateText string, data TemplateData) (title, body string, err error) {
	tmpl, err := template.New("body").
		Funcs(sprig.TxtFuncMap()).
		Funcs(template.FuncMap{
			"checklist": func(pr *PullRequest) string { return FormatChecklistLine(pr) },
		}).
		Parse(templateText)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse body template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("failed to render body template: %w", err)
	}

	rendered := buf.String()
	title, body, _ = strings.Cut(rendered, "\n")
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "", fmt.Errorf("body template rendered an empty title")
	}

	return title, strings.TrimRight(body, "\n"), nil
}
