package formatter

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/boshu2/safety-net/internal/policy"
)

// MarkdownFormatter outputs a policy status report as markdown.
type MarkdownFormatter struct {
	// ShowAttempts includes the per-tier resolution table.
	ShowAttempts bool
}

// NewMarkdownFormatter creates a markdown formatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{ShowAttempts: true}
}

// Format writes the status as markdown.
func (mf *MarkdownFormatter) Format(w io.Writer, status *policy.Status) error {
	tmpl, err := template.New("status").Funcs(mf.templateFuncs()).Parse(markdownTemplate)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}

	data := struct {
		*policy.Status
		ShowAttempts bool
	}{status, mf.ShowAttempts}

	return tmpl.Execute(w, data)
}

// Extension returns the file extension for markdown.
func (mf *MarkdownFormatter) Extension() string {
	return ".md"
}

// templateFuncs returns custom template functions.
func (mf *MarkdownFormatter) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"code": func(s string) string {
			return "`" + strings.ReplaceAll(s, "`", "'") + "`"
		},
		"check": func(b bool) string {
			if b {
				return "on"
			}
			return "off"
		},
		"orDash": func(s string) string {
			if s == "" {
				return "-"
			}
			return s
		},
		"cell": func(s string) string {
			return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
		},
	}
}

const markdownTemplate = `# Safety Net Status

**Version:** {{ .Version }}
**Mode:** {{ .Mode }}
**Policy source:** {{ .Source }}{{ if .Path }} ({{ code .Path }}){{ end }}

## Rules

| Toggle | Guards | State |
|--------|--------|-------|
{{- range .Rules }}
| {{ code .Key }} | {{ cell .Description }} | {{ check .Enabled }} |
{{- end }}

## Blocked Commands

| Command | Rule | Safe alternative |
|---------|------|------------------|
{{- range .Blocked }}
| {{ code .Command }} | {{ .RuleID }} | {{ cell .Alternative }} |
{{- end }}

## Always Allowed

{{- range .Allowed }}
- {{ code . }}
{{- end }}

{{- if .ShowAttempts }}

## Policy Resolution

| Tier | Path | Result |
|------|------|--------|
{{- range .Attempts }}
| {{ .Tier }} | {{ orDash .Path }} | {{ if .Used }}used{{ else }}{{ cell .Error }}{{ end }} |
{{- end }}
{{- end }}
`
