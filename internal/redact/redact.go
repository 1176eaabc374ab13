// Package redact removes secrets from text before it is shown to a user or
// written to a log, and bounds its length.
package redact

import (
	"regexp"
	"unicode/utf8"
)

// DefaultMaxLength is the message length used when none is configured.
const DefaultMaxLength = 200

// Placeholder replaces generic secret values.
const Placeholder = "[REDACTED]"

// truncationMarker is appended to truncated text.
const truncationMarker = "..."

type pattern struct {
	re   *regexp.Regexp
	repl string
}

// patterns run in order; specific token formats come before the generic
// key=value rule so their labels survive.
var patterns = []pattern{
	{regexp.MustCompile(`://[^/\s:@]+:[^/\s@]+@`), "://[CREDENTIALS]@"},
	{regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{36,}\b`), "[GITHUB_TOKEN]"},
	{regexp.MustCompile(`\bgithub_pat_[A-Za-z0-9_]{22,}\b`), "[GITHUB_PAT]"},
	{regexp.MustCompile(`\b(?:AKIA|ASIA)[0-9A-Z]{16}\b`), "[AWS_KEY]"},
	{regexp.MustCompile(`\bxox[abprs]-[A-Za-z0-9-]{10,}\b`), "[SLACK_TOKEN]"},
	{regexp.MustCompile(`(?i)\b(bearer)\s+[A-Za-z0-9\-._~+/]{8,}=*`), "${1} " + Placeholder},
	{
		regexp.MustCompile(`(?i)\b([a-z0-9_\-]*(?:api[_\-]?key|token|secret|password|passwd|pwd|credential)s?)(\s*[=:]\s*)['"]?[^\s'"&;]{8,}['"]?`),
		"${1}${2}" + Placeholder,
	},
}

// Secrets replaces recognized secrets in s with placeholders.
func Secrets(s string) string {
	for _, p := range patterns {
		s = p.re.ReplaceAllString(s, p.repl)
	}
	return s
}

// Truncate shortens s to at most maxLen runes plus a marker. A maxLen of zero
// or less means DefaultMaxLength.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	n := 0
	for i := range s {
		if n == maxLen {
			return s[:i] + truncationMarker
		}
		n++
	}
	return s
}

// Sanitize redacts secrets and then truncates. Redacting first keeps a secret
// that straddles the cut from leaking its prefix.
func Sanitize(s string, maxLen int) string {
	return Truncate(Secrets(s), maxLen)
}
