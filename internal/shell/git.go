package shell

import "strings"

// gitGlobalOptions maps git's options that may precede the subcommand to the
// number of following tokens each consumes.
var gitGlobalOptions = map[string]int{
	"-C":             1,
	"-c":             1,
	"--git-dir":      1,
	"--work-tree":    1,
	"--namespace":    1,
	"--super-prefix": 1,
	"--config-env":   1,

	"-p":                   0,
	"-P":                   0,
	"--paginate":           0,
	"--no-pager":           0,
	"--bare":               0,
	"--no-replace-objects": 0,
	"--no-lazy-fetch":      0,
	"--literal-pathspecs":  0,
	"--glob-pathspecs":     0,
	"--noglob-pathspecs":   0,
	"--icase-pathspecs":    0,
	"--no-optional-locks":  0,
	"--no-advice":          0,
	"--exec-path":          0,
	"--html-path":          0,
	"--man-path":           0,
	"--info-path":          0,
}

// Normalize builds a NormalizedCommand from wrapper-stripped tokens. For git
// it skips global options to locate the subcommand.
func Normalize(tokens []string, depth int) NormalizedCommand {
	cmd := NormalizedCommand{Tokens: tokens, Depth: depth, Args: []string{}}
	if len(tokens) == 0 {
		return cmd
	}

	cmd.Name = baseName(tokens[0])
	if !cmd.IsGit() {
		cmd.Args = tokens[1:]
		return cmd
	}

	i := 1 + skipGitGlobalOptions(tokens[1:])
	if i < len(tokens) {
		cmd.Subcommand = tokens[i]
		cmd.Args = tokens[i+1:]
	}
	return cmd
}

// skipGitGlobalOptions returns the number of leading tokens that are git
// global options or their values.
func skipGitGlobalOptions(args []string) int {
	i := 0
	for i < len(args) {
		a := args[i]
		if n, ok := gitGlobalOptions[a]; ok {
			i += 1 + n
			continue
		}
		if name, _, found := strings.Cut(a, "="); found && strings.HasPrefix(a, "--") {
			if _, ok := gitGlobalOptions[name]; ok {
				i++
				continue
			}
		}
		break
	}
	return min(i, len(args))
}
