package shell

import "strings"

// shells are interpreters whose -c argument is itself a command line.
var shells = map[string]bool{
	"bash": true,
	"sh":   true,
	"zsh":  true,
	"dash": true,
	"ksh":  true,
}

// Extract returns every command that raw would run, in order, unwrapping
// nested shell invocations up to maxDepth levels. A maxDepth below zero means
// DefaultMaxDepth.
func Extract(raw string, maxDepth int) []NormalizedCommand {
	if maxDepth < 0 {
		maxDepth = DefaultMaxDepth
	}
	return extract(raw, 0, maxDepth)
}

func extract(raw string, depth, maxDepth int) []NormalizedCommand {
	var out []NormalizedCommand
	for _, sc := range simpleCommands(raw) {
		cmds := resolve(sc, depth, maxDepth)
		for i := range cmds {
			if cmds[i].Depth == depth {
				cmds[i].Segment = sc.Segment.Text
				cmds[i].Op = sc.Segment.Op
			}
		}
		out = append(out, cmds...)
	}
	return out
}

// Resolve normalizes one segment's tokens found at the given depth. Shell
// invocations carrying a command string are expanded recursively; once
// depth+1 would exceed maxDepth the invocation is returned literally with
// AtDepthLimit set.
func Resolve(tokens []string, depth, maxDepth int) []NormalizedCommand {
	return resolve(simpleCommand{Words: tokens}, depth, maxDepth)
}

func resolve(sc simpleCommand, depth, maxDepth int) []NormalizedCommand {
	stripped := StripWrappers(sc.Words)
	if len(stripped) == 0 {
		return nil
	}

	inner, ok := ShellCommandString(stripped)
	if !ok && sc.HasStdin && shellReadsStdin(stripped) {
		inner, ok = sc.Stdin, true
	}
	if !ok {
		return []NormalizedCommand{Normalize(stripped, depth)}
	}
	if depth+1 > maxDepth {
		cmd := Normalize(stripped, depth)
		cmd.AtDepthLimit = true
		return []NormalizedCommand{cmd}
	}
	return extract(inner, depth+1, maxDepth)
}

// shellLongValueOptions are long shell options whose value is the next token.
var shellLongValueOptions = map[string]bool{
	"--rcfile":    true,
	"--init-file": true,
}

// shellOptionTakesValue reports whether a short option cluster ends in an
// option that consumes the next token (-o/+o OPT, -O/+O SHOPT).
func shellOptionTakesValue(t string) bool {
	if len(t) < 2 {
		return false
	}
	last := t[len(t)-1]
	return last == 'o' || last == 'O'
}

// ShellCommandString returns the command string passed to a shell with -c.
// Combined clusters such as -lc or -ec count, and options that take a value
// (-o, +o, -O, +O, --rcfile, --init-file) are skipped.
func ShellCommandString(tokens []string) (string, bool) {
	if len(tokens) < 2 || !shells[baseName(tokens[0])] {
		return "", false
	}

	hasC := false
	for i := 1; i < len(tokens); i++ {
		t := tokens[i]
		switch {
		case t == "--" || t == "-":
			if hasC && i+1 < len(tokens) {
				return tokens[i+1], true
			}
			return "", false
		case strings.HasPrefix(t, "--"):
			if shellLongValueOptions[t] {
				i++
			}
		case strings.HasPrefix(t, "-") || strings.HasPrefix(t, "+"):
			if t[0] == '-' && strings.IndexByte(t[1:], 'c') >= 0 {
				hasC = true
			}
			if shellOptionTakesValue(t) {
				i++
			}
		default:
			if hasC {
				return t, true
			}
			return "", false
		}
	}
	return "", false
}

// shellReadsStdin reports whether tokens run a shell that takes its script
// from standard input: no -c and no script operand, or an explicit -s.
func shellReadsStdin(tokens []string) bool {
	if len(tokens) == 0 || !shells[baseName(tokens[0])] {
		return false
	}
	for i := 1; i < len(tokens); i++ {
		t := tokens[i]
		switch {
		case t == "-" || t == "-s":
			return true
		case t == "--":
			return i+1 >= len(tokens)
		case strings.HasPrefix(t, "--"):
			if shellLongValueOptions[t] {
				i++
			}
		case strings.HasPrefix(t, "-") || strings.HasPrefix(t, "+"):
			if t[0] == '-' && strings.IndexByte(t[1:], 'c') >= 0 {
				return false
			}
			if t[0] == '-' && strings.IndexByte(t[1:], 's') >= 0 {
				return true
			}
			if shellOptionTakesValue(t) {
				i++
			}
		default:
			return false
		}
	}
	return true
}
