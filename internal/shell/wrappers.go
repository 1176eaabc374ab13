package shell

import "strings"

// maxWrapperChain bounds wrapper stripping so that pathological inputs such
// as `env -S 'env -S ...'` cannot loop for long.
const maxWrapperChain = 32

// wrapperSkipper consumes a wrapper's own options and returns the tokens of
// the command it runs.
type wrapperSkipper func(args []string) []string

// wrappers are executables that run another command without changing what
// that command does to the repository.
var wrappers = map[string]wrapperSkipper{
	"sudo":    skipSudo,
	"doas":    skipDoas,
	"env":     skipEnv,
	"command": skipCommandBuiltin,
	"exec":    skipExec,
	"nice":    skipNice,
	"nohup":   skipNohup,
	"time":    skipTime,
	"timeout": skipTimeout,
	"xargs":   skipXargs,
}

// StripWrappers removes leading environment assignments and any chain of
// known wrappers, returning the tokens of the command that actually runs.
func StripWrappers(tokens []string) []string {
	rest := skipAssignments(tokens)
	for n := 0; n < maxWrapperChain && len(rest) > 0; n++ {
		skip, ok := wrappers[baseName(rest[0])]
		if !ok {
			break
		}
		rest = skipAssignments(skip(rest[1:]))
	}
	return rest
}

// isAssignment reports whether tok has the shape NAME=value.
func isAssignment(tok string) bool {
	eq := strings.IndexByte(tok, '=')
	if eq <= 0 {
		return false
	}
	for i := 0; i < eq; i++ {
		c := tok[i]
		switch {
		case c == '_', c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

func skipAssignments(tokens []string) []string {
	i := 0
	for i < len(tokens) && isAssignment(tokens[i]) {
		i++
	}
	return tokens[i:]
}

// valueOption scans a short option cluster such as "-Eu" for the first
// letter in letters. It returns that letter, a value attached in the same
// token ("-uroot"), and whether the value is instead the next token.
func valueOption(tok, letters string) (letter byte, attached string, needsNext bool) {
	for j := 1; j < len(tok); j++ {
		if strings.IndexByte(letters, tok[j]) >= 0 {
			if j+1 < len(tok) {
				return tok[j], tok[j+1:], false
			}
			return tok[j], "", true
		}
	}
	return 0, "", false
}

// skipOptions returns the index of the first non-option token. shortValue
// lists short option letters that take a value and longValue lists long
// options that take a value when not written as --name=value.
func skipOptions(args []string, shortValue string, longValue map[string]bool) int {
	i := 0
	for i < len(args) {
		a := args[i]
		if a == "--" {
			return i + 1
		}
		if len(a) < 2 || a[0] != '-' {
			return i
		}
		i++
		if strings.HasPrefix(a, "--") {
			if !strings.Contains(a, "=") && longValue[a] {
				i++
			}
			continue
		}
		if _, _, needsNext := valueOption(a, shortValue); needsNext {
			i++
		}
	}
	return min(i, len(args))
}

var sudoLongValue = map[string]bool{
	"--user": true, "--group": true, "--close-from": true, "--chdir": true,
	"--host": true, "--prompt": true, "--role": true, "--type": true,
	"--command-timeout": true, "--other-user": true, "--chroot": true,
}

func skipSudo(args []string) []string {
	return args[skipOptions(args, "ugCDhprRtTU", sudoLongValue):]
}

func skipDoas(args []string) []string {
	return args[skipOptions(args, "uC", nil):]
}

func skipEnv(args []string) []string {
	i := 0
	for i < len(args) {
		a := args[i]
		switch {
		case a == "--":
			return args[i+1:]
		case a == "-":
			i++
		case isAssignment(a):
			i++
		case a == "--split-string":
			if i+1 < len(args) {
				return append(Tokenize(args[i+1]), args[i+2:]...)
			}
			return nil
		case strings.HasPrefix(a, "--split-string="):
			return append(Tokenize(strings.TrimPrefix(a, "--split-string=")), args[i+1:]...)
		case a == "--unset" || a == "--chdir":
			i += 2
		case strings.HasPrefix(a, "--"):
			i++
		case strings.HasPrefix(a, "-"):
			letter, attached, needsNext := valueOption(a, "uCS")
			if letter == 'S' {
				if needsNext {
					if i+1 >= len(args) {
						return nil
					}
					return append(Tokenize(args[i+1]), args[i+2:]...)
				}
				return append(Tokenize(attached), args[i+1:]...)
			}
			i++
			if needsNext {
				i++
			}
		default:
			return args[i:]
		}
	}
	return nil
}

func skipCommandBuiltin(args []string) []string {
	return args[skipOptions(args, "", nil):]
}

func skipExec(args []string) []string {
	return args[skipOptions(args, "a", nil):]
}

func skipNice(args []string) []string {
	return args[skipOptions(args, "n", map[string]bool{"--adjustment": true}):]
}

func skipNohup(args []string) []string {
	if len(args) > 0 && args[0] == "--" {
		return args[1:]
	}
	return args
}

func skipTime(args []string) []string {
	return args[skipOptions(args, "fo", map[string]bool{"--format": true, "--output": true}):]
}

func skipTimeout(args []string) []string {
	i := skipOptions(args, "sk", map[string]bool{"--signal": true, "--kill-after": true})
	// The first operand is the duration.
	if i < len(args) {
		i++
	}
	return args[i:]
}

var xargsLongValue = map[string]bool{
	"--arg-file": true, "--delimiter": true, "--max-args": true, "--max-lines": true,
	"--max-procs": true, "--max-chars": true, "--process-slot-var": true, "--eof": true,
	"--replace": true,
}

func skipXargs(args []string) []string {
	return args[skipOptions(args, "adEIiLlnPs", xargsLongValue):]
}
