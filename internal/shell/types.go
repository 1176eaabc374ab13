// Package shell recovers the commands a shell would actually run from a raw
// command line: it splits on control operators, tokenizes each segment with
// POSIX quoting rules, strips benign wrappers such as sudo and env, and
// unwraps nested `bash -c` invocations up to a bounded depth.
//
// Nothing in this package returns an error. Malformed input degrades to the
// most literal reading available so that callers always get something to
// analyze.
package shell

// DefaultMaxDepth is the number of nested shell invocations that are unwrapped
// before the remaining text is analyzed literally.
const DefaultMaxDepth = 3

// Operator is the control operator that precedes a segment.
type Operator string

const (
	OpNone       Operator = ""
	OpSequence   Operator = ";"
	OpAnd        Operator = "&&"
	OpOr         Operator = "||"
	OpPipe       Operator = "|"
	OpPipeStderr Operator = "|&"
	OpBackground Operator = "&"
	OpNewline    Operator = "\\n"
)

// Segment is one independently executed piece of a command line.
type Segment struct {
	Text string   `json:"text" yaml:"text"`
	Op   Operator `json:"op,omitempty" yaml:"op,omitempty"`
}

// NormalizedCommand is a token sequence after wrapper stripping and, for git,
// global option skipping.
type NormalizedCommand struct {
	// Name is the basename of the executable ("git" for /usr/bin/git).
	Name string `json:"name" yaml:"name"`

	// Subcommand is the git subcommand. Empty for non-git commands or a bare
	// `git` with no subcommand.
	Subcommand string `json:"subcommand,omitempty" yaml:"subcommand,omitempty"`

	// Args are the tokens after the subcommand (git) or after the
	// executable (anything else).
	Args []string `json:"args" yaml:"args"`

	// Tokens is the full sequence after wrapper stripping.
	Tokens []string `json:"tokens" yaml:"tokens"`

	// Depth is the shell nesting level at which the command was found.
	Depth int `json:"depth" yaml:"depth"`

	// AtDepthLimit is set when the command is a shell invocation that was
	// not unwrapped because the depth limit was reached.
	AtDepthLimit bool `json:"at_depth_limit,omitempty" yaml:"at_depth_limit,omitempty"`

	// Segment and Op describe where the command came from.
	Segment string   `json:"segment" yaml:"segment"`
	Op      Operator `json:"op,omitempty" yaml:"op,omitempty"`
}

// IsGit reports whether the command invokes git.
func (c NormalizedCommand) IsGit() bool {
	return c.Name == "git"
}

// baseName strips any directory prefix from an executable token.
func baseName(tok string) string {
	for i := len(tok) - 1; i >= 0; i-- {
		if tok[i] == '/' {
			return tok[i+1:]
		}
	}
	return tok
}
