package main

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/syntax"

	"github.com/boshu2/safety-net/internal/policy"
	"github.com/boshu2/safety-net/internal/redact"
	"github.com/boshu2/safety-net/internal/rules"
	"github.com/boshu2/safety-net/internal/safety"
	"github.com/boshu2/safety-net/internal/shell"
)

var explainCwd string

var explainCmd = &cobra.Command{
	Use:   "explain <command>",
	Short: "Show how a command is parsed and which rule it hits",
	Long: `Break a shell command down the way the gate sees it: the segments it is
split into, the command found in each after wrappers and nested shells are
removed, the git subcommand and arguments, and the rule each one triggers.

Use it to understand a block or a missed match.

Examples:
  safety-net explain 'sudo bash -c "git push -f"'
  safety-net explain 'echo hi && git -C /repo branch -D main' -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExplain,
}

func init() {
	rootCmd.AddCommand(explainCmd)
	explainCmd.Flags().StringVar(&explainCwd, "cwd", "", "Working directory the command runs in (default: current directory)")
}

type explainedCommand struct {
	shell.NormalizedCommand `yaml:",inline"`
	Shell                   string      `json:"shell" yaml:"shell"`
	Guarded                 bool        `json:"guarded" yaml:"guarded"`
	Match                   *rules.Rule `json:"match,omitempty" yaml:"match,omitempty"`
	Enabled                 bool        `json:"enabled" yaml:"enabled"`
}

type explainOutput struct {
	Command  string             `json:"command" yaml:"command"`
	Segments []shell.Segment    `json:"segments" yaml:"segments"`
	Commands []explainedCommand `json:"commands" yaml:"commands"`
	Policy   policy.Tier        `json:"policy" yaml:"policy"`
	Mode     policy.Mode        `json:"mode" yaml:"mode"`
	Verdict  safety.Verdict     `json:"verdict" yaml:"verdict"`
}

func runExplain(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	wd, err := workDir(explainCwd)
	if err != nil {
		return err
	}

	raw := strings.Join(args, " ")
	opts := s.engineOptions()
	res := s.resolvePolicy(commandContext(cmd), wd)

	out := explainOutput{
		Command:  redact.Secrets(raw),
		Segments: shell.Segments(raw),
		Policy:   res.Source,
		Mode:     res.Policy.Mode,
		Verdict:  safety.NewEngine(opts, nil, s.logger).Evaluate(safety.RawCommand{Command: raw, WorkDir: wd}, res.Policy),
	}
	for i := range out.Segments {
		out.Segments[i].Text = redact.Secrets(out.Segments[i].Text)
	}
	// Commands are listed individually below.
	out.Verdict.Matches = nil
	guarded := rules.Subcommands()
	for _, c := range shell.Extract(raw, opts.MaxDepth) {
		ec := explainedCommand{
			Shell:   redact.Secrets(quoteTokens(c.Tokens)),
			Guarded: c.IsGit() && slices.Contains(guarded, c.Subcommand),
		}
		if m := rules.Analyze(c, opts.Rules); m != nil {
			r := m.Rule
			ec.Match = &r
			ec.Enabled = res.Policy.Enabled(r.Toggle)
		}
		ec.NormalizedCommand = redactCommand(c)
		out.Commands = append(out.Commands, ec)
	}

	w := cmd.OutOrStdout()
	if ok, err := writeStructured(w, s.cfg.Output, out); ok {
		return err
	}
	if s.cfg.Output != "table" {
		return fmt.Errorf("explain does not support output format %q", s.cfg.Output)
	}
	printExplain(w, &out, newPalette(s.styled(w)))
	return nil
}

// redactCommand returns a copy of c with secrets masked in every text field.
func redactCommand(c shell.NormalizedCommand) shell.NormalizedCommand {
	c.Args = redactAll(c.Args)
	c.Tokens = redactAll(c.Tokens)
	c.Segment = redact.Secrets(c.Segment)
	return c
}

func redactAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = redact.Secrets(s)
	}
	return out
}

// quoteTokens renders tokens as a command line that a shell would split back
// into the same tokens.
func quoteTokens(tokens []string) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		q, err := syntax.Quote(t, syntax.LangBash)
		if err != nil {
			q = strconv.Quote(t)
		}
		parts[i] = q
	}
	return strings.Join(parts, " ")
}

func printExplain(w io.Writer, out *explainOutput, p palette) {
	fmt.Fprintf(w, "%s %s\n\n", p.Label("Command:"), out.Command)

	fmt.Fprintln(w, p.Label("Segments"))
	for i, seg := range out.Segments {
		op := seg.Op
		if op == shell.OpNone {
			op = "start"
		}
		fmt.Fprintf(w, "  [%d] %-6s %s\n", i, p.Dim(string(op)), seg.Text)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Label("Commands"))
	for _, c := range out.Commands {
		fmt.Fprintf(w, "  depth %d  %s\n", c.Depth, c.Shell)
		if c.AtDepthLimit {
			fmt.Fprintln(w, "           "+p.Dim("nesting limit reached; evaluated as written"))
		}
		if c.IsGit() {
			note := ""
			if !c.Guarded {
				note = " " + p.Dim("(no rules)")
			}
			fmt.Fprintf(w, "           git %s %s%s\n", p.Dim("subcommand:"), c.Subcommand, note)
		}
		if c.Match != nil {
			state := "enabled"
			if !c.Enabled {
				state = "disabled by policy"
			}
			fmt.Fprintf(w, "           %s %s (%s, %s)\n", p.Dim("rule:"), c.Match.ID, c.Match.Toggle, state)
			if d := policy.Describe(c.Match.Toggle); d != "" {
				fmt.Fprintf(w, "           %s %s\n", p.Dim("guards:"), d)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %s (policy: %s, mode %s)\n", p.Label("Verdict:"), p.Outcome(out.Verdict.Outcome.String()), out.Policy, out.Mode)
	if out.Verdict.Message != "" {
		fmt.Fprintln(w, out.Verdict.Message)
	}
}
