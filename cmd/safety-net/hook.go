package main

import (
	"github.com/spf13/cobra"

	"github.com/boshu2/safety-net/internal/hook"
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Evaluate a PreToolUse hook request from stdin",
	Long: `Read one PreToolUse request as JSON on stdin and gate its command.

Only Bash tool requests are evaluated. The exit status is 0 when the command
may run (a warning may be printed to stderr) and 2 when it is blocked, with
the reason and a safer alternative on stderr.

Input that cannot be parsed is allowed with a warning.

Example hook configuration:
  {"hooks": {"PreToolUse": [{"matcher": "Bash",
    "hooks": [{"type": "command", "command": "safety-net hook"}]}]}}`,
	Args: cobra.NoArgs,
	RunE: runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func runHook(cmd *cobra.Command, args []string) error {
	// Config errors are already logged; the gate runs on defaults.
	s, _ := loadSettings(cmd.ErrOrStderr())

	h := &hook.Handler{Engine: s.engine(), Logger: s.logger}
	res := h.Handle(commandContext(cmd), cmd.InOrStdin())
	res.Write(cmd.ErrOrStderr())

	if res.ExitCode != hook.ExitAllow {
		return &exitError{code: res.ExitCode}
	}
	return nil
}
