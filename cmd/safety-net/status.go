package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/boshu2/safety-net/internal/formatter"
	"github.com/boshu2/safety-net/internal/policy"
	"github.com/boshu2/safety-net/internal/rules"
)

var statusCwd string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the effective policy",
	Long: `Display the effective safety policy for a directory.

Shows:
  - Policy mode (block, warn, allow)
  - Which source supplied the policy, and why earlier sources were skipped
  - Enabled and disabled rules
  - Blocked commands with their safer alternatives
  - Commands that are always allowed

Examples:
  safety-net status
  safety-net status -o json
  safety-net status -o markdown --cwd ~/src/project`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().StringVar(&statusCwd, "cwd", "", "Directory whose workspace policy is used (default: current directory)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	wd, err := workDir(statusCwd)
	if err != nil {
		return err
	}

	res := s.resolvePolicy(commandContext(cmd), wd)
	status := policy.NewStatus(res, version, guardedCommands(res.Policy))

	w := cmd.OutOrStdout()
	if ok, err := writeStructured(w, s.cfg.Output, status); ok {
		return err
	}
	switch s.cfg.Output {
	case "markdown":
		return formatter.NewMarkdownFormatter().Format(w, &status)
	case "table":
		return printStatus(w, &status, newPalette(s.styled(w)))
	default:
		return fmt.Errorf("status does not support output format %q", s.cfg.Output)
	}
}

// guardedCommands lists each rule's example command and alternative with its
// state under p.
func guardedCommands(p policy.Policy) []policy.GuardedCommand {
	all := rules.All()
	out := make([]policy.GuardedCommand, 0, len(all))
	for _, r := range all {
		out = append(out, policy.GuardedCommand{
			Command:     r.Example,
			RuleID:      r.ID,
			Alternative: r.Alternative,
			Enabled:     p.Enabled(r.Toggle),
		})
	}
	return out
}

func printStatus(w io.Writer, st *policy.Status, p palette) error {
	fmt.Fprintln(w, p.Title("Safety Net "+st.Version))
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s   %s\n", p.Label("Mode:"), p.Outcome(string(st.Mode)))
	source := string(st.Source)
	if st.Path != "" {
		source += " " + p.Dim("("+st.Path+")")
	}
	fmt.Fprintf(w, "%s %s\n", p.Label("Policy:"), source)
	if st.Mode == policy.ModeAllow {
		fmt.Fprintln(w, p.Dim("  allow mode: no command is checked"))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Label("Rules"))
	for _, r := range st.Rules {
		fmt.Fprintf(w, "  %-27s %s  %s\n", r.Key, p.Toggle(r.Enabled), p.Dim(r.Description))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Label("Blocked commands"))
	tbl := formatter.NewTable(w, "COMMAND", "RULE", "STATE", "SAFE ALTERNATIVE")
	tbl.SetMaxWidth(0, 40)
	for _, g := range st.Blocked {
		state := "on"
		if !g.Enabled {
			state = "off"
		}
		tbl.AddRow(g.Command, g.RuleID, state, g.Alternative)
	}
	if err := tbl.Render(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Label("Always allowed"))
	fmt.Fprintln(w, "  "+strings.Join(st.Allowed, ", "))

	fmt.Fprintln(w)
	fmt.Fprintln(w, p.Label("Policy resolution"))
	for _, a := range st.Attempts {
		result := a.Error
		if a.Used {
			result = "used"
		}
		path := a.Path
		if path == "" {
			path = "-"
		}
		fmt.Fprintf(w, "  %-11s %s  %s\n", a.Tier, path, p.Dim(result))
	}
	return nil
}
