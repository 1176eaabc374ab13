package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/boshu2/safety-net/internal/formatter"
	"github.com/boshu2/safety-net/internal/rules"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the destructive command rules",
	Long: `List every rule the gate enforces, in tie-break order.

Each rule belongs to one git subcommand and is switched by one policy key
(block_*). The depth_limit rule applies only when analysis.depth_limit is
"block".

Examples:
  safety-net rules
  safety-net rules -o yaml`,
	Args: cobra.NoArgs,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	all := append(rules.All(), rules.DepthLimitRule)
	w := cmd.OutOrStdout()
	if ok, err := writeStructured(w, s.cfg.Output, all); ok {
		return err
	}
	if s.cfg.Output != "table" {
		return fmt.Errorf("rules does not support output format %q", s.cfg.Output)
	}
	return printRules(w, all)
}

func printRules(w io.Writer, all []rules.Rule) error {
	tbl := formatter.NewTable(w, "ID", "SUBCOMMAND", "POLICY KEY", "RISK", "EXAMPLE", "SAFE ALTERNATIVE")
	tbl.SetMaxWidth(4, 36)
	for _, r := range all {
		sub, key := r.Subcommand, r.Toggle
		if sub == "" {
			sub = "-"
		}
		if key == "" {
			key = "analysis.depth_limit"
		}
		tbl.AddRow(r.ID, sub, key, string(r.Risk), r.Example, r.Alternative)
	}
	return tbl.Render()
}
