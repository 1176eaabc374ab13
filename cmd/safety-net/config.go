package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/boshu2/safety-net/internal/config"
	"github.com/boshu2/safety-net/internal/policy"
)

var (
	configShow bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show tool configuration",
	Long: `View safety-net tool configuration.

This is configuration of the tool itself (output, analysis tuning). The git
policy is shown by "safety-net status".

Configuration priority (highest to lowest):
  1. Command-line flags
  2. Environment variables (SAFETY_NET_*)
  3. Project config (.safety-net/config.yaml)
  4. Home config (~/.safety-net/config.yaml)
  5. Defaults

Environment variables:
  SAFETY_NET_CONFIG             - Explicit config file path (overrides project config location)
  SAFETY_NET_OUTPUT             - Default output format (table, json, yaml, jsonl, markdown)
  SAFETY_NET_VERBOSE            - Log diagnostics to stderr (true/1)
  SAFETY_NET_NO_COLOR           - Disable styled output (NO_COLOR is also honored)
  SAFETY_NET_MAX_DEPTH          - Nested shell levels unwrapped (default: 3)
  SAFETY_NET_DEPTH_LIMIT        - Past the depth limit: literal or block (default: literal)
  SAFETY_NET_FORCE_CLUSTERS     - Short flag clusters: any or documented (default: any)
  SAFETY_NET_MAX_MESSAGE_LENGTH - Message length bound in characters (default: 200)
  SAFETY_NET_CONCURRENCY        - check workers (default: number of CPUs)
  SAFETY_NET_POLICY_PATH        - Explicit policy file (see "safety-net status")

Examples:
  safety-net config --show           # Show resolved configuration
  safety-net config --show -o json   # Output as JSON`,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configShow, "show", false, "Show resolved configuration with sources")
}

// configEnvVars lists the variables echoed by config --show.
var configEnvVars = []string{
	config.EnvConfig,
	config.EnvOutput,
	config.EnvVerbose,
	config.EnvNoColor,
	config.EnvMaxDepth,
	config.EnvDepthLimit,
	config.EnvForceClusters,
	config.EnvMaxMessageLength,
	config.EnvConcurrency,
	policy.EnvPolicyPath,
	"NO_COLOR",
}

func runConfig(cmd *cobra.Command, args []string) error {
	if !configShow {
		// Show help if no flags
		return cmd.Help()
	}

	resolved := config.Resolve(output, verbose)
	w := cmd.OutOrStdout()

	format := fmt.Sprint(resolved.Output.Value)
	if ok, err := writeStructured(w, format, resolved); ok {
		return err
	}
	printConfig(w, resolved)
	return nil
}

func printConfig(w io.Writer, resolved *config.ResolvedConfig) {
	fmt.Fprintln(w, "Safety Net Configuration")
	fmt.Fprintln(w, "========================")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config files:")
	if home, err := os.UserHomeDir(); err == nil {
		printConfigFile(w, "Home:   ", filepath.Join(home, ".safety-net", "config.yaml"))
	}
	project := os.Getenv(config.EnvConfig)
	if project == "" {
		cwd, _ := os.Getwd()
		project = filepath.Join(cwd, ".safety-net", "config.yaml")
	}
	printConfigFile(w, "Project:", project)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Resolved values:")
	fmt.Fprintf(w, "  output:                    %v  (from %s)\n", resolved.Output.Value, resolved.Output.Source)
	fmt.Fprintf(w, "  verbose:                   %v  (from %s)\n", resolved.Verbose.Value, resolved.Verbose.Source)
	fmt.Fprintf(w, "  analysis.max_depth:        %v  (from %s)\n", resolved.MaxDepth.Value, resolved.MaxDepth.Source)
	fmt.Fprintf(w, "  analysis.depth_limit:      %v  (from %s)\n", resolved.DepthLimit.Value, resolved.DepthLimit.Source)
	fmt.Fprintf(w, "  analysis.force_clusters:   %v  (from %s)\n", resolved.ForceClusters.Value, resolved.ForceClusters.Source)
	fmt.Fprintf(w, "  redact.max_length:         %v  (from %s)\n", resolved.MaxMessageLength.Value, resolved.MaxMessageLength.Source)
	fmt.Fprintf(w, "  batch.concurrency:         %v  (from %s)\n", resolved.Concurrency.Value, resolved.Concurrency.Source)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables (if set):")
	anySet := false
	for _, env := range configEnvVars {
		if v := os.Getenv(env); v != "" {
			fmt.Fprintf(w, "  %s=%s\n", env, v)
			anySet = true
		}
	}
	if !anySet {
		fmt.Fprintln(w, "  (none set)")
	}
}

func printConfigFile(w io.Writer, label, path string) {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(w, "  ✓ %s %s\n", label, path)
	} else {
		fmt.Fprintf(w, "  ✗ %s %s (not found)\n", label, path)
	}
}
