package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/boshu2/safety-net/internal/config"
	"github.com/boshu2/safety-net/internal/policy"
	"github.com/boshu2/safety-net/internal/rules"
	"github.com/boshu2/safety-net/internal/safety"
)

var (
	// Global flags
	verbose    bool
	output     string
	cfgFile    string
	policyFile string
	noColor    bool
)

// rootCmd represents the base command when called without any subcommands.
// With no subcommand it runs the hook.
var rootCmd = &cobra.Command{
	Use:   "safety-net",
	Short: "Git command safety gate for coding agents",
	Long: `safety-net inspects shell commands before an agent runs them and blocks
destructive git operations: force pushes, hard resets, forced branch
deletion, stash drops, forced cleans, and path checkouts or restores.

Run without a subcommand (or as "safety-net hook") it reads a PreToolUse
request on stdin and exits 0 to allow or 2 to block.

Commands:
  hook         Evaluate a hook request from stdin
  check        Evaluate commands against the effective policy
  explain      Show how a command is parsed and which rule it hits
  status       Show the effective policy and where it came from
  rules        List the destructive command rules
  config       Show resolved tool configuration

Policy sources (first usable wins):
  $SAFETY_NET_POLICY_PATH
  <cwd>/.safety-net/effective_policy.json
  <user cache>/safety-net/org_config.json
  built-in default (block mode, every rule enabled)`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		syncFlagsToEnv()
	},
	RunE: runRoot,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err, os.Stderr))
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "Output format (table, json, yaml, jsonl, markdown)")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: .safety-net/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&policyFile, "policy", "", "Policy file (sets "+policy.EnvPolicyPath+")")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable styled output")
}

// exitError carries a process exit status out of a RunE.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// exitCode maps a command error to a process exit status, printing anything
// that is not a plain exit request.
func exitCode(err error, stderr io.Writer) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	fmt.Fprintln(stderr, "Error:", err)
	return 1
}

// runRoot runs the hook, unless stdin is a terminal: nobody types hook JSON
// by hand, so show help instead of waiting.
func runRoot(cmd *cobra.Command, args []string) error {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(f.Fd()) {
		return cmd.Help()
	}
	return runHook(cmd, args)
}

func syncFlagsToEnv() {
	if path := strings.TrimSpace(cfgFile); path != "" {
		_ = os.Setenv(config.EnvConfig, path)
	}
	if path := strings.TrimSpace(policyFile); path != "" {
		_ = os.Setenv(policy.EnvPolicyPath, path)
	}
}

// settings is the per-invocation configuration shared by the subcommands.
type settings struct {
	cfg    *config.Config
	logger *slog.Logger
}

// loadSettings resolves tool configuration. On invalid values the returned
// settings hold defaults and the validation error is returned alongside, so
// the hook can keep running while interactive commands report it.
func loadSettings(errOut io.Writer) (*settings, error) {
	cfg, err := config.Load(&config.Config{Output: output, Verbose: verbose, NoColor: noColor})
	logger := newLogger(errOut, cfg.Verbose)
	if err != nil {
		logger.Warn("invalid configuration, using defaults", "error", err)
		def := config.Default()
		def.Verbose = cfg.Verbose
		def.NoColor = cfg.NoColor
		return &settings{cfg: def, logger: logger}, fmt.Errorf("load config: %w", err)
	}
	return &settings{cfg: cfg, logger: logger}, nil
}

// newLogger returns a debug-level text logger on w, or a discarding logger
// when verbose is off so stderr carries only the verdict.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (s *settings) engineOptions() safety.Options {
	return safety.Options{
		MaxDepth:         s.cfg.Analysis.MaxDepth,
		DepthLimit:       safety.ParseDepthLimitAction(s.cfg.Analysis.DepthLimit),
		Rules:            rules.Options{Clusters: rules.ParseClusterMode(s.cfg.Analysis.ForceClusters)},
		MaxMessageLength: s.cfg.Redact.MaxLength,
	}
}

func (s *settings) resolvePolicy(ctx context.Context, workDir string) policy.Resolution {
	r := policy.NewResolver(workDir)
	r.Logger = s.logger
	return r.Resolve(ctx)
}

func (s *settings) engine() *safety.Engine {
	return safety.NewEngine(s.engineOptions(), s.resolvePolicy, s.logger)
}

// styled reports whether human output to w should carry ANSI styling.
func (s *settings) styled(w io.Writer) bool {
	if s.cfg.NoColor {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(f.Fd())
}

// commandContext returns cmd's context, or Background when the command was
// invoked directly rather than through Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// workDir returns dir, or the process working directory when dir is empty.
func workDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	return wd, nil
}
