package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/boshu2/safety-net/internal/formatter"
	"github.com/boshu2/safety-net/internal/hook"
	"github.com/boshu2/safety-net/internal/safety"
	"github.com/boshu2/safety-net/internal/worker"
)

var (
	checkFile     string
	checkCwd      string
	checkExitCode bool
)

// maxCheckLine bounds one command line read from a batch file.
const maxCheckLine = 1 << 20

var checkCmd = &cobra.Command{
	Use:   "check [command...]",
	Short: "Evaluate commands against the effective policy",
	Long: `Evaluate one or more shell commands without running them.

Each argument is one command. With --file, commands are read one per line
("-" reads stdin); blank lines and lines starting with # are skipped. With
neither, commands are read from stdin.

The policy is resolved once for --cwd and commands are evaluated in parallel.
Results keep input order.

Examples:
  safety-net check 'git push --force origin main'
  safety-net check --file commands.txt -o jsonl
  history | cut -c8- | safety-net check --exit-code`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringVarP(&checkFile, "file", "f", "", `Read commands from a file, one per line ("-" for stdin)`)
	checkCmd.Flags().StringVar(&checkCwd, "cwd", "", "Working directory the commands run in (default: current directory)")
	checkCmd.Flags().BoolVar(&checkExitCode, "exit-code", false, "Exit 2 when any command is blocked")
}

func runCheck(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	wd, err := workDir(checkCwd)
	if err != nil {
		return err
	}

	commands, err := checkInput(cmd.InOrStdin(), args, checkFile)
	if err != nil {
		return err
	}
	if len(commands) == 0 {
		return fmt.Errorf("no commands to check")
	}

	ctx := commandContext(cmd)
	res := s.resolvePolicy(ctx, wd)
	engine := s.engine()

	pool := worker.NewPool[string, safety.Verdict](s.cfg.Batch.Concurrency)
	results := pool.Process(ctx, commands, func(_ context.Context, c string) (safety.Verdict, error) {
		return engine.Evaluate(safety.RawCommand{Command: c, WorkDir: wd}, res.Policy), nil
	})
	s.logger.Debug("batch evaluated", "commands", len(commands), "workers", pool.Concurrency(), "policy", res.Source)

	records := make([]*formatter.VerdictRecord, len(results))
	worst := safety.Allow
	for i, r := range results {
		records[i] = formatter.NewVerdictRecord(i, commands[i], r.Value, res.Source)
		if r.Err != nil {
			records[i].Error = r.Err.Error()
			// An unevaluated command is never reported as safe.
			records[i].Outcome = safety.Block.String()
			worst = safety.Block
			continue
		}
		worst = safety.Worse(worst, r.Value.Outcome)
	}

	if err := writeCheck(cmd.OutOrStdout(), s.cfg.Output, records); err != nil {
		return err
	}

	if checkExitCode && worst == safety.Block {
		return &exitError{code: hook.ExitBlock}
	}
	return nil
}

// checkInput collects commands from args, a file, or stdin.
func checkInput(stdin io.Reader, args []string, file string) ([]string, error) {
	if len(args) > 0 && file != "" {
		return nil, fmt.Errorf("pass commands as arguments or with --file, not both")
	}
	if len(args) > 0 {
		return args, nil
	}

	in := stdin
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open command file: %w", err)
		}
		defer f.Close()
		in = f
	}
	return readCommands(in)
}

func readCommands(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxCheckLine)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read commands: %w", err)
	}
	return out, nil
}

func writeCheck(w io.Writer, format string, records []*formatter.VerdictRecord) error {
	if ok, err := writeStructured(w, format, records); ok {
		return err
	}

	switch format {
	case "jsonl":
		jf := formatter.NewJSONLFormatter()
		for _, rec := range records {
			if err := jf.Format(w, rec); err != nil {
				return err
			}
		}
		return nil
	case "table":
		tbl := formatter.NewTable(w, "#", "OUTCOME", "RULE", "COMMAND")
		tbl.SetMaxWidth(3, 72)
		counts := map[string]int{}
		for _, rec := range records {
			counts[rec.Outcome]++
			tbl.AddRow(strconv.Itoa(rec.Index), rec.Outcome, rec.RuleID, rec.Command)
		}
		if err := tbl.Render(); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "\n%d checked: %d blocked, %d warned, %d allowed\n",
			len(records), counts["block"], counts["warn"], counts["allow"])
		return err
	default:
		return fmt.Errorf("check does not support output format %q", format)
	}
}
