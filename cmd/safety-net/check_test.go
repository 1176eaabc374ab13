package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/boshu2/safety-net/internal/formatter"
	"github.com/boshu2/safety-net/internal/hook"
)

func TestRunCheck_Table(t *testing.T) {
	isolateCLI(t)
	cmd, out, _ := newTestCommand("")

	err := runCheck(cmd, []string{"git status", "git push --force origin main", "git clean -n"})
	if err != nil {
		t.Fatalf("runCheck() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{"OUTCOME", "force_push", "git status", "3 checked: 1 blocked, 0 warned, 2 allowed"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestRunCheck_ExitCode(t *testing.T) {
	isolateCLI(t)
	checkExitCode = true

	cmd, _, _ := newTestCommand("")
	err := runCheck(cmd, []string{"git reset --hard"})
	var ee *exitError
	if !errors.As(err, &ee) || ee.code != hook.ExitBlock {
		t.Errorf("runCheck() error = %v, want exit status %d", err, hook.ExitBlock)
	}

	cmd, _, _ = newTestCommand("")
	if err := runCheck(cmd, []string{"git reset --soft HEAD~1"}); err != nil {
		t.Errorf("runCheck() on safe command error = %v, want nil", err)
	}
}

func TestRunCheck_JSONLFromStdin(t *testing.T) {
	tmp := isolateCLI(t)
	writeWorkspacePolicy(t, tmp, `{"action":"warn"}`)
	output = "jsonl"

	stdin := "# comment\ngit stash drop\n\ngit log --oneline\n"
	cmd, out, _ := newTestCommand(stdin)
	if err := runCheck(cmd, nil); err != nil {
		t.Fatalf("runCheck() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d:\n%s", len(lines), out.String())
	}

	var first, second formatter.VerdictRecord
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("line 0 not JSON: %v", err)
	}
	if err := json.Unmarshal([]byte(lines[1]), &second); err != nil {
		t.Fatalf("line 1 not JSON: %v", err)
	}
	if first.Outcome != "warn" || first.RuleID != "stash_drop" {
		t.Errorf("first = %+v, want warn/stash_drop", first)
	}
	if first.Policy != "workspace" {
		t.Errorf("first.Policy = %q, want workspace", first.Policy)
	}
	if second.Outcome != "allow" || second.Index != 1 {
		t.Errorf("second = %+v, want allow at index 1", second)
	}
}

func TestRunCheck_File(t *testing.T) {
	tmp := isolateCLI(t)
	path := filepath.Join(tmp, "commands.txt")
	if err := os.WriteFile(path, []byte("git checkout -- main.go\ngit checkout main\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	checkFile = path
	output = "json"

	cmd, out, _ := newTestCommand("")
	if err := runCheck(cmd, nil); err != nil {
		t.Fatalf("runCheck() error = %v", err)
	}

	var records []formatter.VerdictRecord
	if err := json.Unmarshal(out.Bytes(), &records); err != nil {
		t.Fatalf("output not JSON: %v\n%s", err, out.String())
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].RuleID != "checkout_path" {
		t.Errorf("records[0].RuleID = %q, want checkout_path", records[0].RuleID)
	}
	if records[1].Outcome != "allow" {
		t.Errorf("records[1].Outcome = %q, want allow", records[1].Outcome)
	}
}

func TestRunCheck_Errors(t *testing.T) {
	isolateCLI(t)

	cmd, _, _ := newTestCommand("\n# only comments\n")
	if err := runCheck(cmd, nil); err == nil {
		t.Error("expected error for empty input")
	}

	checkFile = "commands.txt"
	cmd, _, _ = newTestCommand("")
	if err := runCheck(cmd, []string{"git status"}); err == nil {
		t.Error("expected error for args with --file")
	}

	checkFile = ""
	output = "markdown"
	cmd, _, _ = newTestCommand("")
	if err := runCheck(cmd, []string{"git status"}); err == nil {
		t.Error("expected error for unsupported output format")
	}
}

func TestReadCommands(t *testing.T) {
	got, err := readCommands(strings.NewReader("  git status  \n#skip\n\r\ngit log\n"))
	if err != nil {
		t.Fatalf("readCommands() error = %v", err)
	}
	if len(got) != 2 || got[0] != "git status" || got[1] != "git log" {
		t.Errorf("readCommands() = %q, want [git status git log]", got)
	}
}
