package safety

import (
	"context"
	"strings"
	"testing"

	"github.com/boshu2/safety-net/internal/policy"
	"github.com/boshu2/safety-net/internal/rules"
)

func evaluate(raw string, p policy.Policy, opts Options) Verdict {
	return NewEngine(opts, nil, nil).Evaluate(RawCommand{Command: raw}, p)
}

func TestEvaluateDefaultPolicy(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantOutcome Outcome
		wantRule    string
		wantInMsg   string
	}{
		{"force push", "git push --force origin main", Block, rules.IDForcePush, "--force-with-lease"},
		{"chained reset", "echo hi && git reset --hard", Block, rules.IDResetHard, "git stash"},
		{"nested clean", `bash -c "git clean -fd"`, Block, rules.IDCleanForce, "git clean -n"},
		{"lease allowed", "git push --force-with-lease", Allow, "", ""},
		{"wrapped and path qualified", "sudo env A=1 /usr/bin/git -C /repo branch -D old", Block, rules.IDBranchForceDelete, "git branch -d"},
		{"quoted git", `g"i"t stash clear`, Block, rules.IDStashClear, "git stash list"},
		{"pipe", "git log | head && git checkout -- .", Block, rules.IDCheckoutPath, ""},
		{"safe chain", "git status; git diff && git log", Allow, "", ""},
		{"empty", "   ", Allow, "", ""},
		{"first match wins", "git clean -f; git push -f", Block, rules.IDCleanForce, ""},
		{"subshell", "(git push -f)", Block, rules.IDForcePush, ""},
		{"brace group", "{ git push -f; }", Block, rules.IDForcePush, ""},
		{"if body", "if true; then git push -f; fi", Block, rules.IDForcePush, ""},
		{"loop body", "for b in x; do git branch -D $b; done", Block, rules.IDBranchForceDelete, ""},
		{"negated", "! git push -f", Block, rules.IDForcePush, ""},
		{"command substitution", "echo $(git stash clear)", Block, rules.IDStashClear, ""},
		{"redirect glued to short flag", "git push -f>/dev/null", Block, rules.IDForcePush, ""},
		{"redirect glued to long flag", "git reset --hard>/dev/null", Block, rules.IDResetHard, ""},
		{"stderr redirect", "git push --force 2>/dev/null", Block, rules.IDForcePush, ""},
		{"shopt before -c", "bash -O extglob -c 'git push -f'", Block, rules.IDForcePush, ""},
		{"plus shopt before -c", "bash +O extglob -c 'git push -f'", Block, rules.IDForcePush, ""},
		{"here-document to shell", "bash <<'EOF'\ngit reset --hard\nEOF\n", Block, rules.IDResetHard, ""},
		{"here-document to cat", "cat <<'EOF'\ngit reset --hard\nEOF\n", Allow, "", ""},
		{"unparsable input still split", `git push -f>/dev/null; echo "open`, Block, rules.IDForcePush, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := evaluate(tt.raw, policy.Default(), DefaultOptions())
			if v.Outcome != tt.wantOutcome {
				t.Errorf("Outcome = %v, want %v", v.Outcome, tt.wantOutcome)
			}
			if v.RuleID != tt.wantRule {
				t.Errorf("RuleID = %q, want %q", v.RuleID, tt.wantRule)
			}
			if tt.wantOutcome == Block && !strings.HasPrefix(v.Message, "BLOCKED: ") {
				t.Errorf("Message = %q, want BLOCKED prefix", v.Message)
			}
			if tt.wantInMsg != "" && !strings.Contains(v.Message, tt.wantInMsg) {
				t.Errorf("Message = %q, want it to contain %q", v.Message, tt.wantInMsg)
			}
			if tt.wantOutcome == Allow && v.Message != "" {
				t.Errorf("Message = %q, want empty for allow", v.Message)
			}
		})
	}
}

func TestEvaluateBlockMessageFormat(t *testing.T) {
	v := evaluate("git reset --hard", policy.Default(), DefaultOptions())
	want := "BLOCKED: git reset --hard destroys uncommitted changes.\nSafe alternative: git stash (preserves changes)"
	if v.Message != want {
		t.Errorf("Message = %q, want %q", v.Message, want)
	}
}

func TestEvaluateWarnMode(t *testing.T) {
	p := policy.Default()
	p.Mode = policy.ModeWarn

	v := evaluate("git branch -D x", p, DefaultOptions())
	if v.Outcome != Warn {
		t.Errorf("Outcome = %v, want warn", v.Outcome)
	}
	if !strings.HasPrefix(v.Message, "WARNING: ") {
		t.Errorf("Message = %q, want WARNING prefix", v.Message)
	}
	if v.Blocked() {
		t.Error("Blocked() = true in warn mode")
	}
}

func TestEvaluateAllowMode(t *testing.T) {
	p := policy.Default()
	p.Mode = policy.ModeAllow

	v := evaluate("git push --force && git reset --hard", p, DefaultOptions())
	if v.Outcome != Allow {
		t.Errorf("Outcome = %v, want allow", v.Outcome)
	}
}

func TestEvaluateResetHardDisabled(t *testing.T) {
	p := policy.Default()
	p.Rules[policy.KeyResetHard] = false

	if v := evaluate("git reset --hard HEAD~1", p, DefaultOptions()); v.Outcome != Allow {
		t.Errorf("reset --hard with block_reset_hard false: Outcome = %v, want allow", v.Outcome)
	}
	v := evaluate("git push --force", p, DefaultOptions())
	if v.Outcome != Block || v.RuleID != rules.IDForcePush {
		t.Errorf("push --force: got (%v, %q), want (block, %q)", v.Outcome, v.RuleID, rules.IDForcePush)
	}
}

func TestEvaluateDisabledRule(t *testing.T) {
	p := policy.Default()
	p.Rules[policy.KeyStashDestructive] = false

	if v := evaluate("git stash drop", p, DefaultOptions()); v.Outcome != Allow {
		t.Errorf("stash drop with rule disabled: Outcome = %v, want allow", v.Outcome)
	}
	// Other rules stay active.
	if v := evaluate("git stash drop && git reset --hard", p, DefaultOptions()); v.RuleID != rules.IDResetHard {
		t.Errorf("RuleID = %q, want %q", v.RuleID, rules.IDResetHard)
	}
}

func TestEvaluateDepthLimit(t *testing.T) {
	raw := `bash -c "bash -c \"bash -c \\\"bash -c 'git push -f'\\\"\""`

	v := evaluate(raw, policy.Default(), DefaultOptions())
	if v.Outcome != Allow {
		t.Errorf("literal depth limit: Outcome = %v, want allow", v.Outcome)
	}

	opts := DefaultOptions()
	opts.DepthLimit = DepthLimitBlock
	v = evaluate(raw, policy.Default(), opts)
	if v.Outcome != Block || v.RuleID != rules.IDDepthLimit {
		t.Errorf("block depth limit: got (%v, %q), want (block, %q)", v.Outcome, v.RuleID, rules.IDDepthLimit)
	}

	// Three levels are still unwrapped.
	three := `bash -c "bash -c \"bash -c 'git push -f'\""`
	if v := evaluate(three, policy.Default(), DefaultOptions()); v.RuleID != rules.IDForcePush {
		t.Errorf("three levels: RuleID = %q, want %q", v.RuleID, rules.IDForcePush)
	}
}

func TestEvaluateRedactsMessage(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxMessageLength = 20

	v := evaluate("git push -f", policy.Default(), opts)
	if got := len([]rune(v.Message)); got != 23 {
		t.Errorf("len(Message) = %d, want 23 (20 + marker)", got)
	}
}

func TestCheckResolvesPolicy(t *testing.T) {
	var gotDir string
	source := func(_ context.Context, workDir string) policy.Resolution {
		gotDir = workDir
		p := policy.Default()
		p.Mode = policy.ModeWarn
		return policy.Resolution{Policy: p, Source: policy.TierWorkspace}
	}

	e := NewEngine(DefaultOptions(), source, nil)
	v, res := e.Check(context.Background(), RawCommand{Command: "git clean -f", WorkDir: "/repo"})
	if gotDir != "/repo" {
		t.Errorf("policy source got workDir %q, want /repo", gotDir)
	}
	if res.Source != policy.TierWorkspace {
		t.Errorf("Source = %q, want workspace", res.Source)
	}
	if v.Outcome != Warn {
		t.Errorf("Outcome = %v, want warn", v.Outcome)
	}
}

func TestCheckRecoversPanic(t *testing.T) {
	source := func(context.Context, string) policy.Resolution {
		panic("boom")
	}

	v, _ := NewEngine(DefaultOptions(), source, nil).Check(context.Background(), RawCommand{Command: "git status"})
	if v.Outcome != Block {
		t.Errorf("Outcome = %v, want block", v.Outcome)
	}
	if v.RuleID != internalErrorRuleID {
		t.Errorf("RuleID = %q, want %q", v.RuleID, internalErrorRuleID)
	}
}

func TestOutcome(t *testing.T) {
	if Worse(Allow, Block) != Block || Worse(Warn, Allow) != Warn {
		t.Error("Worse does not pick the more severe outcome")
	}
	b, _ := Block.MarshalText()
	if string(b) != "block" {
		t.Errorf("Block.MarshalText() = %q, want block", b)
	}
}

func TestParseDepthLimitAction(t *testing.T) {
	if ParseDepthLimitAction("BLOCK") != DepthLimitBlock {
		t.Error("ParseDepthLimitAction(BLOCK) != block")
	}
	if ParseDepthLimitAction("") != DepthLimitLiteral {
		t.Error("ParseDepthLimitAction(\"\") != literal")
	}
}
