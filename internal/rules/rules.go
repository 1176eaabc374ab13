// Package rules recognizes destructive git subcommands.
//
// Each analyzer inspects the arguments of one git subcommand and reports the
// first rule they trigger. Analyzers know nothing about policy mode; callers
// decide what a match means.
package rules

import (
	"slices"

	"github.com/boshu2/safety-net/internal/policy"
	"github.com/boshu2/safety-net/internal/shell"
)

// Risk names the kind of data a rule protects.
type Risk string

const (
	RiskRemoteHistory   Risk = "remote-history"
	RiskUncommittedWork Risk = "uncommitted-work"
	RiskUnmergedBranch  Risk = "unmerged-branch"
	RiskStashLoss       Risk = "stash-loss"
	RiskUntrackedFiles  Risk = "untracked-files"
	RiskUnanalyzable    Risk = "unanalyzable"
)

// Rule identifiers.
const (
	IDForcePush         = "force_push"
	IDForceRefspec      = "force_refspec"
	IDPushMirror        = "push_mirror"
	IDResetHard         = "reset_hard"
	IDBranchForceDelete = "branch_force_delete"
	IDStashDrop         = "stash_drop"
	IDStashClear        = "stash_clear"
	IDCleanForce        = "clean_force"
	IDCheckoutPath      = "checkout_path"
	IDRestoreWorktree   = "restore_worktree"
	IDDepthLimit        = "depth_limit"
)

// Rule describes one destructive command pattern.
type Rule struct {
	ID          string `json:"id" yaml:"id"`
	Subcommand  string `json:"subcommand" yaml:"subcommand"`
	Toggle      string `json:"toggle,omitempty" yaml:"toggle,omitempty"`
	Risk        Risk   `json:"risk" yaml:"risk"`
	Reason      string `json:"reason" yaml:"reason"`
	Alternative string `json:"alternative" yaml:"alternative"`
	Example     string `json:"example" yaml:"example"`
}

// table lists every rule. Within a subcommand the order is the tie-break when
// several rules match the same command.
var table = []Rule{
	{
		ID: IDForcePush, Subcommand: "push", Toggle: policy.KeyForcePush, Risk: RiskRemoteHistory,
		Reason:      "Force push destroys remote history",
		Alternative: "git push --force-with-lease",
		Example:     "git push --force origin main",
	},
	{
		ID: IDForceRefspec, Subcommand: "push", Toggle: policy.KeyForcePush, Risk: RiskRemoteHistory,
		Reason:      "Force push via +refspec destroys remote history",
		Alternative: "git push --force-with-lease",
		Example:     "git push origin +main",
	},
	{
		ID: IDPushMirror, Subcommand: "push", Toggle: policy.KeyForcePush, Risk: RiskRemoteHistory,
		Reason:      "Mirror push overwrites and deletes remote refs",
		Alternative: "git push origin <branch>",
		Example:     "git push --mirror origin",
	},
	{
		ID: IDResetHard, Subcommand: "reset", Toggle: policy.KeyResetHard, Risk: RiskUncommittedWork,
		Reason:      "git reset --hard destroys uncommitted changes",
		Alternative: "git stash (preserves changes)",
		Example:     "git reset --hard HEAD~1",
	},
	{
		ID: IDBranchForceDelete, Subcommand: "branch", Toggle: policy.KeyBranchForceDelete, Risk: RiskUnmergedBranch,
		Reason:      "git branch -D force-deletes without merge check",
		Alternative: "git branch -d (checks merge status)",
		Example:     "git branch -D feature",
	},
	{
		ID: IDStashDrop, Subcommand: "stash", Toggle: policy.KeyStashDestructive, Risk: RiskStashLoss,
		Reason:      "git stash drop permanently deletes a stash entry",
		Alternative: "Review with git stash list first",
		Example:     "git stash drop stash@{0}",
	},
	{
		ID: IDStashClear, Subcommand: "stash", Toggle: policy.KeyStashDestructive, Risk: RiskStashLoss,
		Reason:      "git stash clear permanently deletes all stash entries",
		Alternative: "Review with git stash list first",
		Example:     "git stash clear",
	},
	{
		ID: IDCleanForce, Subcommand: "clean", Toggle: policy.KeyClean, Risk: RiskUntrackedFiles,
		Reason:      "git clean -f permanently deletes untracked files",
		Alternative: "git clean -n (dry-run preview)",
		Example:     "git clean -fd",
	},
	{
		ID: IDCheckoutPath, Subcommand: "checkout", Toggle: policy.KeyCheckoutRestore, Risk: RiskUncommittedWork,
		Reason:      "git checkout -- <path> discards uncommitted changes",
		Alternative: "git stash (preserves changes)",
		Example:     "git checkout -- src/main.go",
	},
	{
		ID: IDRestoreWorktree, Subcommand: "restore", Toggle: policy.KeyCheckoutRestore, Risk: RiskUncommittedWork,
		Reason:      "git restore discards uncommitted changes",
		Alternative: "git stash or git restore --staged",
		Example:     "git restore src/main.go",
	},
}

// DepthLimitRule is reported for shell invocations nested deeper than the
// analysis limit when the depth-limit action is block. It has no toggle.
var DepthLimitRule = Rule{
	ID:          IDDepthLimit,
	Risk:        RiskUnanalyzable,
	Reason:      "Command nests shell invocations deeper than the analysis limit",
	Alternative: "Run the inner command directly",
	Example:     `bash -c "bash -c \"bash -c 'bash -c ...'\""`,
}

// All returns every rule in table order.
func All() []Rule {
	return slices.Clone(table)
}

// Lookup returns the rule with the given ID.
func Lookup(id string) (Rule, bool) {
	if id == IDDepthLimit {
		return DepthLimitRule, true
	}
	for _, r := range table {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// mustLookup is used by analyzers for IDs known to exist in table.
func mustLookup(id string) *Rule {
	r, ok := Lookup(id)
	if !ok {
		panic("rules: unknown rule " + id)
	}
	return &r
}

// Match is a rule triggered by a specific command.
type Match struct {
	Rule
	Command shell.NormalizedCommand `json:"command" yaml:"command"`
}

// Analyze runs the analyzer for cmd's git subcommand. It returns nil for
// non-git commands, unknown subcommands, and safe invocations.
func Analyze(cmd shell.NormalizedCommand, opts Options) *Match {
	if !cmd.IsGit() {
		return nil
	}
	a, ok := analyzers[cmd.Subcommand]
	if !ok {
		return nil
	}
	r := a.Analyze(cmd.Args, opts)
	if r == nil {
		return nil
	}
	return &Match{Rule: *r, Command: cmd}
}

// Subcommands returns the git subcommands that have an analyzer.
func Subcommands() []string {
	out := make([]string, 0, len(analyzers))
	for k := range analyzers {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
