package safety

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/boshu2/safety-net/internal/policy"
	"github.com/boshu2/safety-net/internal/redact"
	"github.com/boshu2/safety-net/internal/rules"
	"github.com/boshu2/safety-net/internal/shell"
)

// DepthLimitAction selects what happens to shell invocations nested past the
// analysis depth.
type DepthLimitAction string

const (
	// DepthLimitLiteral evaluates the unexpanded tokens as they are.
	DepthLimitLiteral DepthLimitAction = "literal"

	// DepthLimitBlock treats the unexpanded invocation as a rule match.
	DepthLimitBlock DepthLimitAction = "block"
)

// ParseDepthLimitAction returns DepthLimitBlock for "block" and
// DepthLimitLiteral for anything else.
func ParseDepthLimitAction(s string) DepthLimitAction {
	if DepthLimitAction(strings.ToLower(strings.TrimSpace(s))) == DepthLimitBlock {
		return DepthLimitBlock
	}
	return DepthLimitLiteral
}

// internalErrorRuleID marks verdicts produced by a recovered panic.
const internalErrorRuleID = "internal_error"

// RawCommand is a command string as the agent proposed it.
type RawCommand struct {
	Command string `json:"command"`
	WorkDir string `json:"cwd,omitempty"`
}

// Options tune evaluation.
type Options struct {
	MaxDepth         int
	DepthLimit       DepthLimitAction
	Rules            rules.Options
	MaxMessageLength int
}

// DefaultOptions returns the settings used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MaxDepth:         shell.DefaultMaxDepth,
		DepthLimit:       DepthLimitLiteral,
		Rules:            rules.DefaultOptions(),
		MaxMessageLength: redact.DefaultMaxLength,
	}
}

// PolicySource returns the effective policy for a working directory.
type PolicySource func(ctx context.Context, workDir string) policy.Resolution

// Engine evaluates raw commands.
type Engine struct {
	opts     Options
	policies PolicySource
	logger   *slog.Logger
}

// NewEngine creates an engine. A nil logger discards logs and a nil policy
// source uses policy.Resolve.
func NewEngine(opts Options, policies PolicySource, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if policies == nil {
		policies = policy.Resolve
	}
	return &Engine{opts: opts, policies: policies, logger: logger}
}

// Options returns the engine's settings.
func (e *Engine) Options() Options {
	return e.opts
}

// Check resolves the policy for cmd's working directory and evaluates cmd
// under it.
func (e *Engine) Check(ctx context.Context, cmd RawCommand) (v Verdict, res policy.Resolution) {
	defer func() {
		if r := recover(); r != nil {
			v = e.internalFault(r)
		}
	}()

	res = e.policies(ctx, cmd.WorkDir)
	return e.Evaluate(cmd, res.Policy), res
}

// Evaluate decides cmd under an already resolved policy. A panic anywhere in
// analysis yields a Block verdict.
func (e *Engine) Evaluate(cmd RawCommand, p policy.Policy) (v Verdict) {
	defer func() {
		if r := recover(); r != nil {
			v = e.internalFault(r)
		}
	}()

	if strings.TrimSpace(cmd.Command) == "" || p.Mode == policy.ModeAllow {
		return Verdict{Outcome: Allow}
	}

	cmds := shell.Extract(cmd.Command, e.opts.MaxDepth)
	v = Aggregate(cmds, p, e.opts)

	e.logger.Debug("command evaluated",
		"command", redact.Sanitize(cmd.Command, e.opts.MaxMessageLength),
		"commands", len(cmds),
		"outcome", v.Outcome,
		"rule", v.RuleID,
		"mode", p.Mode,
	)
	return v
}

// Aggregate combines per-command rule matches into one verdict. Matches whose
// toggle is disabled are ignored; the first remaining match supplies the
// message and the policy mode supplies the outcome.
func Aggregate(cmds []shell.NormalizedCommand, p policy.Policy, opts Options) Verdict {
	if p.Mode == policy.ModeAllow {
		return Verdict{Outcome: Allow}
	}

	var matches []rules.Match
	for _, c := range cmds {
		if c.AtDepthLimit && opts.DepthLimit == DepthLimitBlock {
			matches = append(matches, rules.Match{Rule: rules.DepthLimitRule, Command: c})
			continue
		}
		m := rules.Analyze(c, opts.Rules)
		if m == nil || !p.Enabled(m.Toggle) {
			continue
		}
		matches = append(matches, *m)
	}
	if len(matches) == 0 {
		return Verdict{Outcome: Allow}
	}

	outcome := outcomeFor(p.Mode)
	first := matches[0].Rule
	return Verdict{
		Outcome:     outcome,
		RuleID:      first.ID,
		Reason:      first.Reason,
		Alternative: first.Alternative,
		Message:     redact.Sanitize(formatMessage(outcome, first), opts.MaxMessageLength),
		Matches:     matches,
	}
}

// outcomeFor maps a policy mode to the outcome of an enabled match.
func outcomeFor(m policy.Mode) Outcome {
	switch m {
	case policy.ModeAllow:
		return Allow
	case policy.ModeWarn:
		return Warn
	default:
		return Block
	}
}

func (e *Engine) internalFault(r any) Verdict {
	e.logger.Error("evaluation panic", "panic", fmt.Sprint(r))
	rule := rules.Rule{
		ID:          internalErrorRuleID,
		Reason:      "Safety check failed unexpectedly",
		Alternative: "Run the git command manually after reviewing it",
	}
	return Verdict{
		Outcome:     Block,
		RuleID:      rule.ID,
		Reason:      rule.Reason,
		Alternative: rule.Alternative,
		Message:     formatMessage(Block, rule),
	}
}
