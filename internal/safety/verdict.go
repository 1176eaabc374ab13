package safety

import (
	"fmt"

	"github.com/boshu2/safety-net/internal/rules"
)

// Outcome is the decision for a command. Larger values are more severe.
type Outcome int

const (
	Allow Outcome = iota
	Warn
	Block
)

func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Warn:
		return "warn"
	case Block:
		return "block"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText renders the outcome by name in JSON and YAML.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Worse returns the more severe of a and b.
func Worse(a, b Outcome) Outcome {
	if b > a {
		return b
	}
	return a
}

// Message prefixes.
const (
	blockedPrefix = "BLOCKED: "
	warningPrefix = "WARNING: "
)

// Verdict is the result of evaluating one raw command.
type Verdict struct {
	Outcome     Outcome       `json:"outcome" yaml:"outcome"`
	RuleID      string        `json:"rule_id,omitempty" yaml:"rule_id,omitempty"`
	Reason      string        `json:"reason,omitempty" yaml:"reason,omitempty"`
	Alternative string        `json:"alternative,omitempty" yaml:"alternative,omitempty"`
	Message     string        `json:"message,omitempty" yaml:"message,omitempty"`
	Matches     []rules.Match `json:"matches,omitempty" yaml:"matches,omitempty"`
}

// Blocked reports whether the command must not run.
func (v Verdict) Blocked() bool {
	return v.Outcome == Block
}

// formatMessage renders the user-facing text for a rule under an outcome.
func formatMessage(o Outcome, r rules.Rule) string {
	prefix := blockedPrefix
	if o == Warn {
		prefix = warningPrefix
	}
	return fmt.Sprintf("%s%s.\nSafe alternative: %s", prefix, r.Reason, r.Alternative)
}
