// Package policy decides how strictly destructive git commands are handled.
//
// A Policy carries a mode (block, warn, allow) and a set of per-rule toggles.
// Policies are read from a tiered list of JSON documents; the first tier that
// yields a well-formed document wins, and the built-in default (block mode,
// every rule enabled) applies when none do.
package policy

import "strings"

// Mode is the action taken when an enabled rule matches.
type Mode string

const (
	ModeBlock Mode = "block"
	ModeWarn  Mode = "warn"
	ModeAllow Mode = "allow"
)

// ParseMode converts a policy "action" value to a Mode. Anything other than
// warn or allow is treated as block.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeWarn:
		return ModeWarn
	case ModeAllow:
		return ModeAllow
	default:
		return ModeBlock
	}
}

// Rule toggle keys as they appear in policy documents.
const (
	KeyForcePush         = "block_force_push"
	KeyResetHard         = "block_reset_hard"
	KeyBranchForceDelete = "block_branch_force_delete"
	KeyStashDestructive  = "block_stash_destructive"
	KeyClean             = "block_clean"
	KeyCheckoutRestore   = "block_checkout_restore"
)

// ruleKeys is the stable display order of the toggle keys.
var ruleKeys = []string{
	KeyForcePush,
	KeyResetHard,
	KeyBranchForceDelete,
	KeyStashDestructive,
	KeyClean,
	KeyCheckoutRestore,
}

// keyDescriptions summarizes what each toggle guards.
var keyDescriptions = map[string]string{
	KeyForcePush:         "git push --force, -f, +refspec, --mirror",
	KeyResetHard:         "git reset --hard",
	KeyBranchForceDelete: "git branch -D",
	KeyStashDestructive:  "git stash drop, git stash clear",
	KeyClean:             "git clean -f",
	KeyCheckoutRestore:   "git checkout -- <path>, git restore <path>",
}

// Keys returns the toggle keys in display order.
func Keys() []string {
	out := make([]string, len(ruleKeys))
	copy(out, ruleKeys)
	return out
}

// Describe returns a short summary of the commands a toggle key guards.
func Describe(key string) string {
	return keyDescriptions[key]
}

// Policy is the effective configuration for one evaluation.
type Policy struct {
	Mode  Mode            `json:"action" yaml:"action"`
	Rules map[string]bool `json:"rules" yaml:"rules"`
}

// defaultPolicy is the template behind Default. It is never handed out
// directly.
var defaultPolicy = func() Policy {
	p := Policy{Mode: ModeBlock, Rules: make(map[string]bool, len(ruleKeys))}
	for _, k := range ruleKeys {
		p.Rules[k] = true
	}
	return p
}()

// Default returns the built-in policy: block mode with every rule enabled.
// Each call returns a fresh copy.
func Default() Policy {
	return defaultPolicy.Clone()
}

// Enabled reports whether the rule guarded by key is active. Unknown keys and
// the empty key are always enabled.
func (p Policy) Enabled(key string) bool {
	if key == "" {
		return true
	}
	v, ok := p.Rules[key]
	return !ok || v
}

// Clone returns a deep copy of p.
func (p Policy) Clone() Policy {
	out := Policy{Mode: p.Mode, Rules: make(map[string]bool, len(p.Rules))}
	for k, v := range p.Rules {
		out.Rules[k] = v
	}
	return out
}

// EnabledKeys returns the enabled toggle keys in display order.
func (p Policy) EnabledKeys() []string {
	var out []string
	for _, k := range ruleKeys {
		if p.Enabled(k) {
			out = append(out, k)
		}
	}
	return out
}

// DisabledKeys returns the disabled toggle keys in display order.
func (p Policy) DisabledKeys() []string {
	var out []string
	for _, k := range ruleKeys {
		if !p.Enabled(k) {
			out = append(out, k)
		}
	}
	return out
}

// FromDocument builds a Policy from a decoded JSON object. Both the flat
// shape ({"action": ..., "block_*": ...}) and the nested
// {"security": {"safety_net": {...}}} shape are accepted. Missing keys keep
// their default; a non-boolean toggle value counts as enabled.
func FromDocument(doc map[string]any) Policy {
	p := Default()

	section := doc
	if security, ok := doc["security"].(map[string]any); ok {
		if nested, ok := security["safety_net"].(map[string]any); ok {
			section = nested
		} else {
			return p
		}
	}

	if action, ok := section["action"].(string); ok {
		p.Mode = ParseMode(action)
	}
	for _, k := range ruleKeys {
		raw, ok := section[k]
		if !ok {
			continue
		}
		b, isBool := raw.(bool)
		p.Rules[k] = !isBool || b
	}
	return p
}
