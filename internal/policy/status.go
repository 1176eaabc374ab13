package policy

// RuleState is one toggle key and whether it is enabled.
type RuleState struct {
	Key         string `json:"key" yaml:"key"`
	Description string `json:"description" yaml:"description"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
}

// GuardedCommand pairs a command form with its suggested alternative.
type GuardedCommand struct {
	Command     string `json:"command" yaml:"command"`
	RuleID      string `json:"rule_id" yaml:"rule_id"`
	Alternative string `json:"alternative" yaml:"alternative"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
}

// Status is a diagnostic snapshot of the effective policy.
type Status struct {
	Version  string           `json:"version" yaml:"version"`
	Mode     Mode             `json:"mode" yaml:"mode"`
	Source   Tier             `json:"source" yaml:"source"`
	Path     string           `json:"path,omitempty" yaml:"path,omitempty"`
	Rules    []RuleState      `json:"rules" yaml:"rules"`
	Enabled  []string         `json:"enabled" yaml:"enabled"`
	Disabled []string         `json:"disabled" yaml:"disabled"`
	Blocked  []GuardedCommand `json:"blocked_commands" yaml:"blocked_commands"`
	Allowed  []string         `json:"allowed_commands" yaml:"allowed_commands"`
	Attempts []Attempt        `json:"attempts" yaml:"attempts"`
}

// AllowedCommands lists commands that are never blocked, including the safe
// forms of guarded commands.
var AllowedCommands = []string{
	"git push --force-with-lease",
	"git reset --soft",
	"git reset --mixed",
	"git branch -d",
	"git stash pop",
	"git stash apply",
	"git clean -n",
	"git restore --staged",
	"git status",
	"git log",
	"git diff",
}

// NewStatus builds a Status from a resolution. Guarded commands are supplied
// by the caller because they are defined alongside the rules.
func NewStatus(res Resolution, version string, guarded []GuardedCommand) Status {
	s := Status{
		Version:  version,
		Mode:     res.Policy.Mode,
		Source:   res.Source,
		Path:     res.Path,
		Enabled:  res.Policy.EnabledKeys(),
		Disabled: res.Policy.DisabledKeys(),
		Allowed:  append([]string(nil), AllowedCommands...),
		Attempts: res.Attempts,
	}
	for _, k := range ruleKeys {
		s.Rules = append(s.Rules, RuleState{Key: k, Description: Describe(k), Enabled: res.Policy.Enabled(k)})
	}
	if s.Enabled == nil {
		s.Enabled = []string{}
	}
	if s.Disabled == nil {
		s.Disabled = []string{}
	}
	s.Blocked = append(make([]GuardedCommand, 0, len(guarded)), guarded...)
	return s
}
