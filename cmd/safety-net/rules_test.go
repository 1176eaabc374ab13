package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/boshu2/safety-net/internal/rules"
)

func TestRunRules_Table(t *testing.T) {
	isolateCLI(t)
	cmd, out, _ := newTestCommand("")
	if err := runRules(cmd, nil); err != nil {
		t.Fatalf("runRules() error = %v", err)
	}

	s := out.String()
	for _, r := range rules.All() {
		if !strings.Contains(s, r.ID) {
			t.Errorf("output missing rule %q", r.ID)
		}
	}
	if !strings.Contains(s, "analysis.depth_limit") {
		t.Errorf("depth limit rule should name its config key:\n%s", s)
	}
}

func TestRunRules_JSON(t *testing.T) {
	isolateCLI(t)
	output = "json"
	cmd, out, _ := newTestCommand("")
	if err := runRules(cmd, nil); err != nil {
		t.Fatalf("runRules() error = %v", err)
	}

	var got []rules.Rule
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output not JSON: %v", err)
	}
	if len(got) != len(rules.All())+1 {
		t.Errorf("got %d rules, want %d", len(got), len(rules.All())+1)
	}
	if got[0].ID != rules.IDForcePush {
		t.Errorf("first rule = %q, want %q", got[0].ID, rules.IDForcePush)
	}
	if got[len(got)-1].ID != rules.IDDepthLimit {
		t.Errorf("last rule = %q, want %q", got[len(got)-1].ID, rules.IDDepthLimit)
	}
}
