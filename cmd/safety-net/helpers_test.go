package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/boshu2/safety-net/internal/config"
	"github.com/boshu2/safety-net/internal/policy"
)

// isolateCLI points every config and policy location at empty temp dirs and
// resets global flag state for the duration of the test.
func isolateCLI(t *testing.T) string {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(tmp, "cache"))
	t.Setenv("NO_COLOR", "")
	t.Setenv(config.EnvConfig, filepath.Join(tmp, "missing-config.yaml"))
	t.Setenv(policy.EnvPolicyPath, "")
	for _, key := range []string{
		config.EnvOutput, config.EnvVerbose, config.EnvNoColor, config.EnvMaxDepth,
		config.EnvDepthLimit, config.EnvForceClusters, config.EnvMaxMessageLength, config.EnvConcurrency,
	} {
		t.Setenv(key, "")
	}

	saved := struct {
		verbose, noColor, configShow, checkExitCode bool
		output, cfgFile, policyFile                 string
		statusCwd, checkCwd, checkFile, explainCwd  string
	}{verbose, noColor, configShow, checkExitCode, output, cfgFile, policyFile, statusCwd, checkCwd, checkFile, explainCwd}
	t.Cleanup(func() {
		verbose, noColor, configShow, checkExitCode = saved.verbose, saved.noColor, saved.configShow, saved.checkExitCode
		output, cfgFile, policyFile = saved.output, saved.cfgFile, saved.policyFile
		statusCwd, checkCwd, checkFile, explainCwd = saved.statusCwd, saved.checkCwd, saved.checkFile, saved.explainCwd
	})
	verbose, noColor, configShow, checkExitCode = false, false, false, false
	output, cfgFile, policyFile = "", "", ""
	statusCwd, checkCwd, checkFile, explainCwd = tmp, tmp, "", tmp

	return tmp
}

// writeWorkspacePolicy writes dir/.safety-net/effective_policy.json.
func writeWorkspacePolicy(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, policy.WorkspacePolicyFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// newTestCommand returns a bare command with captured output streams.
func newTestCommand(stdin string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetIn(bytes.NewBufferString(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	return cmd, &out, &errOut
}

// hookRequest encodes a Bash PreToolUse request.
func hookRequest(t *testing.T, command, cwd string) string {
	t.Helper()
	data, err := json.Marshal(map[string]any{
		"tool_name":  "Bash",
		"tool_input": map[string]string{"command": command},
		"cwd":        cwd,
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}
