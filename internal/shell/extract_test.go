package shell

import (
	"slices"
	"testing"
)

func TestStripWrappers(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   []string
	}{
		{"no wrapper", []string{"git", "status"}, []string{"git", "status"}},
		{"assignments", []string{"GIT_TRACE=1", "FOO=bar", "git", "push"}, []string{"git", "push"}},
		{"sudo with user", []string{"sudo", "-u", "root", "git", "push"}, []string{"git", "push"}},
		{"sudo attached user", []string{"sudo", "-uroot", "git", "push"}, []string{"git", "push"}},
		{"sudo cluster", []string{"sudo", "-Eu", "root", "--", "git", "push"}, []string{"git", "push"}},
		{"path qualified sudo", []string{"/usr/bin/sudo", "git", "push"}, []string{"git", "push"}},
		{"env assignments", []string{"env", "-i", "A=1", "git", "push"}, []string{"git", "push"}},
		{"env unset", []string{"env", "-u", "HOME", "git", "push"}, []string{"git", "push"}},
		{"env split string", []string{"env", "-S", "git push -f"}, []string{"git", "push", "-f"}},
		{"nice", []string{"nice", "-n", "10", "git", "push"}, []string{"git", "push"}},
		{"nice numeric", []string{"nice", "-5", "git", "push"}, []string{"git", "push"}},
		{"time with format", []string{"time", "-f", "%e", "git", "push"}, []string{"git", "push"}},
		{"nohup", []string{"nohup", "git", "push"}, []string{"git", "push"}},
		{"command", []string{"command", "-p", "git", "push"}, []string{"git", "push"}},
		{"timeout duration", []string{"timeout", "-s", "KILL", "30", "git", "push"}, []string{"git", "push"}},
		{"chained", []string{"sudo", "env", "A=1", "nice", "nohup", "git", "push"}, []string{"git", "push"}},
		{"wrapper only", []string{"sudo"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripWrappers(tt.tokens)
			if !slices.Equal(got, tt.want) {
				t.Errorf("StripWrappers(%q) = %q, want %q", tt.tokens, got, tt.want)
			}
		})
	}
}

func TestShellCommandString(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   string
		wantOK bool
	}{
		{"bash -c", []string{"bash", "-c", "git push"}, "git push", true},
		{"sh -c", []string{"sh", "-c", "ls"}, "ls", true},
		{"cluster", []string{"zsh", "-lc", "ls"}, "ls", true},
		{"option value skipped", []string{"bash", "-o", "pipefail", "-c", "ls"}, "ls", true},
		{"plus o", []string{"bash", "+o", "history", "-c", "ls"}, "ls", true},
		{"rcfile", []string{"bash", "--rcfile", "x", "-c", "ls"}, "ls", true},
		{"shopt value skipped", []string{"bash", "-O", "extglob", "-c", "ls"}, "ls", true},
		{"plus shopt", []string{"bash", "+O", "extglob", "-c", "ls"}, "ls", true},
		{"cluster ending in shopt", []string{"bash", "-eO", "extglob", "-c", "ls"}, "ls", true},
		{"c cluster then shopt", []string{"bash", "-cO", "extglob", "ls"}, "ls", true},
		{"path qualified", []string{"/bin/dash", "-c", "ls"}, "ls", true},
		{"script not command", []string{"bash", "script.sh"}, "", false},
		{"not a shell", []string{"python", "-c", "print(1)"}, "", false},
		{"missing string", []string{"bash", "-c"}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ShellCommandString(tt.tokens)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ShellCommandString(%q) = (%q, %v), want (%q, %v)", tt.tokens, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNormalizeGitGlobalOptions(t *testing.T) {
	tests := []struct {
		name    string
		tokens  []string
		wantSub string
		wantArg []string
	}{
		{"plain", []string{"git", "push", "-f"}, "push", []string{"-f"}},
		{"dash C", []string{"git", "-C", "/repo", "push", "-f"}, "push", []string{"-f"}},
		{"dash c", []string{"git", "-c", "user.name=x", "reset", "--hard"}, "reset", []string{"--hard"}},
		{"equals form", []string{"git", "--git-dir=/x/.git", "--work-tree", "/x", "clean", "-f"}, "clean", []string{"-f"}},
		{"no pager", []string{"git", "--no-pager", "-P", "stash", "drop"}, "stash", []string{"drop"}},
		{"path qualified", []string{"/usr/local/bin/git", "branch", "-D", "x"}, "branch", []string{"-D", "x"}},
		{"bare git", []string{"git"}, "", []string{}},
		{"missing option value", []string{"git", "-C"}, "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.tokens, 0)
			if !got.IsGit() {
				t.Fatalf("Normalize(%q).IsGit() = false", tt.tokens)
			}
			if got.Subcommand != tt.wantSub {
				t.Errorf("Subcommand = %q, want %q", got.Subcommand, tt.wantSub)
			}
			if !slices.Equal(got.Args, tt.wantArg) {
				t.Errorf("Args = %q, want %q", got.Args, tt.wantArg)
			}
		})
	}
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantSubs  []string
		wantDepth []int
	}{
		{
			name:      "chain",
			raw:       "git status && git push --force",
			wantSubs:  []string{"status", "push"},
			wantDepth: []int{0, 0},
		},
		{
			name:      "nested bash",
			raw:       `bash -c "git reset --hard"`,
			wantSubs:  []string{"reset"},
			wantDepth: []int{1},
		},
		{
			name:      "nested chain",
			raw:       `sudo sh -c 'cd /x && git clean -fd'`,
			wantSubs:  []string{"", "clean"},
			wantDepth: []int{1, 1},
		},
		{
			name:      "three levels unwrapped",
			raw:       `bash -c "bash -c \"bash -c 'git push -f'\""`,
			wantSubs:  []string{"push"},
			wantDepth: []int{3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmds := Extract(tt.raw, DefaultMaxDepth)
			if len(cmds) != len(tt.wantSubs) {
				t.Fatalf("Extract(%q) returned %d commands, want %d: %#v", tt.raw, len(cmds), len(tt.wantSubs), cmds)
			}
			for i, c := range cmds {
				if c.Subcommand != tt.wantSubs[i] {
					t.Errorf("cmds[%d].Subcommand = %q, want %q", i, c.Subcommand, tt.wantSubs[i])
				}
				if c.Depth != tt.wantDepth[i] {
					t.Errorf("cmds[%d].Depth = %d, want %d", i, c.Depth, tt.wantDepth[i])
				}
			}
		})
	}
}

func TestExtractDepthLimit(t *testing.T) {
	raw := `bash -c "bash -c \"bash -c \\\"bash -c 'git push -f'\\\"\""`

	cmds := Extract(raw, DefaultMaxDepth)
	if len(cmds) != 1 {
		t.Fatalf("Extract returned %d commands, want 1: %#v", len(cmds), cmds)
	}
	got := cmds[0]
	if !got.AtDepthLimit {
		t.Error("AtDepthLimit = false, want true")
	}
	if got.Name != "bash" {
		t.Errorf("Name = %q, want %q", got.Name, "bash")
	}
	if got.Depth != DefaultMaxDepth {
		t.Errorf("Depth = %d, want %d", got.Depth, DefaultMaxDepth)
	}
}

func TestExtractRecordsSegment(t *testing.T) {
	cmds := Extract("ls; git push -f", DefaultMaxDepth)
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	if cmds[1].Segment != "git push -f" {
		t.Errorf("Segment = %q, want %q", cmds[1].Segment, "git push -f")
	}
	if cmds[1].Op != OpSequence {
		t.Errorf("Op = %q, want %q", cmds[1].Op, OpSequence)
	}
}

func TestShellReadsStdin(t *testing.T) {
	tests := []struct {
		tokens []string
		want   bool
	}{
		{[]string{"bash"}, true},
		{[]string{"sh", "-e", "-o", "pipefail"}, true},
		{[]string{"bash", "-s", "arg"}, true},
		{[]string{"bash", "-"}, true},
		{[]string{"bash", "--"}, true},
		{[]string{"bash", "script.sh"}, false},
		{[]string{"bash", "-c", "ls"}, false},
		{[]string{"bash", "--", "script.sh"}, false},
		{[]string{"cat"}, false},
	}
	for _, tt := range tests {
		if got := shellReadsStdin(tt.tokens); got != tt.want {
			t.Errorf("shellReadsStdin(%q) = %v, want %v", tt.tokens, got, tt.want)
		}
	}
}

func TestExtractCompoundAndStdin(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantSub   string
		wantDepth int
	}{
		{"subshell", "(git push -f)", "push", 0},
		{"group", "{ git push -f; }", "push", 0},
		{"if body", "if true; then git push -f; fi", "push", 0},
		{"loop body", "for b in x; do git branch -D $b; done", "branch", 0},
		{"negated", "! git push -f", "push", 0},
		{"shopt before -c", "bash -O extglob -c 'git push -f'", "push", 1},
		{"plus shopt before -c", "bash +O extglob -c 'git push -f'", "push", 1},
		{"here-document to shell", "bash <<'EOF'\ngit reset --hard\nEOF\n", "reset", 1},
		{"here-string to shell", "sudo sh <<< 'git stash clear'", "stash", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var found *NormalizedCommand
			cmds := Extract(tt.raw, DefaultMaxDepth)
			for i := range cmds {
				if cmds[i].IsGit() {
					found = &cmds[i]
					break
				}
			}
			if found == nil {
				t.Fatalf("Extract(%q) found no git command: %#v", tt.raw, cmds)
			}
			if found.Subcommand != tt.wantSub || found.Depth != tt.wantDepth {
				t.Errorf("got %s at depth %d, want %s at depth %d", found.Subcommand, found.Depth, tt.wantSub, tt.wantDepth)
			}
		})
	}
}
