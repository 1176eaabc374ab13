package rules

import "strings"

// Analyzer inspects a git subcommand's arguments.
type Analyzer interface {
	Analyze(args []string, opts Options) *Rule
}

// AnalyzerFunc adapts a function to Analyzer.
type AnalyzerFunc func(args []string, opts Options) *Rule

// Analyze calls f.
func (f AnalyzerFunc) Analyze(args []string, opts Options) *Rule {
	return f(args, opts)
}

// analyzers maps each guarded git subcommand to its analyzer.
var analyzers = map[string]Analyzer{
	"push":     AnalyzerFunc(analyzePush),
	"reset":    AnalyzerFunc(analyzeReset),
	"branch":   AnalyzerFunc(analyzeBranch),
	"stash":    AnalyzerFunc(analyzeStash),
	"clean":    AnalyzerFunc(analyzeClean),
	"checkout": AnalyzerFunc(analyzeCheckout),
	"restore":  AnalyzerFunc(analyzeRestore),
}

// analyzePush flags --force, -f and clusters containing f, +refspecs, and
// --mirror. A lease only excuses +refspecs; an explicit force flag still
// matches when --force-with-lease is also present.
func analyzePush(args []string, opts Options) *Rule {
	flags := optionArgs(args)

	if hasExact(flags, "--force") || opts.hasShort(flags, 'f') {
		return mustLookup(IDForcePush)
	}
	if !hasLong(flags, "--force-with-lease", 0) && hasForceRefspec(args) {
		return mustLookup(IDForceRefspec)
	}
	if hasLong(flags, "--mirror", 4) {
		return mustLookup(IDPushMirror)
	}
	return nil
}

// hasForceRefspec reports whether a positional argument is a refspec with a
// leading '+', including the ":+" form.
func hasForceRefspec(args []string) bool {
	for i, a := range args {
		if a == "--" {
			for _, p := range args[i+1:] {
				if isForceRefspec(p) {
					return true
				}
			}
			return false
		}
		if strings.HasPrefix(a, "-") {
			continue
		}
		if isForceRefspec(a) {
			return true
		}
	}
	return false
}

func isForceRefspec(a string) bool {
	return (len(a) > 1 && a[0] == '+') || strings.Contains(a, ":+")
}

func analyzeReset(args []string, _ Options) *Rule {
	if hasLong(optionArgs(args), "--hard", 4) {
		return mustLookup(IDResetHard)
	}
	return nil
}

// analyzeBranch flags -D and the combination of a delete flag with a force flag.
func analyzeBranch(args []string, opts Options) *Rule {
	flags := optionArgs(args)

	if opts.hasShort(flags, 'D') {
		return mustLookup(IDBranchForceDelete)
	}
	del := hasLong(flags, "--delete", 4) || opts.hasShort(flags, 'd')
	force := hasLong(flags, "--force", 6) || opts.hasShort(flags, 'f')
	if del && force {
		return mustLookup(IDBranchForceDelete)
	}
	return nil
}

func analyzeStash(args []string, _ Options) *Rule {
	switch firstPositional(args) {
	case "drop":
		return mustLookup(IDStashDrop)
	case "clear":
		return mustLookup(IDStashClear)
	}
	return nil
}

// analyzeClean flags forced cleans. Any dry-run flag makes the command safe.
func analyzeClean(args []string, opts Options) *Rule {
	flags := optionArgs(args)

	if hasLong(flags, "--dry-run", 4) || opts.hasShort(flags, 'n') {
		return nil
	}
	if hasLong(flags, "--force", 3) || opts.hasShort(flags, 'f') {
		return mustLookup(IDCleanForce)
	}
	return nil
}

// analyzeCheckout flags `checkout [<tree-ish>] -- <path>...`.
func analyzeCheckout(args []string, _ Options) *Rule {
	for i, a := range args {
		if a == "--" {
			if i < len(args)-1 {
				return mustLookup(IDCheckoutPath)
			}
			return nil
		}
	}
	return nil
}

// analyzeRestore flags restores that touch the working tree. Only a restore
// limited to the index (--staged without --worktree) is safe, and a restore
// with no pathspec does nothing.
func analyzeRestore(args []string, _ Options) *Rule {
	var staged, worktree, hasPaths bool

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--":
			hasPaths = hasPaths || i < len(args)-1
			i = len(args)
		case isLong(a, "--staged", 5):
			staged = true
		case isLong(a, "--worktree", 3):
			worktree = true
		case isLong(a, "--pathspec-from-file", 6):
			hasPaths = true
		case a == "--source" || a == "-s":
			i++
		case strings.HasPrefix(a, "--"):
		case isShortCluster(a):
			staged = staged || strings.IndexByte(a, 'S') > 0
			worktree = worktree || strings.IndexByte(a, 'W') > 0
			if a[len(a)-1] == 's' {
				i++
			}
		case strings.HasPrefix(a, "-s"):
			// -s<tree> with the source attached.
		default:
			hasPaths = true
		}
	}

	if !hasPaths {
		return nil
	}
	if staged && !worktree {
		return nil
	}
	return mustLookup(IDRestoreWorktree)
}
