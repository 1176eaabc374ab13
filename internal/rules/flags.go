package rules

import "strings"

// ClusterMode selects how combined short-flag clusters are interpreted.
type ClusterMode string

const (
	// ClusterAny treats any single-dash cluster containing a letter as that flag.
	ClusterAny ClusterMode = "any"

	// ClusterDocumented recognizes only the exact flag and a fixed set of
	// commonly documented clusters.
	ClusterDocumented ClusterMode = "documented"
)

// ParseClusterMode returns ClusterDocumented for "documented" and ClusterAny
// for anything else.
func ParseClusterMode(s string) ClusterMode {
	if ClusterMode(strings.ToLower(strings.TrimSpace(s))) == ClusterDocumented {
		return ClusterDocumented
	}
	return ClusterAny
}

// Options tunes argument interpretation.
type Options struct {
	Clusters ClusterMode
}

// DefaultOptions interprets clusters conservatively.
func DefaultOptions() Options {
	return Options{Clusters: ClusterAny}
}

// documentedClusters are the combined forms recognized in ClusterDocumented mode.
var documentedClusters = map[string]bool{
	"-fd": true, "-df": true,
	"-fx": true, "-xf": true,
	"-fX": true, "-Xf": true,
	"-fdx": true, "-fxd": true, "-dfx": true, "-dxf": true, "-xdf": true, "-xfd": true,
	"-ffd": true, "-ffdx": true,
	"-fu": true, "-uf": true,
}

// optionArgs returns the arguments before a "--" end-of-options marker.
func optionArgs(args []string) []string {
	for i, a := range args {
		if a == "--" {
			return args[:i]
		}
	}
	return args
}

// isShortCluster reports whether tok is a single-dash option group like -fd.
func isShortCluster(tok string) bool {
	if len(tok) < 2 || tok[0] != '-' || tok[1] == '-' {
		return false
	}
	for i := 1; i < len(tok); i++ {
		c := tok[i]
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z') {
			return false
		}
	}
	return true
}

// hasShort reports whether any token sets the short flag letter.
func (o Options) hasShort(args []string, letter byte) bool {
	for _, a := range args {
		if !isShortCluster(a) || strings.IndexByte(a[1:], letter) < 0 {
			continue
		}
		if len(a) == 2 || o.Clusters != ClusterDocumented || documentedClusters[a] {
			return true
		}
	}
	return false
}

// isLong reports whether tok is the long option name, its --name=value form,
// or an abbreviation of it at least minLen bytes long. git accepts unique
// abbreviations of long options.
func isLong(tok, name string, minLen int) bool {
	if tok == name || strings.HasPrefix(tok, name+"=") {
		return true
	}
	if minLen <= 0 || minLen > len(name) {
		return false
	}
	return len(tok) >= minLen && strings.HasPrefix(name, tok)
}

func hasLong(args []string, name string, minLen int) bool {
	for _, a := range args {
		if isLong(a, name, minLen) {
			return true
		}
	}
	return false
}

func hasExact(args []string, tok string) bool {
	for _, a := range args {
		if a == tok {
			return true
		}
	}
	return false
}

// firstPositional returns the first argument that is not an option.
func firstPositional(args []string) string {
	for _, a := range args {
		if a == "--" {
			return ""
		}
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}
