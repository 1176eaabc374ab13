// Command safety-net is a PreToolUse hook that blocks destructive git
// commands proposed by coding agents.
package main

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	Execute()
}
