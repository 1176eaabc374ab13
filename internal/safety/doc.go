// Package safety decides whether a shell command proposed by an agent may run.
//
// Autonomous agents issue shell commands through a PreToolUse hook. Most are
// harmless; a small family of git operations can destroy uncommitted work or
// rewrite shared history in one step. The safety package turns a raw command
// string into a Verdict (allow, warn, or block) by extracting every git
// invocation hidden in it and checking each against the rule table under the
// effective policy.
//
// # Threat Model
//
// T1 - Destructive Git Operations: force push, hard reset, forced clean,
// checkout or restore of paths, force branch delete, and stash drop or clear.
// Each is matched by a rule in package rules and answered with a safe
// alternative (--force-with-lease, stash, a dry run, or a merge-checked
// delete).
//
// T2 - Obfuscated Invocation: the same operations reached through command
// chaining (;, &&, ||, pipes, background jobs), benign wrappers (sudo, env,
// nice, nohup, time, command), path-qualified binaries, git global options
// (-C, -c, --git-dir), quoting tricks that split the word "git", or nested
// `bash -c` strings. Package shell undoes each of these before any rule runs.
// There is no substring fast path, since quoting can hide the word "git".
//
// T3 - Unbounded Nesting: shell invocations nested beyond the analysis depth
// are evaluated literally by default, or blocked outright when the depth-limit
// action is "block".
//
// T4 - Secret Disclosure: block and warning messages can echo parts of the
// command. All messages pass through package redact before they leave the
// process.
//
// # Design Principles
//
// Fail closed on internal faults: a panic during evaluation yields a Block
// verdict. Policy problems never fail: an unreadable tier is skipped and the
// built-in default (block everything) applies.
//
// Policy mode is global: one mode applies to every match, so the first enabled
// match decides the message and the outcome.
package safety
