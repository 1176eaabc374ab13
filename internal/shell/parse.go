package shell

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// simpleCommand is one command invocation found in a command line: its
// words after quote removal, the segment it came from, and any script fed to
// it through a here-document or here-string.
type simpleCommand struct {
	Segment  Segment
	Words    []string
	Stdin    string
	HasStdin bool
}

// simpleCommands returns every simple command in raw, in source order.
//
// raw is parsed as bash, so commands inside subshells, groups, conditionals,
// loops, negations, functions and command substitutions are all found. When
// raw does not parse (an unterminated quote, a stray keyword) the operator
// splitter and tokenizer are used instead.
func simpleCommands(raw string) []simpleCommand {
	if cmds, ok := parseSimpleCommands(raw); ok {
		return cmds
	}

	var out []simpleCommand
	for _, seg := range Split(raw) {
		out = append(out, simpleCommand{Segment: seg, Words: Tokenize(seg.Text)})
	}
	return out
}

// Segments returns the pieces raw is broken into for analysis, one per
// simple command, each tagged with the operator that precedes it.
func Segments(raw string) []Segment {
	var out []Segment
	for _, c := range simpleCommands(raw) {
		out = append(out, c.Segment)
	}
	return out
}

func parseSimpleCommands(raw string) ([]simpleCommand, bool) {
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	file, err := parser.Parse(strings.NewReader(raw), "")
	if err != nil {
		return nil, false
	}

	ops := make(map[*syntax.Stmt]Operator)
	var (
		out  []simpleCommand
		last *syntax.Stmt
	)
	syntax.Walk(file, func(node syntax.Node) bool {
		for _, list := range stmtLists(node) {
			listOperators(list, ops)
		}

		switch n := node.(type) {
		case *syntax.Stmt:
			last = n
		case *syntax.BinaryCmd:
			// The left side inherits the operator in front of the whole
			// binary command; the right side follows its own.
			if _, ok := ops[n.X]; !ok && last != nil {
				ops[n.X] = ops[last]
			}
			ops[n.Y] = binaryOperator(n.Op)
		case *syntax.CallExpr:
			if len(n.Args) == 0 || last == nil {
				return true
			}
			cmd := simpleCommand{
				Segment: Segment{Text: stmtText(raw, last), Op: ops[last]},
				Words:   make([]string, 0, len(n.Args)),
			}
			for _, w := range n.Args {
				cmd.Words = append(cmd.Words, wordText(raw, w))
			}
			cmd.Stdin, cmd.HasStdin = stdinScript(raw, last.Redirs)
			out = append(out, cmd)
		}
		return true
	})
	return out, true
}

// stmtLists returns the statement lists held directly by node.
func stmtLists(node syntax.Node) [][]*syntax.Stmt {
	switch n := node.(type) {
	case *syntax.File:
		return [][]*syntax.Stmt{n.Stmts}
	case *syntax.Block:
		return [][]*syntax.Stmt{n.Stmts}
	case *syntax.Subshell:
		return [][]*syntax.Stmt{n.Stmts}
	case *syntax.CmdSubst:
		return [][]*syntax.Stmt{n.Stmts}
	case *syntax.ProcSubst:
		return [][]*syntax.Stmt{n.Stmts}
	case *syntax.IfClause:
		return [][]*syntax.Stmt{n.Cond, n.Then}
	case *syntax.WhileClause:
		return [][]*syntax.Stmt{n.Cond, n.Do}
	case *syntax.ForClause:
		return [][]*syntax.Stmt{n.Do}
	case *syntax.CaseItem:
		return [][]*syntax.Stmt{n.Stmts}
	}
	return nil
}

// listOperators records the terminator of each statement as the operator in
// front of the next one.
func listOperators(list []*syntax.Stmt, ops map[*syntax.Stmt]Operator) {
	for i := 1; i < len(list); i++ {
		prev := list[i-1]
		switch {
		case prev.Background:
			ops[list[i]] = OpBackground
		case prev.Semicolon.IsValid():
			ops[list[i]] = OpSequence
		default:
			ops[list[i]] = OpNewline
		}
	}
}

func binaryOperator(op syntax.BinCmdOperator) Operator {
	switch op {
	case syntax.AndStmt:
		return OpAnd
	case syntax.OrStmt:
		return OpOr
	case syntax.PipeAll:
		return OpPipeStderr
	default:
		return OpPipe
	}
}

// stmtText returns the source of s without its terminator.
func stmtText(raw string, s *syntax.Stmt) string {
	return strings.TrimRight(source(raw, s), " \t\r\n;&")
}

// source returns the text of raw that node was parsed from.
func source(raw string, node syntax.Node) string {
	start, end := int(node.Pos().Offset()), int(node.End().Offset())
	if end > len(raw) {
		end = len(raw)
	}
	if start < 0 || start > end {
		return ""
	}
	return raw[start:end]
}

// wordText returns the value of w after quote removal. Expansions cannot be
// resolved statically and are kept as written.
func wordText(raw string, w *syntax.Word) string {
	var sb strings.Builder
	for _, part := range w.Parts {
		writeWordPart(&sb, raw, part)
	}
	return sb.String()
}

func writeWordPart(sb *strings.Builder, raw string, part syntax.WordPart) {
	switch p := part.(type) {
	case *syntax.Lit:
		sb.WriteString(unescape(p.Value, ""))
	case *syntax.SglQuoted:
		sb.WriteString(p.Value)
	case *syntax.DblQuoted:
		for _, inner := range p.Parts {
			if lit, ok := inner.(*syntax.Lit); ok {
				sb.WriteString(unescape(lit.Value, "\"\\$`"))
				continue
			}
			sb.WriteString(source(raw, inner))
		}
	default:
		sb.WriteString(source(raw, part))
	}
}

// unescape removes backslash escapes from a literal. With only empty any
// character can be escaped, as outside quotes. Otherwise a backslash before
// a character not in only is kept. Backslash-newline is always removed.
func unescape(s, only string) string {
	if strings.IndexByte(s, '\\') < 0 {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		next := s[i+1]
		switch {
		case next == '\n':
			i++
		case only == "" || strings.IndexByte(only, next) >= 0:
			sb.WriteByte(next)
			i++
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// stdinScript returns the text a here-document or here-string feeds to
// standard input.
func stdinScript(raw string, redirs []*syntax.Redirect) (string, bool) {
	for _, r := range redirs {
		if r.N != nil && r.N.Value != "0" {
			continue
		}
		switch r.Op {
		case syntax.Hdoc, syntax.DashHdoc:
			if r.Hdoc != nil {
				return source(raw, r.Hdoc), true
			}
		case syntax.WordHdoc:
			if r.Word != nil {
				return wordText(raw, r.Word), true
			}
		}
	}
	return "", false
}
