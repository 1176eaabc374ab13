package shell

import "strings"

// Split breaks a command line into segments on top-level control operators:
// `;`, `&&`, `||`, `|`, `|&`, a single `&`, and unquoted newlines.
//
// Operators inside single or double quotes, or escaped with a backslash, do
// not split. An unterminated quote extends to the end of the input. The `&`
// of a redirection such as `2>&1` or `&>file` is not treated as an operator.
func Split(raw string) []Segment {
	var (
		segments []Segment
		cur      strings.Builder
		op       = OpNone
		inSingle bool
		inDouble bool
	)

	flush := func(next Operator) {
		if text := strings.TrimSpace(cur.String()); text != "" {
			segments = append(segments, Segment{Text: text, Op: op})
		}
		cur.Reset()
		op = next
	}

	for i := 0; i < len(raw); i++ {
		c := raw[i]

		if inSingle {
			cur.WriteByte(c)
			if c == '\'' {
				inSingle = false
			}
			continue
		}
		if inDouble {
			cur.WriteByte(c)
			if c == '\\' && i+1 < len(raw) {
				i++
				cur.WriteByte(raw[i])
				continue
			}
			if c == '"' {
				inDouble = false
			}
			continue
		}

		switch c {
		case '\\':
			cur.WriteByte(c)
			if i+1 < len(raw) {
				i++
				cur.WriteByte(raw[i])
			}
		case '\'':
			inSingle = true
			cur.WriteByte(c)
		case '"':
			inDouble = true
			cur.WriteByte(c)
		case ';':
			flush(OpSequence)
		case '\n':
			flush(OpNewline)
		case '&':
			switch {
			case i+1 < len(raw) && raw[i+1] == '&':
				i++
				flush(OpAnd)
			case isRedirectAmpersand(raw, i):
				cur.WriteByte(c)
			default:
				flush(OpBackground)
			}
		case '|':
			switch {
			case i+1 < len(raw) && raw[i+1] == '|':
				i++
				flush(OpOr)
			case i+1 < len(raw) && raw[i+1] == '&':
				i++
				flush(OpPipeStderr)
			case i > 0 && raw[i-1] == '>':
				// >| is a clobbering redirection, not a pipe.
				cur.WriteByte(c)
			default:
				flush(OpPipe)
			}
		default:
			cur.WriteByte(c)
		}
	}
	flush(OpNone)

	return segments
}

// isRedirectAmpersand reports whether the '&' at raw[i] belongs to a
// redirection (`2>&1`, `<&3`, `&>file`, `&>>file`).
func isRedirectAmpersand(raw string, i int) bool {
	if i > 0 && (raw[i-1] == '>' || raw[i-1] == '<') {
		return true
	}
	return i+1 < len(raw) && raw[i+1] == '>'
}
