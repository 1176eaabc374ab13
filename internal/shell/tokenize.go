package shell

import "strings"

// doubleQuoteEscapes are the characters a backslash escapes inside double quotes.
const doubleQuoteEscapes = "\"\\$"

// Tokenize splits a single segment into words using POSIX quoting rules.
//
// Whitespace separates words unless quoted. Single quotes are literal.
// Inside double quotes a backslash escapes only `"`, `\` and `$`. Outside
// quotes a backslash escapes the next character, and backslash-newline is a
// line continuation. Adjacent quoted and unquoted parts join into one word.
//
// An unquoted redirection (`>`, `>>`, `<`, `2>&1`, `&>`, `N>`) also ends a
// word. The operator, its file descriptor and its target are dropped.
//
// An unterminated quote never fails: the rest of the segment becomes part of
// the current word.
func Tokenize(segment string) []string {
	var (
		tokens     []string
		cur        strings.Builder
		inWord     bool
		dropTarget bool
	)

	emit := func() {
		if !inWord {
			return
		}
		if dropTarget {
			dropTarget = false
		} else {
			tokens = append(tokens, cur.String())
		}
		cur.Reset()
		inWord = false
	}

	redirect := func(i int) int {
		if inWord && isDigits(cur.String()) {
			cur.Reset()
			inWord = false
		} else {
			emit()
		}
		end, target := redirectOperator(segment, i)
		dropTarget = target
		return end - 1
	}

	s := segment
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case ' ', '\t', '\n', '\r':
			emit()

		case '<', '>':
			i = redirect(i)

		case '&':
			if i+1 < len(s) && s[i+1] == '>' {
				i = redirect(i)
				break
			}
			inWord = true
			cur.WriteByte(c)

		case '\'':
			inWord = true
			end := strings.IndexByte(s[i+1:], '\'')
			if end < 0 {
				cur.WriteString(s[i+1:])
				i = len(s)
			} else {
				cur.WriteString(s[i+1 : i+1+end])
				i += end + 1
			}

		case '"':
			inWord = true
			j := i + 1
			for ; j < len(s); j++ {
				d := s[j]
				if d == '\\' && j+1 < len(s) && strings.IndexByte(doubleQuoteEscapes, s[j+1]) >= 0 {
					j++
					cur.WriteByte(s[j])
					continue
				}
				if d == '"' {
					break
				}
				cur.WriteByte(d)
			}
			i = j

		case '\\':
			if i+1 >= len(s) {
				inWord = true
				cur.WriteByte(c)
				continue
			}
			i++
			if s[i] == '\n' {
				continue
			}
			inWord = true
			cur.WriteByte(s[i])

		default:
			inWord = true
			cur.WriteByte(c)
		}
	}
	emit()

	return tokens
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// redirectOperator returns the index just past the redirection operator
// starting at s[i], and whether the operator is followed by a target word.
// `>&-` and `<&-` close a descriptor and take no target.
func redirectOperator(s string, i int) (end int, hasTarget bool) {
	j := i
	if s[j] == '&' {
		j++
	}
	op := s[j]
	j++
	switch {
	case j < len(s) && s[j] == op:
		j++
		if op == '<' && j < len(s) && (s[j] == '<' || s[j] == '-') {
			j++
		}
	case op == '<' && j < len(s) && s[j] == '>':
		j++
	case j < len(s) && (s[j] == '&' || s[j] == '|'):
		j++
		if s[j-1] == '&' && j < len(s) && s[j] == '-' {
			return j + 1, false
		}
	}
	return j, true
}
