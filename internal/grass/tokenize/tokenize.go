// Package tokenize splits one raw control-channel line into a command
// name and an argument vector, honoring quoting and backslash escapes the
// way the original line-editing scanner did: index-based iteration over a
// byte slice, no pointer arithmetic.
package tokenize

import (
	"strings"

	"github.com/gonzalop/grass/internal/grass"
)

// Line is the result of a successful tokenization.
type Line struct {
	Command string
	Argv    []string
}

const quoteChars = `'"` + "`"

// Tokenize splits raw into a command name and argument vector.
//
// The first whitespace-delimited word is the command name, matched
// exact-case. The remainder is scanned byte by byte: the first unescaped
// quote character (one of ' " `) opens a quoted region that runs until a
// matching quote of the same kind; inside a quoted region spaces are
// literal, outside one they separate arguments. A backslash immediately
// before a quote character escapes it (the backslash is dropped, the quote
// becomes literal); backslash has no other special meaning. An argument
// longer than grass.MaxArgLen is truncated, not rejected. Reaching the end
// of the line with a quote still open is MissingEndQuote.
func Tokenize(raw string) (*Line, error) {
	i := 0
	n := len(raw)

	for i < n && isSpace(raw[i]) {
		i++
	}
	start := i
	for i < n && !isSpace(raw[i]) {
		i++
	}
	if start == i {
		return nil, grass.New(grass.KindParseError, "empty command")
	}
	cmd := raw[start:i]

	argv, err := scanArgs(raw[i:])
	if err != nil {
		return nil, err
	}
	return &Line{Command: cmd, Argv: argv}, nil
}

func scanArgs(rest string) ([]string, error) {
	var argv []string
	var cur strings.Builder
	haveArg := false

	var quote byte // 0 means "not in a quoted region"
	escaped := false

	flush := func() {
		if haveArg {
			s := cur.String()
			if len(s) > grass.MaxArgLen {
				s = s[:grass.MaxArgLen]
			}
			argv = append(argv, s)
		}
		cur.Reset()
		haveArg = false
	}

	for i := 0; i < len(rest); i++ {
		c := rest[i]

		if escaped {
			if strings.IndexByte(quoteChars, c) < 0 {
				// Backslash only escapes quote characters; otherwise it is
				// literal alongside whatever follows it.
				cur.WriteByte('\\')
			}
			cur.WriteByte(c)
			haveArg = true
			escaped = false
			continue
		}

		if c == '\\' {
			escaped = true
			continue
		}

		if quote != 0 {
			if c == quote {
				quote = 0
				continue
			}
			cur.WriteByte(c)
			haveArg = true
			continue
		}

		if strings.IndexByte(quoteChars, c) >= 0 {
			quote = c
			haveArg = true
			continue
		}

		if isSpace(c) {
			flush()
			continue
		}

		cur.WriteByte(c)
		haveArg = true
	}

	if quote != 0 {
		return nil, grass.New(grass.KindParseError, "missing end quote")
	}
	flush()
	return argv, nil
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t'
}

// CheckArity reports a protocol violation if got does not equal want.
func CheckArity(got, want int) error {
	if got != want {
		return grass.New(grass.KindProtocolViolation, "wrong number of arguments")
	}
	return nil
}
