package path

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ikalinin1/gestalt/result"
)

// eof is the sentinel rune returned by next() past the end of input,
// mirroring the teacher's lexer (pkg/yang/lex.go) which reserves an
// out-of-range rune value for the same purpose.
const eof = -1

// lexer holds the scanning state for one path string. Unlike the teacher's
// channel-fed state-function lexer (built for streaming whole YANG files),
// gestalt paths are short enough that the lexer simply appends tokens to a
// slice as it walks; the state-function shape (stateFn, next/backup/peek)
// is kept because it is what makes the teacher's scanner easy to extend and
// to reason about one rune at a time.
type lexer struct {
	context string // name of the path for error messages, e.g. "db.port"
	input   string
	pos     int
	width   int
	tokens  []Token
	errs    []result.ValidationError
}

type stateFn func(*lexer) stateFn

// Tokenize parses a path string into a token sequence. On any malformed
// input (unmatched brackets, non-integer or negative indices, empty
// segments) it returns a value-less result carrying a single
// FailedToTokenize error at ERROR level — spec.md §4.1 is explicit that a
// tokenize failure produces no partial results.
func Tokenize(p, context string) result.R[[]Token] {
	l := &lexer{context: context, input: p}
	for state := lexSegment; state != nil; {
		state = state(l)
	}
	if len(l.errs) > 0 {
		return result.Invalid[[]Token](l.errs...)
	}
	return result.Valid(l.tokens)
}

func (l *lexer) fail(format string, v ...interface{}) stateFn {
	msg := l.context + ": " + fmt.Sprintf(format, v...)
	l.errs = append(l.errs, result.NewError(result.FailedToTokenize, result.ERROR, "%s", msg))
	return nil
}

func (l *lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r := rune(l.input[l.pos])
	l.width = 1
	l.pos += l.width
	return r
}

func (l *lexer) backup() {
	l.pos -= l.width
}

func (l *lexer) peek() rune {
	r := l.next()
	l.backup()
	return r
}

// lexSegment reads one "." separated segment: an identifier optionally
// followed by one or more "[index]" suffixes.
func lexSegment(l *lexer) stateFn {
	start := l.pos
	for {
		switch c := l.peek(); c {
		case eof, '.', '[':
			name := l.input[start:l.pos]
			if name == "" {
				return l.fail("empty path segment")
			}
			l.tokens = append(l.tokens, NewObject(name))
			return lexAfterSegment
		default:
			if c == ']' {
				return l.fail("unmatched ']'")
			}
			l.next()
		}
	}
}

// lexAfterSegment decides whether the segment is followed by index
// suffixes, a "." separator, or the end of input.
func lexAfterSegment(l *lexer) stateFn {
	switch c := l.peek(); c {
	case eof:
		return nil
	case '[':
		return lexIndex
	case '.':
		l.next()
		if l.peek() == eof {
			return l.fail("trailing '.'")
		}
		return lexSegment
	default:
		return l.fail("expected '.' or '[' after segment, found %q", string(c))
	}
}

// lexIndex reads "[" digits "]" and emits an Array token.
func lexIndex(l *lexer) stateFn {
	l.next() // consume '['
	start := l.pos
	for {
		switch c := l.peek(); {
		case c == ']':
			digits := l.input[start:l.pos]
			l.next() // consume ']'
			if digits == "" {
				return l.fail("empty array index")
			}
			if strings.HasPrefix(digits, "-") {
				return l.fail("negative array index: %s", digits)
			}
			n, err := strconv.ParseUint(digits, 10, 32)
			if err != nil {
				return l.fail("non-integer array index: %s", digits)
			}
			l.tokens = append(l.tokens, NewArray(uint32(n)))
			return lexAfterIndex
		case c == eof:
			return l.fail("unmatched '['")
		default:
			l.next()
		}
	}
}

// lexAfterIndex allows chained indices ("a[1][2]") or a following segment.
func lexAfterIndex(l *lexer) stateFn {
	switch c := l.peek(); c {
	case eof:
		return nil
	case '[':
		return lexIndex
	case '.':
		l.next()
		if l.peek() == eof {
			return l.fail("trailing '.'")
		}
		return lexSegment
	default:
		return l.fail("expected '.' or '[' after index, found %q", string(c))
	}
}
