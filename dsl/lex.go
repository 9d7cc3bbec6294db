// Package dsl implements the textual Schema DSL and the JSON schema
// form described in SPEC_FULL.md §6: parsing and printing DataType
// expressions like "Decimal128(5, 2)" or
// "Timestamp(Millisecond, Some(\"UTC\"))", and field-descriptor arrays
// for full schemas.
//
// The tokenizer is adapted from the teacher's internal/cparse lexer:
// the same "classify each byte, accumulate the token's text, emit one
// token per call" shape, stripped down from
// C's lexical grammar to this DSL's much smaller one (identifiers,
// integers, quoted strings, and a handful of punctuation runes).
package dsl

import (
	"fmt"

	"github.com/aclements/arrowcodec/codecerr"
)

type tokKind uint8

const (
	tokEOF tokKind = iota
	tokIdent
	tokNumber
	tokString
	tokPunct
)

type tok struct {
	kind tokKind
	text string
}

type pos struct {
	line, col int
}

func (p pos) errorf(format string, args ...interface{}) error {
	return codecerr.New(codecerr.SchemaInvalid, "schema DSL %d:%d: %s", p.line, p.col, fmt.Sprintf(format, args...))
}

type lexer struct {
	src        []byte
	i          int
	line, col  int
}

func newLexer(src string) *lexer {
	return &lexer{src: []byte(src), line: 1, col: 1}
}

func (l *lexer) pos() pos { return pos{l.line, l.col} }

func (l *lexer) peekByte() byte {
	if l.i >= len(l.src) {
		return 0
	}
	return l.src[l.i]
}

func (l *lexer) advance() byte {
	c := l.src[l.i]
	l.i++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func isIdentStart(c byte) bool {
	return c == '_' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
func isIdentCont(c byte) bool { return isIdentStart(c) || isDigit(c) }
func isDigit(c byte) bool     { return '0' <= c && c <= '9' }
func isSpace(c byte) bool     { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// next scans and returns the next token.
func (l *lexer) next() (tok, error) {
	for l.i < len(l.src) && isSpace(l.peekByte()) {
		l.advance()
	}
	if l.i >= len(l.src) {
		return tok{kind: tokEOF}, nil
	}
	start := l.pos()
	c := l.peekByte()
	switch {
	case isIdentStart(c):
		begin := l.i
		for l.i < len(l.src) && isIdentCont(l.peekByte()) {
			l.advance()
		}
		return tok{kind: tokIdent, text: string(l.src[begin:l.i])}, nil

	case isDigit(c) || (c == '-' && l.i+1 < len(l.src) && isDigit(l.src[l.i+1])):
		begin := l.i
		if c == '-' {
			l.advance()
		}
		for l.i < len(l.src) && isDigit(l.peekByte()) {
			l.advance()
		}
		return tok{kind: tokNumber, text: string(l.src[begin:l.i])}, nil

	case c == '"':
		l.advance() // opening quote
		var buf []byte
		for {
			if l.i >= len(l.src) {
				return tok{}, start.errorf("unterminated string literal")
			}
			ch := l.advance()
			if ch == '"' {
				break
			}
			if ch == '\\' && l.i < len(l.src) {
				esc := l.advance()
				switch esc {
				case '"':
					buf = append(buf, '"')
				case '\\':
					buf = append(buf, '\\')
				default:
					buf = append(buf, '\\', esc)
				}
				continue
			}
			buf = append(buf, ch)
		}
		return tok{kind: tokString, text: string(buf)}, nil

	case c == '(' || c == ')' || c == '[' || c == ']' || c == '{' || c == '}' || c == ',' || c == ':':
		l.advance()
		return tok{kind: tokPunct, text: string(c)}, nil

	default:
		return tok{}, start.errorf("unexpected character %q", string(c))
	}
}

// toks is a small look-ahead buffer over the lexer, matching the
// Peek/Try/Next cursor idiom from the teacher's internal/cparse toks
// type.
type toks struct {
	lx  *lexer
	buf []tok
}

func newToks(src string) *toks { return &toks{lx: newLexer(src)} }

func (s *toks) fill(n int) error {
	for len(s.buf) <= n {
		t, err := s.lx.next()
		if err != nil {
			return err
		}
		s.buf = append(s.buf, t)
		if t.kind == tokEOF {
			break
		}
	}
	return nil
}

func (s *toks) peek() (tok, error) {
	if err := s.fill(0); err != nil {
		return tok{}, err
	}
	return s.buf[0], nil
}

func (s *toks) next() (tok, error) {
	t, err := s.peek()
	if err != nil {
		return tok{}, err
	}
	if len(s.buf) > 0 {
		s.buf = s.buf[1:]
	}
	return t, nil
}

func (s *toks) tryPunct(p string) (bool, error) {
	t, err := s.peek()
	if err != nil {
		return false, err
	}
	if t.kind == tokPunct && t.text == p {
		s.next()
		return true, nil
	}
	return false, nil
}

func (s *toks) expectPunct(p string) error {
	ok, err := s.tryPunct(p)
	if err != nil {
		return err
	}
	if !ok {
		t, _ := s.peek()
		return codecerr.New(codecerr.SchemaInvalid, "expected %q, got %q", p, t.text)
	}
	return nil
}

func (s *toks) expectIdent() (string, error) {
	t, err := s.next()
	if err != nil {
		return "", err
	}
	if t.kind != tokIdent {
		return "", codecerr.New(codecerr.SchemaInvalid, "expected identifier, got %q", t.text)
	}
	return t.text, nil
}

func (s *toks) expectString() (string, error) {
	t, err := s.next()
	if err != nil {
		return "", err
	}
	if t.kind != tokString {
		return "", codecerr.New(codecerr.SchemaInvalid, "expected string literal, got %q", t.text)
	}
	return t.text, nil
}

func (s *toks) expectNumber() (string, error) {
	t, err := s.next()
	if err != nil {
		return "", err
	}
	if t.kind != tokNumber {
		return "", codecerr.New(codecerr.SchemaInvalid, "expected number, got %q", t.text)
	}
	return t.text, nil
}

func (s *toks) atEOF() (bool, error) {
	t, err := s.peek()
	if err != nil {
		return false, err
	}
	return t.kind == tokEOF, nil
}
