package sexpr

import (
	"bufio"
	"fmt"
	"io"
	"unicode"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenLeftParen
	tokenRightParen
	tokenAtom
)

type token struct {
	typ   tokenType
	value string
}

// lexer tokenizes s-expressions. Whitespace separates atoms and a '#'
// starts a comment running to the end of the line.
type lexer struct {
	reader *bufio.Reader
	peeked *rune
}

func newLexer(r io.Reader) *lexer {
	return &lexer{reader: bufio.NewReader(r)}
}

func (l *lexer) next() (token, error) {
	for {
		ch, err := l.peek()
		if err == io.EOF {
			return token{typ: tokenEOF}, nil
		}
		if err != nil {
			return token{}, err
		}
		switch {
		case unicode.IsSpace(ch):
			l.read()
		case ch == '#':
			for {
				c, err := l.read()
				if err != nil || c == '\n' {
					break
				}
			}
		case ch == '(':
			l.read()
			return token{typ: tokenLeftParen}, nil
		case ch == ')':
			l.read()
			return token{typ: tokenRightParen}, nil
		case ch == '"':
			return l.readString()
		default:
			return l.readSymbol()
		}
	}
}

func (l *lexer) peek() (rune, error) {
	if l.peeked != nil {
		return *l.peeked, nil
	}
	ch, _, err := l.reader.ReadRune()
	if err != nil {
		return 0, err
	}
	l.peeked = &ch
	return ch, nil
}

func (l *lexer) read() (rune, error) {
	if l.peeked != nil {
		ch := *l.peeked
		l.peeked = nil
		return ch, nil
	}
	ch, _, err := l.reader.ReadRune()
	return ch, err
}

// readString decodes a quoted atom. Supported escapes are \n, \t, \r, \\
// and \".
func (l *lexer) readString() (token, error) {
	l.read()

	var out []rune
	for {
		ch, err := l.read()
		if err != nil {
			return token{}, fmt.Errorf("sexpr: unterminated string")
		}
		switch ch {
		case '"':
			return token{typ: tokenAtom, value: string(out)}, nil
		case '\\':
			next, err := l.read()
			if err != nil {
				return token{}, fmt.Errorf("sexpr: unterminated escape")
			}
			switch next {
			case 'n':
				out = append(out, '\n')
			case 't':
				out = append(out, '\t')
			case 'r':
				out = append(out, '\r')
			default:
				out = append(out, next)
			}
		default:
			out = append(out, ch)
		}
	}
}

func (l *lexer) readSymbol() (token, error) {
	var out []rune
	for {
		ch, err := l.peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return token{}, err
		}
		if unicode.IsSpace(ch) || ch == '(' || ch == ')' || ch == '"' {
			break
		}
		l.read()
		out = append(out, ch)
	}
	return token{typ: tokenAtom, value: string(out)}, nil
}
