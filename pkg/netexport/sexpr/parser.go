package sexpr

import (
	"fmt"
	"io"
	"strings"
)

// Parse reads every top-level expression from r.
func Parse(r io.Reader) ([]Node, error) {
	lx := newLexer(r)
	var out []Node
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		if tok.typ == tokenEOF {
			return out, nil
		}
		n, err := parseExpr(lx, tok)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
}

// ParseString is Parse over a string.
func ParseString(s string) ([]Node, error) {
	return Parse(strings.NewReader(s))
}

func parseExpr(lx *lexer, tok token) (Node, error) {
	switch tok.typ {
	case tokenAtom:
		return Atom(tok.value), nil
	case tokenLeftParen:
		return parseList(lx)
	case tokenRightParen:
		return nil, fmt.Errorf("sexpr: unexpected ')'")
	default:
		return nil, fmt.Errorf("sexpr: unexpected end of input")
	}
}

func parseList(lx *lexer) (*List, error) {
	l := &List{}
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		switch tok.typ {
		case tokenRightParen:
			return l, nil
		case tokenEOF:
			return nil, fmt.Errorf("sexpr: unexpected end of input in list")
		}
		n, err := parseExpr(lx, tok)
		if err != nil {
			return nil, err
		}
		l.elems = append(l.elems, n)
	}
}
