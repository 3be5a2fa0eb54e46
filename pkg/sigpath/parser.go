package sigpath

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
)

// Parser reads .sigpath files back.
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser creates a new .sigpath parser instance.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(SigpathLexer),
		participle.Elide("Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("sigpath: failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Parse parses a .sigpath file from a reader.
func (p *Parser) Parse(r io.Reader) (*File, error) {
	f, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("sigpath: parse error: %w", err)
	}
	return f, nil
}

// ParseString parses a .sigpath file from a string.
func (p *Parser) ParseString(input string) (*File, error) {
	f, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("sigpath: parse error: %w", err)
	}
	return f, nil
}

// ParseFile parses a .sigpath file from a file path.
func (p *Parser) ParseFile(filename string) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("sigpath: failed to open file: %w", err)
	}
	defer file.Close()

	f, err := p.parser.Parse(filename, file)
	if err != nil {
		return nil, fmt.Errorf("sigpath: parse error: %w", err)
	}
	return f, nil
}
