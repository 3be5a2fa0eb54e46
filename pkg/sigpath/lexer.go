package sigpath

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// SigpathLexer splits a .sigpath file into words and line ends. Only
// spaces and tabs separate words; every line must end with a newline.
var SigpathLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "EOL", Pattern: `\r?\n`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "Word", Pattern: `[^\s]+`},
})
