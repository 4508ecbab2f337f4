package token

import "strings"

type Kind int

const (
	EOF Kind = iota
	Ident
	Number
	String
	Punct
)

type Token struct {
	Kind Kind
	Text string
	Line int
}

func (t Token) Is(text string) bool { return t.Text == text }

// multi-character operators recognized by the scanner; longest match wins.
var operators = []string{
	"=>", "->", "::", "==", "!=", "<=", ">=", "+=", "-=", "*=", "/=",
	"&&", "||", "**", "++", "--", "..",
}

// Scan tokenizes source shared-C-family style: identifiers, numeric and
// string literals, punctuation, with // and /* */ comments skipped. Both
// dialects lex cleanly under these rules; dialect-specific syntax like
// Rust attributes arrives as punctuation for the parser to assemble.
func Scan(src string) []Token {
	var toks []Token
	line := 1
	i := 0
	n := len(src)
	for i < n {
		c := src[i]
		switch {
		case c == '\n':
			line++
			i++
		case c == ' ' || c == '\t' || c == '\r':
			i++
		case c == '/' && i+1 < n && src[i+1] == '/':
			for i < n && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && src[i+1] == '*':
			i += 2
			for i+1 < n && !(src[i] == '*' && src[i+1] == '/') {
				if src[i] == '\n' {
					line++
				}
				i++
			}
			i += 2
		case c == '"' || c == '\'':
			quote := c
			start := i
			i++
			for i < n && src[i] != quote {
				if src[i] == '\\' {
					i++
				}
				if i < n && src[i] == '\n' {
					line++
				}
				i++
			}
			if i < n {
				i++
			}
			toks = append(toks, Token{Kind: String, Text: src[start:i], Line: line})
		case isIdentStart(c):
			start := i
			for i < n && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, Token{Kind: Ident, Text: src[start:i], Line: line})
		case c >= '0' && c <= '9':
			start := i
			for i < n && (isIdentPart(src[i]) || src[i] == '.') {
				// 0x literals and underscored digits lex as one token
				if src[i] == '.' && i+1 < n && src[i+1] == '.' {
					break
				}
				i++
			}
			toks = append(toks, Token{Kind: Number, Text: src[start:i], Line: line})
		default:
			matched := false
			for _, op := range operators {
				if strings.HasPrefix(src[i:], op) {
					toks = append(toks, Token{Kind: Punct, Text: op, Line: line})
					i += len(op)
					matched = true
					break
				}
			}
			if !matched {
				toks = append(toks, Token{Kind: Punct, Text: string(c), Line: line})
				i++
			}
		}
	}
	toks = append(toks, Token{Kind: EOF, Line: line})
	return toks
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// Cursor is a small helper for recursive-descent parsing over a token slice.
type Cursor struct {
	Toks []Token
	Pos  int
}

func NewCursor(toks []Token) *Cursor { return &Cursor{Toks: toks} }

func (c *Cursor) Peek() Token {
	if c.Pos >= len(c.Toks) {
		return Token{Kind: EOF}
	}
	return c.Toks[c.Pos]
}

func (c *Cursor) PeekAt(offset int) Token {
	if c.Pos+offset >= len(c.Toks) {
		return Token{Kind: EOF}
	}
	return c.Toks[c.Pos+offset]
}

func (c *Cursor) Next() Token {
	t := c.Peek()
	if t.Kind != EOF {
		c.Pos++
	}
	return t
}

// Accept consumes the next token when its text matches.
func (c *Cursor) Accept(text string) bool {
	if c.Peek().Text == text {
		c.Pos++
		return true
	}
	return false
}

func (c *Cursor) AtEOF() bool { return c.Peek().Kind == EOF }

// SkipBalanced consumes a bracketed region assuming the cursor sits on the
// opening token. Returns the tokens between the brackets.
func (c *Cursor) SkipBalanced(open, close string) []Token {
	if !c.Accept(open) {
		return nil
	}
	depth := 1
	start := c.Pos
	for !c.AtEOF() {
		t := c.Next()
		if t.Text == open {
			depth++
		} else if t.Text == close {
			depth--
			if depth == 0 {
				return c.Toks[start : c.Pos-1]
			}
		}
	}
	return c.Toks[start:c.Pos]
}
