package convert

import (
	"strings"

	"github.com/elcharitas/mjolnir/internal/frontend/token"
	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// translateExpr rewrites a captured expression for the target dialect:
// environment accessors are swapped, storage field references gain or lose
// their self qualifier, and identifiers move to the target case convention.
// Best effort: anything it does not recognize passes through verbatim.
func translateExpr(expr string, m *ir.ContractModel, target model.Dialect) string {
	return translateExprQualify(expr, m, target, true)
}

// translateExprQualify is translateExpr with control over whether ink
// storage field references get the self qualifier; constructor bodies
// building a Self literal must not qualify.
func translateExprQualify(expr string, m *ir.ContractModel, target model.Dialect, selfQualify bool) string {
	toks := token.Scan(expr)
	if len(toks) > 0 && toks[len(toks)-1].Kind == token.EOF {
		toks = toks[:len(toks)-1]
	}
	if m.Dialect == target {
		// same dialect: conventions already match, just normalize spacing
		return render(toks)
	}
	fields := m.FieldNames()
	var out []token.Token
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		// environment accessors
		if target == model.DialectInk && t.Text == "msg" && matchPunct(toks, i+1, ".") {
			if textAt(toks, i+2) == "sender" {
				out = appendText(out, "self.env().caller()")
				i += 2
				continue
			}
			if textAt(toks, i+2) == "value" {
				out = appendText(out, "self.env().transferred_value()")
				i += 2
				continue
			}
		}
		if target == model.DialectSolidity && t.Text == "self" && matchPunct(toks, i+1, ".") {
			if textAt(toks, i+2) == "env" {
				// self.env().xyz(...) -> msg equivalent where one exists
				if j, method := envMethod(toks, i); j > 0 {
					switch method {
					case "caller":
						out = appendText(out, "msg.sender")
					case "transferred_value":
						out = appendText(out, "msg.value")
					case "block_timestamp":
						out = appendText(out, "block.timestamp")
					default:
						out = appendText(out, "msg.sender")
					}
					i = j
					continue
				}
			}
			// self.field -> field
			if fields[textAt(toks, i+2)] {
				out = append(out, token.Token{Kind: token.Ident, Text: toCamel(textAt(toks, i+2))})
				i += 2
				continue
			}
		}
		if t.Kind == token.Ident {
			name := t.Text
			qualified := i > 0 && toks[i-1].Is(".")
			if target == model.DialectInk {
				name = toSnake(name)
				if fields[t.Text] && !qualified && selfQualify {
					out = appendText(out, "self."+name)
					continue
				}
			} else if !qualified {
				name = toCamel(name)
			}
			out = append(out, token.Token{Kind: token.Ident, Text: name})
			continue
		}
		out = append(out, t)
	}
	return render(out)
}

// envMethod matches `self . env ( ) . <method> ( )` starting at the self
// token and returns the index of the closing paren plus the method name.
func envMethod(toks []token.Token, i int) (int, string) {
	// self . env ( ) . method ( )
	if textAt(toks, i+2) != "env" || !matchPunct(toks, i+3, "(") || !matchPunct(toks, i+4, ")") {
		return -1, ""
	}
	if !matchPunct(toks, i+5, ".") {
		return -1, ""
	}
	method := textAt(toks, i+6)
	if !matchPunct(toks, i+7, "(") || !matchPunct(toks, i+8, ")") {
		return -1, ""
	}
	return i + 8, method
}

func matchPunct(toks []token.Token, i int, text string) bool {
	return i < len(toks) && toks[i].Kind == token.Punct && toks[i].Text == text
}

func textAt(toks []token.Token, i int) string {
	if i < len(toks) {
		return toks[i].Text
	}
	return ""
}

func appendText(out []token.Token, text string) []token.Token {
	return append(out, token.Token{Kind: token.Ident, Text: text})
}

// render joins tokens back into readable source text.
func render(toks []token.Token) string {
	var b strings.Builder
	for i, t := range toks {
		if i > 0 && needsSpace(toks[i-1], t) {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

func needsSpace(prev, cur token.Token) bool {
	switch cur.Text {
	case "(", ")", "]", ",", ";", ".", "[":
		return false
	}
	switch prev.Text {
	case "(", "[", ".", "!":
		return false
	}
	return true
}
