package ink

import (
	"strings"

	"github.com/elcharitas/mjolnir/internal/frontend/token"
	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

func (p *parser) parseBlock() ([]ir.Statement, error) {
	if !p.cur.Accept("{") {
		return nil, model.NewSyntaxError(p.cur.Peek().Line, "expected '{'")
	}
	var out []ir.Statement
	for !p.cur.AtEOF() && !p.cur.Peek().Is("}") {
		st, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		if st != nil {
			out = append(out, *st)
		}
	}
	if !p.cur.Accept("}") {
		return nil, model.NewSyntaxError(p.cur.Peek().Line, "unterminated block")
	}
	return out, nil
}

func (p *parser) parseStatement() (*ir.Statement, error) {
	t := p.cur.Peek()
	switch t.Text {
	case "if":
		p.cur.Next()
		cond := p.condTokens()
		st := &ir.Statement{Kind: ir.StmtIf, Line: t.Line, Cond: joinTokens(cond)}
		applyExprFlags(st, cond)
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		st.Body = body
		if p.cur.Accept("else") {
			if p.cur.Peek().Is("if") {
				nested, err := p.parseStatement()
				if err != nil {
					return nil, err
				}
				st.Else = []ir.Statement{*nested}
			} else {
				els, err := p.parseBlock()
				if err != nil {
					return nil, err
				}
				st.Else = els
			}
		}
		return st, nil
	case "for", "while", "loop":
		p.cur.Next()
		st := &ir.Statement{Kind: ir.StmtLoop, Line: t.Line}
		if !t.Is("loop") {
			cond := p.condTokens()
			st.Cond = joinTokens(cond)
			applyExprFlags(st, cond)
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		st.Body = body
		return st, nil
	case "match":
		p.cur.Next()
		cond := p.condTokens()
		st := &ir.Statement{Kind: ir.StmtOther, Line: t.Line, Cond: joinTokens(cond)}
		applyExprFlags(st, cond)
		p.cur.SkipBalanced("{", "}")
		return st, nil
	case "return":
		p.cur.Next()
		expr := p.collectSimple()
		st := &ir.Statement{Kind: ir.StmtReturn, Line: t.Line, Expr: joinTokens(expr)}
		applyExprFlags(st, expr)
		return st, nil
	case "{":
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return &ir.Statement{Kind: ir.StmtOther, Line: t.Line, Body: body}, nil
	case ";":
		p.cur.Next()
		return nil, nil
	}
	toks := p.collectSimple()
	if len(toks) == 0 {
		return nil, nil
	}
	return p.classify(toks), nil
}

// condTokens collects a Rust condition: everything up to the opening brace.
func (p *parser) condTokens() []token.Token {
	var toks []token.Token
	depth := 0
	for !p.cur.AtEOF() {
		t := p.cur.Peek()
		if depth == 0 && t.Is("{") {
			break
		}
		switch t.Text {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		}
		toks = append(toks, p.cur.Next())
	}
	return toks
}

// collectSimple gathers one expression statement. A statement ending at the
// block's closing brace instead of a semicolon is a Rust tail expression.
func (p *parser) collectSimple() []token.Token {
	var toks []token.Token
	depth := 0
	for !p.cur.AtEOF() {
		t := p.cur.Peek()
		if depth == 0 && t.Is(";") {
			p.cur.Next()
			break
		}
		if depth == 0 && t.Is("}") {
			break
		}
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		}
		toks = append(toks, p.cur.Next())
	}
	return toks
}

func (p *parser) classify(toks []token.Token) *ir.Statement {
	st := &ir.Statement{Kind: ir.StmtOther, Line: toks[0].Line, Expr: joinTokens(toks)}
	applyExprFlags(st, toks)

	if isMacro(toks, "assert", "assert_eq", "assert_ne", "ensure") {
		st.Kind = ir.StmtRequire
		st.Cond = st.Expr
		return st
	}
	if ev, ok := findEmit(toks); ok {
		st.Kind = ir.StmtEmit
		st.Event = ev
		return st
	}
	if callee, delegate, terminate, ok := findExternalCall(toks); ok {
		st.Kind = ir.StmtExternalCall
		st.Callee = callee
		st.Delegate = delegate
		st.SelfDestruct = terminate
		return st
	}
	if idx := assignIndex(toks); idx > 0 {
		st.Kind = ir.StmtAssign
		st.Target = assignTarget(toks[:idx])
		rhs := toks[idx+1:]
		st.Expr = joinTokens(rhs)
		op := toks[idx].Text
		st.Arith = hasArith(rhs) || op == "+=" || op == "-=" || op == "*="
		if usesCheckedArith(rhs) {
			st.Arith = true
			st.Checked = true
		}
		return st
	}
	if toks[0].Text == "let" {
		st.Arith = hasArith(toks)
		if st.Arith {
			st.Checked = usesCheckedArith(toks)
		}
		return st
	}
	// tail expression acts as the function's return value
	if p.cur.Peek().Is("}") {
		st.Kind = ir.StmtReturn
	}
	return st
}

// isMacro detects `name!(...)` invocations.
func isMacro(toks []token.Token, names ...string) bool {
	if len(toks) < 3 || !toks[1].Is("!") {
		return false
	}
	for _, n := range names {
		if toks[0].Text == n {
			return true
		}
	}
	return false
}

// findEmit matches `self.env().emit_event(Name { .. })`.
func findEmit(toks []token.Token) (string, bool) {
	for i := 0; i+2 < len(toks); i++ {
		if toks[i].Text == "emit_event" && toks[i+1].Is("(") {
			if toks[i+2].Kind == token.Ident {
				return toks[i+2].Text, true
			}
			return "", true
		}
	}
	return "", false
}

// findExternalCall matches env transfer/invoke patterns and terminate.
func findExternalCall(toks []token.Token) (callee string, delegate, terminate, ok bool) {
	for i := 0; i < len(toks); i++ {
		switch toks[i].Text {
		case "transfer", "invoke", "try_invoke", "invoke_contract", "instantiate_contract", "build_call", "call_builder":
			if i+1 < len(toks) && (toks[i+1].Is("(") || toks[i+1].Is("::") || toks[i+1].Is("<")) {
				return calleeBefore(toks, i), containsIdent(toks, "delegate"), false, true
			}
		case "terminate_contract":
			return "", false, true, true
		}
	}
	return "", false, false, false
}

func calleeBefore(toks []token.Token, i int) string {
	depth := 0
	start := i
	for j := i - 1; j >= 0; j-- {
		t := toks[j]
		if t.Is(")") || t.Is("]") {
			depth++
			start = j
			continue
		}
		if t.Is("(") || t.Is("[") {
			if depth == 0 {
				break
			}
			depth--
			start = j
			continue
		}
		if depth == 0 && t.Kind == token.Punct && !t.Is(".") && !t.Is("::") {
			break
		}
		start = j
	}
	var parts []string
	for _, t := range toks[start:i] {
		parts = append(parts, t.Text)
	}
	return strings.TrimSuffix(strings.Join(parts, ""), ".")
}

func containsIdent(toks []token.Token, text string) bool {
	for _, t := range toks {
		if t.Kind == token.Ident && strings.Contains(strings.ToLower(t.Text), text) {
			return true
		}
	}
	return false
}

func assignIndex(toks []token.Token) int {
	depth := 0
	for i, t := range toks {
		switch t.Text {
		case "(", "[", "{":
			depth++
		case ")", "]", "}":
			depth--
		case "=", "+=", "-=", "*=", "/=":
			if depth == 0 && i > 0 && toks[0].Text != "let" {
				return i
			}
		}
	}
	return -1
}

// assignTarget resolves `self.field[...]` to the storage field name.
func assignTarget(lhs []token.Token) string {
	for i := 0; i+2 < len(lhs); i++ {
		if lhs[i].Text == "self" && lhs[i+1].Is(".") {
			return lhs[i+2].Text
		}
	}
	if len(lhs) > 0 {
		return lhs[0].Text
	}
	return ""
}

func hasArith(toks []token.Token) bool {
	for i, t := range toks {
		if t.Kind != token.Punct {
			continue
		}
		switch t.Text {
		case "+", "-", "*", "%":
			// `->` and `&mut` noise never reach here; skip unary minus
			if t.Text == "-" && (i == 0 || toks[i-1].Kind == token.Punct) {
				continue
			}
			return true
		}
	}
	return false
}

func usesCheckedArith(toks []token.Token) bool {
	for _, t := range toks {
		if t.Kind != token.Ident {
			continue
		}
		if strings.HasPrefix(t.Text, "checked_") || strings.HasPrefix(t.Text, "saturating_") {
			return true
		}
	}
	return false
}

func applyExprFlags(st *ir.Statement, toks []token.Token) {
	for _, t := range toks {
		switch t.Text {
		case "block_timestamp":
			st.ReadsTimestamp = true
		case "block_number", "random":
			st.ReadsBlockRand = true
		}
	}
}
