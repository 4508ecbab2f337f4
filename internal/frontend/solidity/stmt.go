package solidity

import (
	"strings"

	"github.com/elcharitas/mjolnir/internal/frontend/token"
	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// parseBlock lowers a `{ ... }` body into IR statements. The cursor must
// sit on the opening brace.
func (p *parser) parseBlock() ([]ir.Statement, error) {
	if !p.cur.Accept("{") {
		return nil, model.NewSyntaxError(p.cur.Peek().Line, "expected '{'")
	}
	return p.parseStatements(false)
}

func (p *parser) parseStatements(unchecked bool) ([]ir.Statement, error) {
	var out []ir.Statement
	for !p.cur.AtEOF() && !p.cur.Peek().Is("}") {
		st, err := p.parseStatement(unchecked)
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

func (p *parser) parseStatement(unchecked bool) (*ir.Statement, error) {
	t := p.cur.Peek()
	switch t.Text {
	case "if":
		p.cur.Next()
		cond := p.cur.SkipBalanced("(", ")")
		st := &ir.Statement{Kind: ir.StmtIf, Line: t.Line, Cond: joinTokens(cond)}
		applyExprFlags(st, cond)
		body, err := p.branchBody(unchecked)
		if err != nil {
			return nil, err
		}
		st.Body = body
		if p.cur.Accept("else") {
			els, err := p.branchBody(unchecked)
			if err != nil {
				return nil, err
			}
			st.Else = els
		}
		return st, nil
	case "for", "while":
		p.cur.Next()
		header := p.cur.SkipBalanced("(", ")")
		st := &ir.Statement{Kind: ir.StmtLoop, Line: t.Line, Cond: joinTokens(header)}
		applyExprFlags(st, header)
		body, err := p.branchBody(unchecked)
		if err != nil {
			return nil, err
		}
		st.Body = body
		return st, nil
	case "do":
		p.cur.Next()
		st := &ir.Statement{Kind: ir.StmtLoop, Line: t.Line}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		st.Body = body
		p.cur.Accept("while")
		cond := p.cur.SkipBalanced("(", ")")
		st.Cond = joinTokens(cond)
		p.cur.Accept(";")
		return st, nil
	case "unchecked":
		p.cur.Next()
		if !p.cur.Accept("{") {
			return nil, model.NewSyntaxError(t.Line, "expected block after unchecked")
		}
		body, err := p.parseStatements(true)
		if err != nil {
			return nil, err
		}
		if len(body) == 0 {
			return nil, nil
		}
		return &ir.Statement{Kind: ir.StmtOther, Line: t.Line, Body: body}, nil
	case "require", "assert":
		p.cur.Next()
		args := p.cur.SkipBalanced("(", ")")
		p.cur.Accept(";")
		st := &ir.Statement{Kind: ir.StmtRequire, Line: t.Line, Cond: joinTokens(args)}
		applyExprFlags(st, args)
		return st, nil
	case "emit":
		p.cur.Next()
		name := p.cur.Next()
		args := p.cur.SkipBalanced("(", ")")
		p.cur.Accept(";")
		return &ir.Statement{Kind: ir.StmtEmit, Line: t.Line, Event: name.Text, Expr: joinTokens(args)}, nil
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
	return p.classify(toks, unchecked), nil
}

// branchBody parses either a braced block or a single statement.
func (p *parser) branchBody(unchecked bool) ([]ir.Statement, error) {
	if p.cur.Peek().Is("{") {
		return p.parseBlock()
	}
	st, err := p.parseStatement(unchecked)
	if err != nil || st == nil {
		return nil, err
	}
	return []ir.Statement{*st}, nil
}

// collectSimple gathers tokens up to the terminating semicolon, skipping
// over nested bracketed regions.
func (p *parser) collectSimple() []token.Token {
	var toks []token.Token
	depth := 0
	for !p.cur.AtEOF() {
		t := p.cur.Peek()
		if depth == 0 && (t.Is(";") || t.Is("}")) {
			p.cur.Accept(";")
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

// classify decides what a simple statement is from its token stream.
func (p *parser) classify(toks []token.Token, unchecked bool) *ir.Statement {
	st := &ir.Statement{Kind: ir.StmtOther, Line: toks[0].Line, Expr: joinTokens(toks)}
	applyExprFlags(st, toks)

	if callee, method, ok := findExternalCall(toks); ok {
		st.Kind = ir.StmtExternalCall
		st.Callee = callee
		st.Delegate = method == "delegatecall"
		st.ConstCallee = strings.HasPrefix(callee, "0x")
	}
	if toks[0].Text == "selfdestruct" || toks[0].Text == "suicide" {
		st.Kind = ir.StmtExternalCall
		st.SelfDestruct = true
	}
	if idx := assignIndex(toks); idx > 0 {
		st.Kind = ir.StmtAssign
		st.Target = toks[0].Text
		rhs := toks[idx+1:]
		op := toks[idx].Text
		st.Expr = joinTokens(rhs)
		st.Arith = hasArith(rhs) || op == "+=" || op == "-=" || op == "*="
		if usesSafeMath(rhs) {
			st.Arith = true
			st.Checked = true
		} else if st.Arith {
			st.Checked = p.checkedByDefault && !unchecked
		}
		if callee, method, ok := findExternalCall(rhs); ok {
			// assignment capturing a call result is still an external call
			st.Kind = ir.StmtExternalCall
			st.Callee = callee
			st.Delegate = method == "delegatecall"
			st.Target = toks[0].Text
		}
	} else if toks[len(toks)-1].Text == "++" || toks[len(toks)-1].Text == "--" {
		st.Kind = ir.StmtAssign
		st.Target = toks[0].Text
		st.Arith = true
		st.Checked = p.checkedByDefault && !unchecked
	}
	return st
}

// findExternalCall scans for `.call(`, `.delegatecall(`, `.staticcall(`,
// `.send(` and `.transfer(` patterns and returns the callee expression.
func findExternalCall(toks []token.Token) (callee, method string, ok bool) {
	for i := 0; i+2 < len(toks); i++ {
		if !toks[i].Is(".") {
			continue
		}
		m := toks[i+1].Text
		switch m {
		case "call", "delegatecall", "staticcall", "send", "transfer":
		default:
			continue
		}
		if !toks[i+2].Is("(") && !toks[i+2].Is("{") {
			continue
		}
		return calleeBefore(toks, i), m, true
	}
	return "", "", false
}

// calleeBefore reconstructs the expression preceding the dot at index i,
// walking back over balanced brackets and member accesses.
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
		if depth == 0 && t.Kind == token.Punct && !t.Is(".") {
			break
		}
		start = j
	}
	var parts []string
	for _, t := range toks[start:i] {
		parts = append(parts, t.Text)
	}
	return strings.Join(parts, "")
}

// assignIndex finds a top-level assignment operator, returning its index.
func assignIndex(toks []token.Token) int {
	depth := 0
	for i, t := range toks {
		switch t.Text {
		case "(", "[":
			depth++
		case ")", "]":
			depth--
		case "=", "+=", "-=", "*=", "/=":
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func hasArith(toks []token.Token) bool {
	for _, t := range toks {
		if t.Kind == token.Punct {
			switch t.Text {
			case "+", "-", "*", "**", "%":
				return true
			}
		}
	}
	return false
}

func usesSafeMath(toks []token.Token) bool {
	for i := 0; i+1 < len(toks); i++ {
		if toks[i].Is(".") {
			switch toks[i+1].Text {
			case "add", "sub", "mul", "div", "mod":
				return true
			}
		}
	}
	return false
}

func applyExprFlags(st *ir.Statement, toks []token.Token) {
	for i, t := range toks {
		switch t.Text {
		case "now", "blockhash":
			if t.Text == "now" {
				st.ReadsTimestamp = true
			} else {
				st.ReadsBlockRand = true
			}
		case "block":
			if i+2 < len(toks) && toks[i+1].Is(".") {
				switch toks[i+2].Text {
				case "timestamp":
					st.ReadsTimestamp = true
				case "difficulty", "prevrandao":
					st.ReadsBlockRand = true
				}
			}
		case "tx":
			if i+2 < len(toks) && toks[i+1].Is(".") && toks[i+2].Text == "origin" {
				st.ReadsTxOrigin = true
			}
		}
	}
}

func joinTokens(toks []token.Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}
