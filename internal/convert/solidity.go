package convert

import (
	"strings"

	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

func (e *emitter) emitSolidity() string {
	m := e.model
	contract := toPascal(m.Name)

	e.line(0, "// SPDX-License-Identifier: MIT")
	e.line(0, "pragma solidity ^0.8.0;")
	e.blank()
	e.line(0, "contract %s {", contract)

	for _, f := range m.Fields {
		typ, note := mapTypeSolidity(f.Type)
		if note != "" {
			e.note("field %s: %s", f.Name, note)
		}
		decl := typ + " " + string(f.Visibility) + " " + toCamel(f.Name)
		if f.Default != "" {
			decl += " = " + f.Default
		}
		e.line(1, "%s;", decl)
	}

	for _, ev := range m.Events {
		e.blank()
		e.emitSolidityEventDecl(ev)
	}

	for _, c := range m.Constructors {
		e.blank()
		e.emitSolidityConstructor(c)
	}
	for _, fn := range m.Functions {
		e.blank()
		e.emitSolidityFunction(fn)
	}
	e.line(0, "}")
	return e.b.String()
}

func (e *emitter) emitSolidityEventDecl(ev ir.Event) {
	parts := make([]string, len(ev.Fields))
	for i, f := range ev.Fields {
		typ, note := mapTypeSolidity(f.Type)
		if note != "" {
			e.note("event %s field %s: %s", ev.Name, f.Name, note)
		}
		if f.Indexed {
			typ += " indexed"
		}
		parts[i] = typ + " " + toCamel(f.Name)
	}
	e.line(1, "event %s(%s);", toPascal(ev.Name), strings.Join(parts, ", "))
}

func (e *emitter) emitSolidityConstructor(c ir.Constructor) {
	e.line(1, "constructor(%s) {", e.solidityParams(c.Params))
	for _, st := range c.Body {
		if (st.Kind == ir.StmtReturn || st.Kind == ir.StmtOther) && e.crossDialect() {
			// an ink constructor ends in a Self literal; unpack it
			// into field assignments
			if pairs, ok := parseSelfLiteral(st.Expr); ok {
				for _, f := range e.model.Fields {
					if v, found := pairs[f.Name]; found {
						e.line(2, "%s = %s;", toCamel(f.Name), translateExpr(v, e.model, model.DialectSolidity))
					}
				}
				continue
			}
		}
		e.emitSolidityStatement(st, 2)
	}
	e.line(1, "}")
}

func (e *emitter) emitSolidityFunction(fn ir.Function) {
	var mods []string
	mods = append(mods, string(fn.Visibility))
	switch fn.Mutability {
	case ir.MutPure:
		mods = append(mods, "pure")
	case ir.MutView:
		mods = append(mods, "view")
	case ir.MutPayable:
		mods = append(mods, "payable")
	}
	header := "function " + toCamel(fn.Name) + "(" + e.solidityParams(fn.Params) + ") " + strings.Join(mods, " ")
	if fn.Returns != nil {
		typ, note := mapTypeSolidity(*fn.Returns)
		if note != "" {
			e.note("return of %s: %s", fn.Name, note)
		}
		if refType(*fn.Returns) {
			typ += " memory"
		}
		header += " returns (" + typ + ")"
	}
	e.line(1, "%s {", header)
	for _, st := range fn.Body {
		e.emitSolidityStatement(st, 2)
	}
	e.line(1, "}")
}

func (e *emitter) solidityParams(params []ir.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		typ, note := mapTypeSolidity(p.Type)
		if note != "" {
			e.note("parameter %s: %s", p.Name, note)
		}
		if refType(p.Type) {
			typ += " memory"
		}
		parts[i] = typ + " " + toCamel(p.Name)
	}
	return strings.Join(parts, ", ")
}

func (e *emitter) emitSolidityStatement(st ir.Statement, indent int) {
	switch st.Kind {
	case ir.StmtAssign:
		e.line(indent, "%s = %s;", toCamel(st.Target), translateExpr(st.Expr, e.model, model.DialectSolidity))
	case ir.StmtIf:
		e.line(indent, "if (%s) {", translateExpr(st.Cond, e.model, model.DialectSolidity))
		for _, inner := range st.Body {
			e.emitSolidityStatement(inner, indent+1)
		}
		if len(st.Else) > 0 {
			e.line(indent, "} else {")
			for _, inner := range st.Else {
				e.emitSolidityStatement(inner, indent+1)
			}
		}
		e.line(indent, "}")
	case ir.StmtLoop:
		cond := translateExpr(st.Cond, e.model, model.DialectSolidity)
		if cond == "" || strings.Contains(cond, " in ") {
			e.note("line %d: loop header approximated", st.Line)
			cond = "true"
		}
		e.line(indent, "while (%s) {", cond)
		for _, inner := range st.Body {
			e.emitSolidityStatement(inner, indent+1)
		}
		e.line(indent, "}")
	case ir.StmtRequire:
		cond := st.Cond
		if e.crossDialect() {
			// assert!(cond, "msg") keeps only the condition
			if args := callArgs(st.Expr, "assert", "ensure"); len(args) > 0 {
				cond = args[0]
				if strings.HasPrefix(strings.TrimSpace(st.Expr), "assert_eq") && len(args) >= 2 {
					cond = args[0] + " == " + args[1]
				}
			}
		}
		e.line(indent, "require(%s);", translateExpr(cond, e.model, model.DialectSolidity))
	case ir.StmtEmit:
		if !e.crossDialect() {
			e.line(indent, "emit %s(%s);", st.Event, translateExpr(st.Expr, e.model, model.DialectSolidity))
			return
		}
		e.emitSolidityEvent(st, indent)
	case ir.StmtReturn:
		if st.Expr == "" {
			e.line(indent, "return;")
		} else {
			e.line(indent, "return %s;", translateExpr(st.Expr, e.model, model.DialectSolidity))
		}
	case ir.StmtExternalCall:
		e.emitSolidityCall(st, indent)
	default:
		if len(st.Body) > 0 {
			for _, inner := range st.Body {
				e.emitSolidityStatement(inner, indent)
			}
			return
		}
		if e.crossDialect() {
			e.line(indent, "// untranslated: %s", st.Expr)
			e.note("line %d: statement has no direct Solidity translation", st.Line)
			return
		}
		e.line(indent, "%s;", translateExpr(st.Expr, e.model, model.DialectSolidity))
	}
}

func (e *emitter) emitSolidityEvent(st ir.Statement, indent int) {
	ev, ok := e.event(st.Event)
	pairs, okLit := inkEventArgs(st.Expr)
	if !ok || !okLit {
		e.line(indent, "// event %s elided", st.Event)
		e.note("line %d: event %s emission could not be reconstructed for solidity", st.Line, st.Event)
		return
	}
	args := make([]string, 0, len(ev.Fields))
	for _, f := range ev.Fields {
		v, found := pairs[f.Name]
		if !found {
			e.line(indent, "// event %s elided", st.Event)
			e.note("line %d: event %s emission could not be reconstructed for solidity", st.Line, st.Event)
			return
		}
		args = append(args, translateExpr(v, e.model, model.DialectSolidity))
	}
	e.line(indent, "emit %s(%s);", toPascal(ev.Name), strings.Join(args, ", "))
}

func (e *emitter) emitSolidityCall(st ir.Statement, indent int) {
	switch {
	case st.SelfDestruct:
		args := callArgs(st.Expr, "terminate_contract", "selfdestruct")
		beneficiary := "msg.sender"
		if len(args) == 1 {
			beneficiary = translateExpr(args[0], e.model, model.DialectSolidity)
		}
		e.line(indent, "selfdestruct(payable(%s));", beneficiary)
	case !e.crossDialect():
		e.line(indent, "%s;", translateExpr(st.Expr, e.model, model.DialectSolidity))
	default:
		// ink env transfers map onto a payable send
		args := callArgs(st.Expr, "transfer")
		if len(args) == 2 {
			to := translateExpr(args[0], e.model, model.DialectSolidity)
			amount := translateExpr(args[1], e.model, model.DialectSolidity)
			e.line(indent, "payable(%s).transfer(%s);", to, amount)
			return
		}
		e.line(indent, "// external call elided")
		e.note("line %d: external call could not be reconstructed for solidity", st.Line)
	}
}

// inkEventArgs parses `self.env().emit_event(Name { field: expr, ... })`
// captured text into field/value pairs.
func inkEventArgs(expr string) (map[string]string, bool) {
	open := strings.Index(expr, "{")
	closing := strings.LastIndex(expr, "}")
	if open < 0 || closing < open {
		return nil, false
	}
	pairs := map[string]string{}
	for _, part := range splitTop(expr[open+1 : closing]) {
		kv := strings.SplitN(part, ":", 2)
		name := strings.TrimSpace(kv[0])
		if name == "" {
			continue
		}
		if len(kv) == 1 {
			pairs[name] = name
			continue
		}
		pairs[name] = strings.TrimSpace(kv[1])
	}
	return pairs, true
}
