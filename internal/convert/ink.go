package convert

import (
	"fmt"
	"strings"

	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

func (e *emitter) emitInk() string {
	m := e.model
	modName := toSnake(m.Name)
	contract := toPascal(m.Name)

	e.line(0, "#![cfg_attr(not(feature = \"std\"), no_std, no_main)]")
	e.blank()
	e.line(0, "#[ink::contract]")
	e.line(0, "mod %s {", modName)
	if e.usesMapping() {
		e.line(1, "use ink::storage::Mapping;")
		e.blank()
	}

	e.line(1, "#[ink(storage)]")
	e.line(1, "pub struct %s {", contract)
	for _, f := range m.Fields {
		typ, note := mapTypeInk(f.Type)
		if note != "" {
			e.note("field %s: %s", f.Name, note)
		}
		vis := ""
		if f.Visibility == ir.VisPublic {
			vis = "pub "
		}
		e.line(2, "%s%s: %s,", vis, toSnake(f.Name), typ)
	}
	e.line(1, "}")

	for _, ev := range m.Events {
		e.blank()
		e.line(1, "#[ink(event)]")
		e.line(1, "pub struct %s {", toPascal(ev.Name))
		for _, f := range ev.Fields {
			typ, note := mapTypeInk(f.Type)
			if note != "" {
				e.note("event %s field %s: %s", ev.Name, f.Name, note)
			}
			if f.Indexed {
				e.line(2, "#[ink(topic)]")
			}
			e.line(2, "%s: %s,", toSnake(f.Name), typ)
		}
		e.line(1, "}")
	}

	e.blank()
	e.line(1, "impl %s {", contract)
	for i, c := range m.Constructors {
		if i > 0 {
			e.note("extra constructor at line %d merged manually; ink! exposes each as a separate #[ink(constructor)]", c.Line)
		}
		e.emitInkConstructor(c, i)
		if i < len(m.Constructors)-1 {
			e.blank()
		}
	}
	for _, fn := range m.Functions {
		e.blank()
		e.emitInkFunction(fn)
	}
	e.line(1, "}")
	e.line(0, "}")
	return e.b.String()
}

func (e *emitter) usesMapping() bool {
	for _, f := range e.model.Fields {
		if f.Type.Kind == ir.TypeMapping {
			return true
		}
	}
	return false
}

func (e *emitter) emitInkConstructor(c ir.Constructor, index int) {
	name := "new"
	if index > 0 {
		name = fmt.Sprintf("new_%d", index+1)
	}
	e.line(2, "#[ink(constructor)]")
	e.line(2, "pub fn %s(%s) -> Self {", name, e.inkParams(c.Params))

	// constructor statements other than field writes run before the
	// Self literal; field writes become its initializers
	inits := map[string]string{}
	for _, st := range c.Body {
		switch {
		case st.Kind == ir.StmtAssign && st.Target != "":
			if _, ok := e.model.Field(st.Target); ok {
				inits[st.Target] = translateExprQualify(st.Expr, e.model, model.DialectInk, false)
				continue
			}
			e.emitInkStatement(st, 3)
		case st.Kind == ir.StmtReturn || st.Kind == ir.StmtOther:
			if pairs, ok := parseSelfLiteral(st.Expr); ok {
				for k, v := range pairs {
					inits[k] = translateExprQualify(v, e.model, model.DialectInk, false)
				}
				continue
			}
			e.emitInkStatement(st, 3)
		default:
			e.emitInkStatement(st, 3)
		}
	}

	e.line(3, "Self {")
	for _, f := range e.model.Fields {
		init, ok := inits[f.Name]
		if !ok {
			init = inkDefault(f)
		}
		e.line(4, "%s: %s,", toSnake(f.Name), init)
	}
	e.line(3, "}")
	e.line(2, "}")
}

func (e *emitter) emitInkFunction(fn ir.Function) {
	if fn.Visibility == ir.VisPrivate {
		e.line(2, "fn %s(%s)%s {", toSnake(fn.Name), e.inkReceiverParams(fn), e.inkReturn(fn))
	} else {
		attr := "#[ink(message)]"
		if fn.Mutability == ir.MutPayable {
			attr = "#[ink(message, payable)]"
		}
		if fn.Mutability == ir.MutPure {
			e.note("function %s: pure has no ink! message equivalent; emitted as &self view", fn.Name)
		}
		e.line(2, "%s", attr)
		e.line(2, "pub fn %s(%s)%s {", toSnake(fn.Name), e.inkReceiverParams(fn), e.inkReturn(fn))
	}
	for i, st := range fn.Body {
		tail := i == len(fn.Body)-1 && st.Kind == ir.StmtReturn && st.Expr != ""
		if tail {
			e.line(3, "%s", translateExpr(st.Expr, e.model, model.DialectInk))
			continue
		}
		e.emitInkStatement(st, 3)
	}
	e.line(2, "}")
}

func (e *emitter) inkReceiverParams(fn ir.Function) string {
	recv := "&self"
	if fn.Mutability == ir.MutMutating || fn.Mutability == ir.MutPayable {
		recv = "&mut self"
	}
	params := e.inkParams(fn.Params)
	if params == "" {
		return recv
	}
	return recv + ", " + params
}

func (e *emitter) inkParams(params []ir.Param) string {
	parts := make([]string, len(params))
	for i, p := range params {
		typ, note := mapTypeInk(p.Type)
		if note != "" {
			e.note("parameter %s: %s", p.Name, note)
		}
		parts[i] = fmt.Sprintf("%s: %s", toSnake(p.Name), typ)
	}
	return strings.Join(parts, ", ")
}

func (e *emitter) inkReturn(fn ir.Function) string {
	if fn.Returns == nil {
		return ""
	}
	typ, note := mapTypeInk(*fn.Returns)
	if note != "" {
		e.note("return of %s: %s", fn.Name, note)
	}
	return " -> " + typ
}

func (e *emitter) emitInkStatement(st ir.Statement, indent int) {
	switch st.Kind {
	case ir.StmtAssign:
		e.line(indent, "self.%s = %s;", toSnake(st.Target), translateExpr(st.Expr, e.model, model.DialectInk))
	case ir.StmtIf:
		e.line(indent, "if %s {", translateExpr(st.Cond, e.model, model.DialectInk))
		for _, inner := range st.Body {
			e.emitInkStatement(inner, indent+1)
		}
		if len(st.Else) > 0 {
			e.line(indent, "} else {")
			for _, inner := range st.Else {
				e.emitInkStatement(inner, indent+1)
			}
		}
		e.line(indent, "}")
	case ir.StmtLoop:
		cond := translateExpr(st.Cond, e.model, model.DialectInk)
		if cond == "" {
			cond = "true"
		}
		e.line(indent, "while %s {", cond)
		for _, inner := range st.Body {
			e.emitInkStatement(inner, indent+1)
		}
		e.line(indent, "}")
	case ir.StmtRequire:
		e.line(indent, "assert!(%s);", translateExpr(st.Cond, e.model, model.DialectInk))
	case ir.StmtEmit:
		if !e.crossDialect() {
			e.line(indent, "%s;", translateExpr(st.Expr, e.model, model.DialectInk))
			return
		}
		e.emitInkEvent(st, indent)
	case ir.StmtReturn:
		if st.Expr == "" {
			e.line(indent, "return;")
		} else {
			e.line(indent, "return %s;", translateExpr(st.Expr, e.model, model.DialectInk))
		}
	case ir.StmtExternalCall:
		e.emitInkCall(st, indent)
	default:
		if len(st.Body) > 0 {
			for _, inner := range st.Body {
				e.emitInkStatement(inner, indent)
			}
			return
		}
		if e.crossDialect() {
			e.line(indent, "// untranslated: %s", st.Expr)
			e.note("line %d: statement has no direct ink! translation", st.Line)
			return
		}
		e.line(indent, "%s;", translateExpr(st.Expr, e.model, model.DialectInk))
	}
}

func (e *emitter) emitInkEvent(st ir.Statement, indent int) {
	ev, ok := e.event(st.Event)
	args := splitTop(st.Expr)
	if !ok || len(args) != len(ev.Fields) {
		e.line(indent, "// event %s elided", st.Event)
		e.note("line %d: event %s emission could not be reconstructed for ink!", st.Line, st.Event)
		return
	}
	e.line(indent, "self.env().emit_event(%s {", toPascal(ev.Name))
	for i, f := range ev.Fields {
		e.line(indent+1, "%s: %s,", toSnake(f.Name), translateExpr(args[i], e.model, model.DialectInk))
	}
	e.line(indent, "});")
}

func (e *emitter) emitInkCall(st ir.Statement, indent int) {
	switch {
	case st.SelfDestruct:
		args := callArgs(st.Expr, "selfdestruct", "terminate_contract")
		beneficiary := "self.env().caller()"
		if len(args) == 1 {
			beneficiary = translateExpr(args[0], e.model, model.DialectInk)
		}
		e.line(indent, "self.env().terminate_contract(%s);", beneficiary)
	case !e.crossDialect():
		e.line(indent, "%s;", translateExpr(st.Expr, e.model, model.DialectInk))
	default:
		// value transfers carry over; arbitrary call data does not
		amount := "0"
		if args := callArgs(st.Expr, "transfer", "send"); len(args) == 1 {
			amount = translateExpr(args[0], e.model, model.DialectInk)
		} else if v := braceValue(st.Expr); v != "" {
			amount = translateExpr(v, e.model, model.DialectInk)
		} else {
			e.note("line %d: external call approximated as a plain transfer", st.Line)
		}
		recipient := translateExpr(st.Callee, e.model, model.DialectInk)
		if recipient == "" {
			recipient = "self.env().caller()"
		}
		e.line(indent, "self.env().transfer(%s, %s).expect(\"transfer failed\");", recipient, amount)
	}
}

func inkDefault(f ir.StorageField) string {
	if f.Default != "" {
		return f.Default
	}
	switch f.Type.Kind {
	case ir.TypeBool:
		return "false"
	case ir.TypeInt:
		return "0"
	case ir.TypeMapping:
		return "Mapping::default()"
	case ir.TypeSequence:
		return "Vec::new()"
	case ir.TypeString:
		return "String::new()"
	default:
		return "Default::default()"
	}
}

// parseSelfLiteral recognizes a Rust `Self { field : expr , ... }` literal
// and returns its field/value pairs.
func parseSelfLiteral(expr string) (map[string]string, bool) {
	trimmed := strings.TrimSpace(expr)
	if !strings.HasPrefix(trimmed, "Self") && !strings.HasPrefix(trimmed, "Ok ( Self") {
		return nil, false
	}
	open := strings.IndexByte(trimmed, '{')
	closing := strings.LastIndexByte(trimmed, '}')
	if open < 0 || closing < open {
		return nil, false
	}
	pairs := map[string]string{}
	for _, part := range strings.Split(trimmed[open+1:closing], ",") {
		kv := strings.SplitN(part, ":", 2)
		name := strings.TrimSpace(kv[0])
		if name == "" {
			continue
		}
		if len(kv) == 1 {
			// shorthand Self { value }
			pairs[name] = name
			continue
		}
		pairs[name] = strings.TrimSpace(kv[1])
	}
	return pairs, true
}
