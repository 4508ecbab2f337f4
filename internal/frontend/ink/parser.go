package ink

import (
	"strings"

	"github.com/elcharitas/mjolnir/internal/frontend/token"
	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// Parse lowers ink!-dialect source (an attribute-annotated Rust module)
// into the shared contract model.
func Parse(src string) (*ir.ContractModel, error) {
	p := &parser{cur: token.NewCursor(token.Scan(src))}
	return p.parse()
}

type parser struct {
	cur   *token.Cursor
	model *ir.ContractModel
}

// attr is one parsed #[...] attribute, e.g. {"ink", "::", "contract"} or
// {"ink", "(", "storage", ")"}.
type attr struct {
	toks []token.Token
	line int
}

func (a attr) ink() bool { return len(a.toks) > 0 && a.toks[0].Text == "ink" }

func (a attr) has(marker string) bool {
	if !a.ink() {
		return false
	}
	for _, t := range a.toks[1:] {
		if t.Text == marker {
			return true
		}
	}
	return false
}

func (p *parser) parse() (*ir.ContractModel, error) {
	p.model = &ir.ContractModel{Dialect: model.DialectInk}
	sawInk := false
	for !p.cur.AtEOF() {
		t := p.cur.Peek()
		switch {
		case t.Is("#"):
			a := p.parseAttr()
			if a.ink() {
				sawInk = true
				if err := p.parseAttributed(a); err != nil {
					return nil, err
				}
			}
		case t.Is("mod"):
			p.cur.Next()
			name := p.cur.Next()
			if p.model.Name == "" && name.Kind == token.Ident {
				p.model.Name = exportName(name.Text)
			}
			p.cur.Accept("{") // module body parses inline
		case t.Is("impl"):
			if err := p.parseImpl(); err != nil {
				return nil, err
			}
		case t.Is("use") || t.Is("pub") && p.cur.PeekAt(1).Is("use"):
			p.skipTo(";")
		default:
			p.cur.Next()
		}
	}
	if !sawInk || p.model.Name == "" && len(p.model.Fields) == 0 {
		return nil, &model.ParseError{Kind: model.ParseNotAContract}
	}
	if len(p.model.Constructors) == 0 {
		return nil, model.NewSyntaxError(1, "contract defines no #[ink(constructor)]")
	}
	return p.model, nil
}

// parseAttr consumes `#[...]` with the cursor on `#`.
func (p *parser) parseAttr() attr {
	line := p.cur.Next().Line // #
	toks := p.cur.SkipBalanced("[", "]")
	return attr{toks: toks, line: line}
}

// parseAttributed handles the item following an ink attribute.
func (p *parser) parseAttributed(a attr) error {
	switch {
	case a.has("contract"):
		// #[ink::contract] mod ...; the mod itself is handled by the main loop
		return nil
	case a.has("storage"):
		return p.parseStorageStruct()
	case a.has("event"):
		return p.parseEventStruct()
	case a.has("constructor"), a.has("message"):
		// impl-level attribute reached outside an impl block; let parseImpl
		// find it again is impossible here, so record and continue
		p.warn("ink attribute outside impl block", a.line)
		return nil
	default:
		p.warn("ink attribute "+joinTokens(a.toks), a.line)
		return nil
	}
}

func (p *parser) parseStorageStruct() error {
	p.skipStructHeader()
	name := p.cur.Next()
	if name.Kind != token.Ident {
		return model.NewSyntaxError(name.Line, "expected storage struct name")
	}
	if p.model.Name == "" {
		p.model.Name = name.Text
	}
	if !p.cur.Accept("{") {
		return model.NewSyntaxError(name.Line, "expected '{' after storage struct name")
	}
	for !p.cur.AtEOF() && !p.cur.Peek().Is("}") {
		for p.cur.Peek().Is("#") {
			p.parseAttr()
		}
		vis := ir.VisPrivate
		if p.cur.Accept("pub") {
			vis = ir.VisPublic
			if p.cur.Peek().Is("(") {
				p.cur.SkipBalanced("(", ")")
			}
		}
		fieldTok := p.cur.Next()
		if fieldTok.Kind != token.Ident {
			return model.NewSyntaxError(fieldTok.Line, "expected field name in storage struct")
		}
		if !p.cur.Accept(":") {
			return model.NewSyntaxError(fieldTok.Line, "expected ':' after field %s", fieldTok.Text)
		}
		typ := p.parseType()
		for _, f := range p.model.Fields {
			if f.Name == fieldTok.Text {
				return model.NewSyntaxError(fieldTok.Line, "duplicate storage field %s", fieldTok.Text)
			}
		}
		p.model.Fields = append(p.model.Fields, ir.StorageField{
			Name: fieldTok.Text, Type: typ, Visibility: vis, Line: fieldTok.Line,
		})
		p.cur.Accept(",")
	}
	p.cur.Accept("}")
	return nil
}

func (p *parser) parseEventStruct() error {
	p.skipStructHeader()
	name := p.cur.Next()
	if name.Kind != token.Ident {
		return model.NewSyntaxError(name.Line, "expected event struct name")
	}
	ev := ir.Event{Name: name.Text, Line: name.Line}
	if !p.cur.Accept("{") {
		return model.NewSyntaxError(name.Line, "expected '{' after event struct name")
	}
	for !p.cur.AtEOF() && !p.cur.Peek().Is("}") {
		indexed := false
		for p.cur.Peek().Is("#") {
			if p.parseAttr().has("topic") {
				indexed = true
			}
		}
		p.cur.Accept("pub")
		fieldTok := p.cur.Next()
		if fieldTok.Kind != token.Ident {
			return model.NewSyntaxError(fieldTok.Line, "expected field name in event struct")
		}
		if !p.cur.Accept(":") {
			return model.NewSyntaxError(fieldTok.Line, "expected ':' after event field %s", fieldTok.Text)
		}
		typ := p.parseType()
		ev.Fields = append(ev.Fields, ir.EventField{Name: fieldTok.Text, Type: typ, Indexed: indexed})
		p.cur.Accept(",")
	}
	p.cur.Accept("}")
	p.model.Events = append(p.model.Events, ev)
	return nil
}

// skipStructHeader consumes `pub struct` / `struct` and any derive noise.
func (p *parser) skipStructHeader() {
	for p.cur.Peek().Is("#") {
		p.parseAttr()
	}
	p.cur.Accept("pub")
	p.cur.Accept("struct")
}

func (p *parser) parseImpl() error {
	p.cur.Next() // impl
	// skip to the opening brace: the type name, possibly a trait path
	for !p.cur.AtEOF() && !p.cur.Peek().Is("{") {
		p.cur.Next()
	}
	if !p.cur.Accept("{") {
		return model.NewSyntaxError(p.cur.Peek().Line, "expected impl body")
	}
	for !p.cur.AtEOF() && !p.cur.Peek().Is("}") {
		var attrs []attr
		for p.cur.Peek().Is("#") {
			attrs = append(attrs, p.parseAttr())
		}
		if p.cur.Peek().Is("}") {
			break
		}
		if err := p.parseFn(attrs); err != nil {
			return err
		}
	}
	p.cur.Accept("}")
	return nil
}

func (p *parser) parseFn(attrs []attr) error {
	isConstructor, isMessage, isPayable := false, false, false
	for _, a := range attrs {
		if a.has("constructor") {
			isConstructor = true
		}
		if a.has("message") {
			isMessage = true
		}
		if a.has("payable") {
			isPayable = true
		}
	}
	vis := ir.VisPrivate
	if p.cur.Accept("pub") {
		vis = ir.VisPublic
		if p.cur.Peek().Is("(") {
			p.cur.SkipBalanced("(", ")")
		}
	}
	if !p.cur.Accept("fn") {
		// stray item inside impl (const, type alias); skip the line
		p.warnSkipItem()
		return nil
	}
	nameTok := p.cur.Next()
	if nameTok.Kind != token.Ident {
		return model.NewSyntaxError(nameTok.Line, "expected function name")
	}
	params, mutability, err := p.parseFnParams()
	if err != nil {
		return err
	}
	var ret *ir.Type
	if p.cur.Accept("->") {
		t := p.parseType()
		if t.Name != "Self" {
			ret = &t
		}
	}
	body, err := p.parseBlock()
	if err != nil {
		return err
	}
	if isConstructor {
		p.model.Constructors = append(p.model.Constructors, ir.Constructor{Params: params, Body: body, Line: nameTok.Line})
		return nil
	}
	fn := ir.Function{
		Name:       nameTok.Text,
		Params:     params,
		Returns:    ret,
		Mutability: mutability,
		Visibility: vis,
		Body:       body,
		Line:       nameTok.Line,
	}
	if isPayable {
		fn.Mutability = ir.MutPayable
	}
	if !isMessage && vis == ir.VisPublic {
		// pub fn without #[ink(message)] is not an entry point
		fn.Visibility = ir.VisPrivate
	}
	if len(body) > 0 && body[0].Kind == ir.StmtRequire && strings.Contains(body[0].Cond, "caller") {
		fn.Guarded = true
	}
	p.model.Functions = append(p.model.Functions, fn)
	return nil
}

// parseFnParams reads the parameter list, deriving mutability from the
// self receiver: &self reads, &mut self writes, no receiver is pure.
func (p *parser) parseFnParams() ([]ir.Param, ir.Mutability, error) {
	if !p.cur.Accept("(") {
		return nil, "", model.NewSyntaxError(p.cur.Peek().Line, "expected parameter list")
	}
	mutability := ir.MutPure
	var params []ir.Param
	for !p.cur.AtEOF() && !p.cur.Peek().Is(")") {
		if p.cur.Accept("&") {
			if p.cur.Accept("mut") {
				mutability = ir.MutMutating
			} else {
				mutability = ir.MutView
			}
			p.cur.Accept("self")
			p.cur.Accept(",")
			continue
		}
		if p.cur.Accept("self") {
			mutability = ir.MutMutating
			p.cur.Accept(",")
			continue
		}
		p.cur.Accept("mut")
		nameTok := p.cur.Next()
		if nameTok.Kind != token.Ident {
			return nil, "", model.NewSyntaxError(nameTok.Line, "expected parameter name")
		}
		if !p.cur.Accept(":") {
			return nil, "", model.NewSyntaxError(nameTok.Line, "expected ':' after parameter %s", nameTok.Text)
		}
		typ := p.parseType()
		params = append(params, ir.Param{Name: nameTok.Text, Type: typ})
		p.cur.Accept(",")
	}
	p.cur.Accept(")")
	return params, mutability, nil
}

func (p *parser) parseType() ir.Type {
	t := p.cur.Next()
	switch t.Text {
	case "bool":
		return ir.Type{Kind: ir.TypeBool, Source: t.Text}
	case "u8", "u16", "u32", "u64", "u128":
		return ir.Type{Kind: ir.TypeInt, Bits: intBits(t.Text), Source: t.Text}
	case "i8", "i16", "i32", "i64", "i128":
		return ir.Type{Kind: ir.TypeInt, Signed: true, Bits: intBits(t.Text), Source: t.Text}
	case "AccountId", "Address":
		return ir.Type{Kind: ir.TypeAddress, Source: t.Text}
	case "Balance":
		return ir.Type{Kind: ir.TypeInt, Bits: 128, Source: t.Text}
	case "String", "str":
		return ir.Type{Kind: ir.TypeString, Source: t.Text}
	case "Mapping", "HashMap":
		typ := ir.Type{Kind: ir.TypeMapping, Source: t.Text}
		if p.cur.Accept("<") {
			k := p.parseType()
			typ.Key = &k
			p.cur.Accept(",")
			v := p.parseType()
			typ.Value = &v
			p.cur.Accept(">")
			typ.Source = t.Text + "<" + k.Source + ", " + v.Source + ">"
		}
		return typ
	case "Vec":
		typ := ir.Type{Kind: ir.TypeSequence, Source: t.Text}
		if p.cur.Accept("<") {
			e := p.parseType()
			typ.Value = &e
			p.cur.Accept(">")
			typ.Source = "Vec<" + e.Source + ">"
		}
		return typ
	case "[":
		// fixed byte arrays like [u8; 32]
		for !p.cur.AtEOF() && !p.cur.Accept("]") {
			p.cur.Next()
		}
		return ir.Type{Kind: ir.TypeBytes, Source: "[u8; N]"}
	case "&":
		return p.parseType()
	default:
		typ := ir.Type{Kind: ir.TypeComposite, Name: t.Text, Source: t.Text}
		if p.cur.Peek().Is("<") {
			p.cur.SkipBalanced("<", ">")
		}
		return typ
	}
}

func intBits(text string) int {
	bits := 0
	for _, c := range text[1:] {
		bits = bits*10 + int(c-'0')
	}
	return bits
}

// exportName converts a snake_case module name to the PascalCase contract
// name ink! conventionally derives from it.
func exportName(mod string) string {
	var b strings.Builder
	up := true
	for _, c := range mod {
		if c == '_' {
			up = true
			continue
		}
		if up {
			b.WriteString(strings.ToUpper(string(c)))
			up = false
		} else {
			b.WriteRune(c)
		}
	}
	return b.String()
}

func (p *parser) warn(construct string, line int) {
	p.model.Warnings = append(p.model.Warnings, ir.ParseWarning{Construct: construct, Line: line})
}

func (p *parser) warnSkipItem() {
	t := p.cur.Peek()
	p.warn("unrecognized impl item "+t.Text, t.Line)
	for !p.cur.AtEOF() && !p.cur.Peek().Is("}") && !p.cur.Accept(";") {
		if p.cur.Peek().Is("{") {
			p.cur.SkipBalanced("{", "}")
			return
		}
		p.cur.Next()
	}
}

func (p *parser) skipTo(text string) {
	for !p.cur.AtEOF() && !p.cur.Accept(text) {
		p.cur.Next()
	}
}

func joinTokens(toks []token.Token) string {
	parts := make([]string, len(toks))
	for i, t := range toks {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}
