package solidity

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/elcharitas/mjolnir/internal/frontend/token"
	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// Parse lowers Solidity-dialect source into the shared contract model.
// Constructs the IR cannot express become ParseWarnings on the model;
// only input with no contract declaration at all fails.
func Parse(src string) (*ir.ContractModel, error) {
	p := &parser{cur: token.NewCursor(token.Scan(src))}
	return p.parse()
}

type parser struct {
	cur              *token.Cursor
	model            *ir.ContractModel
	modifiers        map[string]bool
	checkedByDefault bool
}

func (p *parser) parse() (*ir.ContractModel, error) {
	p.model = &ir.ContractModel{Dialect: model.DialectSolidity}
	p.modifiers = map[string]bool{}
	seenContract := false
	for !p.cur.AtEOF() {
		t := p.cur.Peek()
		switch t.Text {
		case "pragma":
			p.parsePragma()
		case "import":
			p.warn("import directive", t.Line)
			p.skipTo(";")
		case "abstract":
			p.cur.Next()
		case "contract", "interface", "library":
			if t.Text != "contract" {
				p.warn(t.Text+" declaration", t.Line)
			}
			if err := p.parseContract(); err != nil {
				return nil, err
			}
			seenContract = true
		default:
			p.cur.Next()
		}
	}
	if !seenContract {
		return nil, &model.ParseError{Kind: model.ParseNotAContract}
	}
	if len(p.model.Constructors) == 0 {
		// every contract has a constructor; Solidity synthesizes an empty one
		line := 0
		if len(p.model.Functions) > 0 {
			line = p.model.Functions[0].Line
		}
		p.model.Constructors = append(p.model.Constructors, ir.Constructor{Line: line})
	}
	return p.model, nil
}

func (p *parser) parsePragma() {
	line := p.cur.Next().Line // pragma
	var parts []string
	for !p.cur.AtEOF() && !p.cur.Peek().Is(";") {
		parts = append(parts, p.cur.Next().Text)
	}
	p.cur.Accept(";")
	if len(parts) == 0 || parts[0] != "solidity" {
		return
	}
	version := strings.Join(parts[1:], "")
	p.model.Pragma = &ir.Pragma{
		Version:  version,
		Floating: strings.ContainsAny(version, "^><"),
		Line:     line,
	}
	// 0.8 introduced checked arithmetic by default
	p.checkedByDefault = !strings.Contains(version, "0.4.") &&
		!strings.Contains(version, "0.5.") &&
		!strings.Contains(version, "0.6.") &&
		!strings.Contains(version, "0.7.")
}

func (p *parser) parseContract() error {
	p.cur.Next() // contract keyword
	name := p.cur.Next()
	if name.Kind != token.Ident {
		return model.NewSyntaxError(name.Line, "expected contract name, got %q", name.Text)
	}
	p.model.Name = name.Text
	if p.cur.Accept("is") {
		p.warn("inheritance", name.Line)
		for !p.cur.AtEOF() && !p.cur.Peek().Is("{") {
			p.cur.Next()
		}
	}
	if !p.cur.Accept("{") {
		return model.NewSyntaxError(p.cur.Peek().Line, "expected '{' after contract header")
	}
	for !p.cur.AtEOF() && !p.cur.Peek().Is("}") {
		if err := p.parseContractItem(); err != nil {
			return err
		}
	}
	if !p.cur.Accept("}") {
		return model.NewSyntaxError(p.cur.Peek().Line, "unterminated contract body")
	}
	return nil
}

func (p *parser) parseContractItem() error {
	t := p.cur.Peek()
	switch t.Text {
	case "event":
		return p.parseEvent()
	case "constructor":
		return p.parseConstructor()
	case "function":
		p.cur.Next()
		nameTok := p.cur.Next()
		if nameTok.Kind != token.Ident {
			return model.NewSyntaxError(nameTok.Line, "expected function name")
		}
		return p.parseFunction(nameTok.Text, nameTok.Line)
	case "receive", "fallback":
		p.cur.Next()
		p.warn(t.Text+" function", t.Line)
		return p.parseFunction(t.Text, t.Line)
	case "modifier":
		return p.parseModifier()
	case "struct", "enum":
		p.cur.Next()
		n := p.cur.Next()
		p.warn(t.Text+" "+n.Text, t.Line)
		p.cur.SkipBalanced("{", "}")
		return nil
	case "using":
		p.skipTo(";")
		return nil
	case ";":
		p.cur.Next()
		return nil
	default:
		return p.parseStateVar()
	}
}

func (p *parser) parseEvent() error {
	line := p.cur.Next().Line
	nameTok := p.cur.Next()
	if nameTok.Kind != token.Ident {
		return model.NewSyntaxError(nameTok.Line, "expected event name")
	}
	ev := ir.Event{Name: nameTok.Text, Line: line}
	if !p.cur.Accept("(") {
		return model.NewSyntaxError(nameTok.Line, "expected '(' in event declaration")
	}
	for !p.cur.AtEOF() && !p.cur.Peek().Is(")") {
		f := ir.EventField{Type: p.parseType()}
		if p.cur.Accept("indexed") {
			f.Indexed = true
		}
		if p.cur.Peek().Kind == token.Ident {
			f.Name = p.cur.Next().Text
		}
		ev.Fields = append(ev.Fields, f)
		p.cur.Accept(",")
	}
	p.cur.Accept(")")
	p.cur.Accept(";")
	p.model.Events = append(p.model.Events, ev)
	return nil
}

func (p *parser) parseConstructor() error {
	line := p.cur.Next().Line
	params, err := p.parseParams()
	if err != nil {
		return err
	}
	// modifiers and visibility between header and body
	for !p.cur.AtEOF() && !p.cur.Peek().Is("{") && !p.cur.Peek().Is(";") {
		p.cur.Next()
	}
	body, err := p.parseBlock()
	if err != nil {
		return err
	}
	p.model.Constructors = append(p.model.Constructors, ir.Constructor{Params: params, Body: body, Line: line})
	return nil
}

func (p *parser) parseFunction(name string, line int) error {
	fn := ir.Function{Name: name, Line: line, Mutability: ir.MutMutating, Visibility: ir.VisPublic, DefaultVisibility: true}
	params, err := p.parseParams()
	if err != nil {
		return err
	}
	fn.Params = params
	for !p.cur.AtEOF() && !p.cur.Peek().Is("{") && !p.cur.Peek().Is(";") {
		t := p.cur.Next()
		switch t.Text {
		case "public", "external":
			fn.Visibility = ir.VisPublic
			fn.DefaultVisibility = false
		case "private", "internal":
			fn.Visibility = ir.VisPrivate
			fn.DefaultVisibility = false
		case "view":
			fn.Mutability = ir.MutView
		case "pure":
			fn.Mutability = ir.MutPure
		case "payable":
			fn.Mutability = ir.MutPayable
		case "returns":
			if p.cur.Accept("(") {
				ret := p.parseType()
				fn.Returns = &ret
				// named or tuple returns collapse to the first component
				for !p.cur.AtEOF() && !p.cur.Accept(")") {
					p.cur.Next()
				}
			}
		case "virtual", "override":
		default:
			if t.Kind == token.Ident {
				// modifier usage
				if p.cur.Peek().Is("(") {
					p.cur.SkipBalanced("(", ")")
				}
				if strings.HasPrefix(t.Text, "only") || p.modifiers[t.Text] {
					fn.Guarded = true
				}
			}
		}
	}
	if p.cur.Accept(";") {
		p.model.Functions = append(p.model.Functions, fn)
		return nil
	}
	body, err := p.parseBlock()
	if err != nil {
		return err
	}
	fn.Body = body
	if !fn.Guarded && len(body) > 0 && body[0].Kind == ir.StmtRequire && strings.Contains(body[0].Cond, "msg . sender") {
		fn.Guarded = true
	}
	p.model.Functions = append(p.model.Functions, fn)
	return nil
}

func (p *parser) parseModifier() error {
	line := p.cur.Next().Line
	nameTok := p.cur.Next()
	if nameTok.Kind == token.Ident {
		p.modifiers[nameTok.Text] = true
		p.warn("modifier "+nameTok.Text, line)
	}
	if p.cur.Peek().Is("(") {
		p.cur.SkipBalanced("(", ")")
	}
	p.cur.SkipBalanced("{", "}")
	return nil
}

func (p *parser) parseStateVar() error {
	start := p.cur.Peek()
	if start.Kind != token.Ident && start.Text != "mapping" {
		// nothing we recognize; skip one token to make progress
		p.warn("unrecognized construct "+start.Text, start.Line)
		p.cur.Next()
		return nil
	}
	typ := p.parseType()
	field := ir.StorageField{Type: typ, Visibility: ir.VisPrivate, Line: start.Line}
	constant := false
	for {
		t := p.cur.Peek()
		switch t.Text {
		case "public":
			field.Visibility = ir.VisPublic
			p.cur.Next()
			continue
		case "private", "internal":
			field.Visibility = ir.VisPrivate
			p.cur.Next()
			continue
		case "constant", "immutable":
			constant = true
			p.cur.Next()
			continue
		}
		break
	}
	nameTok := p.cur.Next()
	if nameTok.Kind != token.Ident {
		return model.NewSyntaxError(nameTok.Line, "expected state variable name, got %q", nameTok.Text)
	}
	field.Name = nameTok.Text
	if p.cur.Accept("=") {
		var parts []string
		for !p.cur.AtEOF() && !p.cur.Peek().Is(";") {
			parts = append(parts, p.cur.Next().Text)
		}
		field.Default = strings.Join(parts, "")
		if field.Type.Kind == ir.TypeAddress && strings.HasPrefix(field.Default, "0x") && !common.IsHexAddress(field.Default) {
			p.warn("malformed address literal "+field.Default, nameTok.Line)
		}
	}
	_ = constant
	if !p.cur.Accept(";") {
		return model.NewSyntaxError(nameTok.Line, "expected ';' after state variable %s", field.Name)
	}
	for _, f := range p.model.Fields {
		if f.Name == field.Name {
			return model.NewSyntaxError(nameTok.Line, "duplicate state variable %s", field.Name)
		}
	}
	p.model.Fields = append(p.model.Fields, field)
	return nil
}

func (p *parser) parseParams() ([]ir.Param, error) {
	if !p.cur.Accept("(") {
		return nil, model.NewSyntaxError(p.cur.Peek().Line, "expected parameter list")
	}
	var params []ir.Param
	for !p.cur.AtEOF() && !p.cur.Peek().Is(")") {
		prm := ir.Param{Type: p.parseType()}
		// data location keywords sit between type and name
		for p.cur.Accept("memory") || p.cur.Accept("calldata") || p.cur.Accept("storage") {
		}
		if p.cur.Peek().Kind == token.Ident {
			prm.Name = p.cur.Next().Text
		}
		params = append(params, prm)
		p.cur.Accept(",")
	}
	p.cur.Accept(")")
	return params, nil
}

func (p *parser) parseType() ir.Type {
	t := p.cur.Next()
	var typ ir.Type
	switch {
	case t.Text == "mapping":
		typ = ir.Type{Kind: ir.TypeMapping, Source: "mapping"}
		if p.cur.Accept("(") {
			k := p.parseType()
			typ.Key = &k
			p.cur.Accept("=>")
			v := p.parseType()
			typ.Value = &v
			p.cur.Accept(")")
			typ.Source = "mapping(" + k.Source + " => " + v.Source + ")"
		}
	case t.Text == "bool":
		typ = ir.Type{Kind: ir.TypeBool, Source: t.Text}
	case t.Text == "address":
		typ = ir.Type{Kind: ir.TypeAddress, Source: t.Text}
		p.cur.Accept("payable")
	case t.Text == "string":
		typ = ir.Type{Kind: ir.TypeString, Source: t.Text}
	case strings.HasPrefix(t.Text, "bytes"):
		typ = ir.Type{Kind: ir.TypeBytes, Source: t.Text}
	case strings.HasPrefix(t.Text, "uint"), strings.HasPrefix(t.Text, "int"):
		typ = ir.Type{Kind: ir.TypeInt, Signed: strings.HasPrefix(t.Text, "int"), Bits: intBits(t.Text), Source: t.Text}
	default:
		typ = ir.Type{Kind: ir.TypeComposite, Name: t.Text, Source: t.Text}
	}
	for p.cur.Peek().Is("[") {
		p.cur.SkipBalanced("[", "]")
		elem := typ
		typ = ir.Type{Kind: ir.TypeSequence, Value: &elem, Source: elem.Source + "[]"}
	}
	return typ
}

func intBits(text string) int {
	digits := strings.TrimLeft(text, "uint")
	if digits == "" {
		return 256
	}
	bits := 0
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 256
		}
		bits = bits*10 + int(c-'0')
	}
	return bits
}

func (p *parser) warn(construct string, line int) {
	p.model.Warnings = append(p.model.Warnings, ir.ParseWarning{Construct: construct, Line: line})
}

func (p *parser) skipTo(text string) {
	for !p.cur.AtEOF() && !p.cur.Accept(text) {
		p.cur.Next()
	}
}
