package ir

import "github.com/elcharitas/mjolnir/internal/model"

// ContractModel is the dialect-neutral representation every analysis rule
// and both code generators operate on. One model per request; nothing is
// retained after the response is written.
type ContractModel struct {
	Name         string
	Dialect      model.Dialect
	Pragma       *Pragma
	Fields       []StorageField
	Constructors []Constructor
	Functions    []Function
	Events       []Event
	Warnings     []ParseWarning
}

// Pragma records a Solidity version directive. Nil for ink! sources.
type Pragma struct {
	Version  string
	Floating bool
	Line     int
}

// ParseWarning marks source the front end recognized but could not lower
// faithfully. The converter surfaces these in compilationOutput.
type ParseWarning struct {
	Construct string
	Line      int
}

type TypeKind int

const (
	TypeUnknown TypeKind = iota
	TypeBool
	TypeInt
	TypeAddress
	TypeString
	TypeBytes
	TypeMapping
	TypeSequence
	TypeComposite
)

type Type struct {
	Kind   TypeKind
	Bits   int  // integer width
	Signed bool // integer signedness
	Key    *Type
	Value  *Type // mapping value or sequence element
	Name   string
	Source string // raw type text as written
}

type Visibility string

const (
	VisPublic  Visibility = "public"
	VisPrivate Visibility = "private"
)

type StorageField struct {
	Name       string
	Type       Type
	Visibility Visibility
	Default    string
	Line       int
}

type Mutability string

const (
	MutPure     Mutability = "pure"
	MutView     Mutability = "view"
	MutMutating Mutability = "mutating"
	MutPayable  Mutability = "payable"
)

type Param struct {
	Name string
	Type Type
}

type Function struct {
	Name       string
	Params     []Param
	Returns    *Type
	Mutability Mutability
	Visibility Visibility
	// Guarded is set when a caller check runs before anything else
	// (onlyOwner-style modifier, require(msg.sender ...), ensure caller).
	Guarded           bool
	DefaultVisibility bool
	Body              []Statement
	Line              int
}

func (f *Function) Mutates() bool {
	return f.Mutability == MutMutating || f.Mutability == MutPayable
}

type Constructor struct {
	Params []Param
	Body   []Statement
	Line   int
}

type EventField struct {
	Name    string
	Type    Type
	Indexed bool
}

type Event struct {
	Name   string
	Fields []EventField
	Line   int
}

type StmtKind int

const (
	StmtAssign StmtKind = iota
	StmtIf
	StmtLoop
	StmtExternalCall
	StmtEmit
	StmtRequire
	StmtReturn
	StmtOther
)

// Statement is a flattened summary of one executable statement. Bodies of
// conditionals and loops nest; everything a rule needs beyond shape is
// carried as flags so rules never touch raw source.
type Statement struct {
	Kind   StmtKind
	Line   int
	Target string // assignment target root identifier
	Callee string // external call target expression
	Event  string // emitted event name
	Cond   string // raw condition text for if/loop/require
	Expr   string // raw right-hand/argument text

	Arith          bool // integer arithmetic in the expression
	Checked        bool // arithmetic uses a guarded form (checked_*, SafeMath)
	ReadsTimestamp bool
	ReadsTxOrigin  bool
	ReadsBlockRand bool // blockhash / block.difficulty / prevrandao style
	Delegate       bool // delegatecall-style dispatch
	SelfDestruct   bool
	ConstCallee    bool // call target is a compile-time constant

	Body []Statement
	Else []Statement
}

// FieldNames returns the set of declared storage field names.
func (m *ContractModel) FieldNames() map[string]bool {
	out := make(map[string]bool, len(m.Fields))
	for _, f := range m.Fields {
		out[f.Name] = true
	}
	return out
}

// Field looks up a storage field by name.
func (m *ContractModel) Field(name string) (*StorageField, bool) {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			return &m.Fields[i], true
		}
	}
	return nil, false
}

// Walk visits every statement in the body depth-first in source order.
func Walk(body []Statement, visit func(*Statement)) {
	for i := range body {
		visit(&body[i])
		Walk(body[i].Body, visit)
		Walk(body[i].Else, visit)
	}
}

// Flatten returns all statements of a body in source order, nested bodies
// included. Statements carry their own line numbers so callers can reason
// about before/after relationships.
func Flatten(body []Statement) []*Statement {
	var out []*Statement
	Walk(body, func(s *Statement) { out = append(out, s) })
	return out
}
