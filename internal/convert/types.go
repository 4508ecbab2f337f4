package convert

import (
	"fmt"

	"github.com/elcharitas/mjolnir/internal/ir"
)

// mapTypeInk renders an IR type as ink! source. The second return value
// is a limitation note when the mapping loses information.
func mapTypeInk(t ir.Type) (string, string) {
	switch t.Kind {
	case ir.TypeBool:
		return "bool", ""
	case ir.TypeInt:
		bits, widened := nearestInkWidth(t.Bits)
		prefix := "u"
		if t.Signed {
			prefix = "i"
		}
		note := ""
		if widened {
			note = fmt.Sprintf("integer width %d has no ink! equivalent; using %s%d", t.Bits, prefix, bits)
		}
		return fmt.Sprintf("%s%d", prefix, bits), note
	case ir.TypeAddress:
		return "AccountId", ""
	case ir.TypeString:
		return "String", ""
	case ir.TypeBytes:
		return "Vec<u8>", ""
	case ir.TypeMapping:
		k, noteK := mapTypeInk(deref(t.Key))
		v, noteV := mapTypeInk(deref(t.Value))
		return fmt.Sprintf("Mapping<%s, %s>", k, v), firstNonEmpty(noteK, noteV)
	case ir.TypeSequence:
		e, note := mapTypeInk(deref(t.Value))
		return fmt.Sprintf("Vec<%s>", e), note
	default:
		return toPascal(t.Name), fmt.Sprintf("composite type %s passed through unverified", t.Source)
	}
}

func mapTypeSolidity(t ir.Type) (string, string) {
	switch t.Kind {
	case ir.TypeBool:
		return "bool", ""
	case ir.TypeInt:
		bits := t.Bits
		if bits == 0 {
			bits = 256
		}
		if t.Signed {
			return fmt.Sprintf("int%d", bits), ""
		}
		return fmt.Sprintf("uint%d", bits), ""
	case ir.TypeAddress:
		return "address", ""
	case ir.TypeString:
		return "string", ""
	case ir.TypeBytes:
		return "bytes", ""
	case ir.TypeMapping:
		k, noteK := mapTypeSolidity(deref(t.Key))
		v, noteV := mapTypeSolidity(deref(t.Value))
		return fmt.Sprintf("mapping(%s => %s)", k, v), firstNonEmpty(noteK, noteV)
	case ir.TypeSequence:
		e, note := mapTypeSolidity(deref(t.Value))
		return e + "[]", note
	default:
		return toPascal(t.Name), fmt.Sprintf("composite type %s passed through unverified", t.Source)
	}
}

// nearestInkWidth rounds an integer width up to the nearest Rust-native
// one, capping at 128.
func nearestInkWidth(bits int) (int, bool) {
	if bits == 0 {
		bits = 256
	}
	for _, w := range []int{8, 16, 32, 64, 128} {
		if bits <= w {
			return w, bits != w
		}
	}
	return 128, true
}

// refType reports whether a Solidity value of this type lives in memory
// and needs an explicit data location in signatures.
func refType(t ir.Type) bool {
	switch t.Kind {
	case ir.TypeString, ir.TypeBytes, ir.TypeSequence:
		return true
	}
	return false
}

func deref(t *ir.Type) ir.Type {
	if t == nil {
		return ir.Type{Kind: ir.TypeUnknown, Source: "?"}
	}
	return *t
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
