package convert

import (
	"fmt"
	"strings"

	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// Convert re-emits a contract model as source in the target dialect.
// Constructs without a faithful equivalent are emitted in the closest
// approximate form and reported in CompilationOutput; the only hard
// failure is a model that cannot be emitted at all.
func Convert(m *ir.ContractModel, target model.Dialect, optimize bool) (*model.ConversionResult, error) {
	if _, ok := model.ParseDialect(string(target)); !ok {
		return nil, &model.ConfigError{Field: "target", Detail: "unknown target dialect " + string(target)}
	}
	if m.Name == "" {
		return nil, &model.ConversionError{Construct: "anonymous contract"}
	}

	var notes []string
	for _, w := range m.Warnings {
		if w.Line > 0 {
			notes = append(notes, fmt.Sprintf("line %d: %s has no %s equivalent", w.Line, w.Construct, target))
		} else {
			notes = append(notes, fmt.Sprintf("%s has no %s equivalent", w.Construct, target))
		}
	}
	if optimize {
		m, notes = optimizeModel(m, notes)
	}

	e := &emitter{model: m, target: target}
	var code string
	switch target {
	case model.DialectInk:
		code = e.emitInk()
	case model.DialectSolidity:
		code = e.emitSolidity()
	}
	notes = append(notes, e.notes...)

	return &model.ConversionResult{
		ConvertedCode:     code,
		TargetType:        target,
		CompilationOutput: strings.Join(dedupe(notes), "\n"),
	}, nil
}

// emitter carries shared state for one code generation walk.
type emitter struct {
	model  *ir.ContractModel
	target model.Dialect
	b      strings.Builder
	notes  []string
}

func (e *emitter) note(format string, args ...any) {
	e.notes = append(e.notes, fmt.Sprintf(format, args...))
}

func (e *emitter) line(indent int, format string, args ...any) {
	e.b.WriteString(strings.Repeat("    ", indent))
	fmt.Fprintf(&e.b, format, args...)
	e.b.WriteByte('\n')
}

func (e *emitter) blank() { e.b.WriteByte('\n') }

// event looks up an event declaration by name.
func (e *emitter) event(name string) (*ir.Event, bool) {
	for i := range e.model.Events {
		if e.model.Events[i].Name == name {
			return &e.model.Events[i], true
		}
	}
	return nil, false
}

// crossDialect reports whether the walk is translating between dialects
// rather than re-emitting in the source dialect.
func (e *emitter) crossDialect() bool { return e.model.Dialect != e.target }

func dedupe(notes []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, n := range notes {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// splitTop splits a comma-separated list at the top bracket level.
func splitTop(s string) []string {
	var out []string
	depth := 0
	var cur strings.Builder
	for _, c := range s {
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case ',':
			if depth == 0 {
				out = append(out, strings.TrimSpace(cur.String()))
				cur.Reset()
				continue
			}
		}
		cur.WriteRune(c)
	}
	if s := strings.TrimSpace(cur.String()); s != "" {
		out = append(out, s)
	}
	return out
}

// braceValue extracts the `value:` option of a Solidity `call{value: x}`.
func braceValue(expr string) string {
	open := strings.Index(expr, "{")
	closing := strings.Index(expr, "}")
	if open < 0 || closing < open {
		return ""
	}
	for _, opt := range splitTop(expr[open+1 : closing]) {
		kv := strings.SplitN(opt, ":", 2)
		if len(kv) == 2 && strings.TrimSpace(kv[0]) == "value" {
			return strings.TrimSpace(kv[1])
		}
	}
	return ""
}

// callArgs extracts the argument list of the first `.method(...)` match in
// a captured expression, used to re-shape value transfers across dialects.
func callArgs(expr string, methods ...string) []string {
	for _, method := range methods {
		idx := strings.Index(expr, method)
		if idx < 0 {
			continue
		}
		rest := expr[idx+len(method):]
		open := strings.IndexByte(rest, '(')
		if open < 0 {
			continue
		}
		depth := 0
		var args []string
		var cur strings.Builder
		for _, c := range rest[open:] {
			switch c {
			case '(', '[', '{':
				depth++
				if depth == 1 {
					continue
				}
			case ')', ']', '}':
				depth--
				if depth == 0 {
					if s := strings.TrimSpace(cur.String()); s != "" {
						args = append(args, s)
					}
					return args
				}
			case ',':
				if depth == 1 {
					args = append(args, strings.TrimSpace(cur.String()))
					cur.Reset()
					continue
				}
			}
			if depth >= 1 {
				cur.WriteRune(c)
			}
		}
	}
	return nil
}
