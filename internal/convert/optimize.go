package convert

import (
	"fmt"
	"strconv"

	"github.com/elcharitas/mjolnir/internal/frontend/token"
	"github.com/elcharitas/mjolnir/internal/ir"
)

// optimizeModel applies behavior-preserving rewrites: storage fields no
// statement ever touches are dropped, and constant integer defaults are
// folded. The input model is copied, never mutated.
func optimizeModel(m *ir.ContractModel, notes []string) (*ir.ContractModel, []string) {
	out := *m
	used := referencedIdents(m)

	out.Fields = nil
	for _, f := range m.Fields {
		// public fields carry an implicit getter, so they are observable
		if !used[f.Name] && f.Visibility != ir.VisPublic {
			notes = append(notes, fmt.Sprintf("optimizer: dropped unused field %s", f.Name))
			continue
		}
		if f.Default != "" {
			if folded, ok := foldConstant(f.Default); ok && folded != f.Default {
				f.Default = folded
				notes = append(notes, fmt.Sprintf("optimizer: folded constant default of %s", f.Name))
			}
		}
		out.Fields = append(out.Fields, f)
	}
	return &out, notes
}

// referencedIdents collects every identifier appearing in any statement of
// any body, which over-approximates the set of live storage fields.
func referencedIdents(m *ir.ContractModel) map[string]bool {
	used := map[string]bool{}
	collect := func(texts ...string) {
		for _, text := range texts {
			for _, t := range token.Scan(text) {
				if t.Kind == token.Ident {
					used[t.Text] = true
				}
			}
		}
	}
	visit := func(st *ir.Statement) {
		if st.Target != "" {
			used[st.Target] = true
		}
		collect(st.Expr, st.Cond, st.Callee)
	}
	for _, c := range m.Constructors {
		ir.Walk(c.Body, visit)
	}
	for _, fn := range m.Functions {
		ir.Walk(fn.Body, visit)
	}
	return used
}

// foldConstant folds a single binary +,-,* over decimal literals, or a
// longer chain when every operator is the same associative one (+ or *).
// Mixed-precedence expressions are left alone rather than mis-evaluated.
func foldConstant(expr string) (string, bool) {
	toks := token.Scan(expr)
	var nums []int64
	var ops []string
	for i := 0; toks[i].Kind != token.EOF; i++ {
		t := toks[i]
		if i%2 == 0 {
			n, err := strconv.ParseInt(t.Text, 10, 64)
			if err != nil {
				return expr, false
			}
			nums = append(nums, n)
			continue
		}
		if t.Kind != token.Punct || (t.Text != "+" && t.Text != "-" && t.Text != "*") {
			return expr, false
		}
		ops = append(ops, t.Text)
	}
	if len(ops) == 0 || len(nums) != len(ops)+1 {
		return expr, false
	}
	if len(ops) > 1 {
		for _, op := range ops {
			if op != ops[0] || op == "-" {
				return expr, false
			}
		}
	}
	acc := nums[0]
	for i, op := range ops {
		switch op {
		case "+":
			acc += nums[i+1]
		case "-":
			acc -= nums[i+1]
		case "*":
			acc *= nums[i+1]
		}
	}
	return strconv.FormatInt(acc, 10), true
}
