package rules

import (
	"fmt"

	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// Flags integer storage writes computed with unguarded arithmetic:
// no checked_* helper, no safe-math wrapper, no compiler-level checks.
type integerOverflowRule struct{}

func (r *integerOverflowRule) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "integer_overflow",
		Description: "Detects unchecked arithmetic on integer storage",
		Severity:    model.SeverityHigh,
		Categories:  []model.Category{model.CategorySecurity},
	}
}

func (r *integerOverflowRule) Analyze(m *ir.ContractModel) []model.Issue {
	var issues []model.Issue
	bodies := make([][]ir.Statement, 0, len(m.Functions)+len(m.Constructors))
	for _, fn := range m.Functions {
		bodies = append(bodies, fn.Body)
	}
	for _, c := range m.Constructors {
		bodies = append(bodies, c.Body)
	}
	for _, body := range bodies {
		for _, st := range ir.Flatten(body) {
			if st.Kind != ir.StmtAssign || !st.Arith || st.Checked {
				continue
			}
			field, ok := m.Field(st.Target)
			if !ok || field.Type.Kind != ir.TypeInt {
				continue
			}
			issues = append(issues, model.Issue{
				Severity:       model.SeverityHigh,
				Message:        fmt.Sprintf("Potential integer overflow/underflow writing field %s", st.Target),
				Line:           st.Line,
				Recommendation: "Use checked arithmetic operations or a safe math library",
			})
		}
	}
	return issues
}
