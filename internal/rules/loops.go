package rules

import (
	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// Flags external calls inside loops: one failing or gas-hungry callee can
// block the whole batch, and cost grows with participant count.
type loopExternalCallRule struct{}

func (r *loopExternalCallRule) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "loop_external_call",
		Description: "Detects external calls inside loops",
		Severity:    model.SeverityHigh,
		Categories:  []model.Category{model.CategorySecurity, model.CategoryGasEfficiency},
	}
}

func (r *loopExternalCallRule) Analyze(m *ir.ContractModel) []model.Issue {
	var issues []model.Issue
	forEachStatement(m, func(st *ir.Statement) {
		if st.Kind != ir.StmtLoop {
			return
		}
		for _, inner := range ir.Flatten(st.Body) {
			if inner.Kind == ir.StmtExternalCall && !inner.SelfDestruct {
				issues = append(issues, model.Issue{
					Severity:       model.SeverityHigh,
					Message:        "DoS vulnerability: unbounded loop with external calls",
					Line:           inner.Line,
					Recommendation: "Use pull payment pattern instead of push payments in loops",
				})
				break
			}
		}
	})
	return issues
}
