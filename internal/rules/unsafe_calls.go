package rules

import (
	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// Flags contract termination reachable without a caller guard.
type selfDestructRule struct{}

func (r *selfDestructRule) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "unprotected_selfdestruct",
		Description: "Detects self-destruct reachable without access control",
		Severity:    model.SeverityHigh,
		Categories:  []model.Category{model.CategorySecurity},
	}
}

func (r *selfDestructRule) Analyze(m *ir.ContractModel) []model.Issue {
	var issues []model.Issue
	for _, fn := range m.Functions {
		if fn.Guarded {
			continue
		}
		for _, st := range ir.Flatten(fn.Body) {
			if st.Kind == ir.StmtExternalCall && st.SelfDestruct {
				issues = append(issues, model.Issue{
					Severity:       model.SeverityHigh,
					Message:        "Unprotected self-destruct functionality",
					Line:           st.Line,
					Recommendation: "Restrict contract termination behind an owner or admin check",
				})
				break
			}
		}
	}
	return issues
}

// Flags delegate dispatch into a target that is not a compile-time
// constant; the implementation executes with this contract's storage.
type delegatecallRule struct{}

func (r *delegatecallRule) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "delegatecall_unsafe",
		Description: "Detects delegatecall with a variable target",
		Severity:    model.SeverityHigh,
		Categories:  []model.Category{model.CategorySecurity},
	}
}

func (r *delegatecallRule) Analyze(m *ir.ContractModel) []model.Issue {
	var issues []model.Issue
	forEachStatement(m, func(st *ir.Statement) {
		if st.Kind != ir.StmtExternalCall || !st.Delegate || st.ConstCallee {
			return
		}
		issues = append(issues, model.Issue{
			Severity:       model.SeverityHigh,
			Message:        "Delegatecall with a non-constant target",
			Line:           st.Line,
			Recommendation: "Only delegate into trusted, fixed implementation addresses",
		})
	})
	return issues
}
