package rules

import (
	"fmt"

	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// Flags mutating functions that perform an external call before writing
// contract storage, the classic checks-effects-interactions violation.
type reentrancyRule struct{}

func (r *reentrancyRule) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "reentrancy",
		Description: "Detects potential reentrancy vulnerabilities in contract functions",
		Severity:    model.SeverityHigh,
		Categories:  []model.Category{model.CategorySecurity, model.CategoryPerformance},
	}
}

func (r *reentrancyRule) Analyze(m *ir.ContractModel) []model.Issue {
	fields := m.FieldNames()
	var issues []model.Issue
	for _, fn := range m.Functions {
		if !fn.Mutates() {
			continue
		}
		callLine := 0
		for _, st := range ir.Flatten(fn.Body) {
			if st.Kind == ir.StmtExternalCall && !st.SelfDestruct && callLine == 0 {
				callLine = st.Line
			}
			if callLine > 0 && st.Kind == ir.StmtAssign && fields[st.Target] && st.Line > callLine {
				issues = append(issues, model.Issue{
					Severity:       model.SeverityHigh,
					Message:        fmt.Sprintf("Potential reentrancy vulnerability in function %s", fn.Name),
					Line:           callLine,
					Recommendation: "Implement checks-effects-interactions pattern: perform all state changes before making external calls",
				})
				break
			}
		}
	}
	return issues
}
