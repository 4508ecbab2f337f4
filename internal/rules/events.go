package rules

import (
	"fmt"

	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// Flags state-mutating functions whose body emits no event, leaving
// off-chain consumers blind to the change.
type eventEmissionRule struct{}

func (r *eventEmissionRule) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "event_emission",
		Description: "Checks for event emissions after state changes",
		Severity:    model.SeverityLow,
		Categories:  []model.Category{model.CategoryCodeQuality},
	}
}

func (r *eventEmissionRule) Analyze(m *ir.ContractModel) []model.Issue {
	fields := m.FieldNames()
	var issues []model.Issue
	for _, fn := range m.Functions {
		if !fn.Mutates() {
			continue
		}
		mutates, emits := false, false
		for _, st := range ir.Flatten(fn.Body) {
			if st.Kind == ir.StmtAssign && fields[st.Target] {
				mutates = true
			}
			if st.Kind == ir.StmtEmit {
				emits = true
			}
		}
		if mutates && !emits {
			issues = append(issues, model.Issue{
				Severity:       model.SeverityLow,
				Message:        fmt.Sprintf("Missing event emission after state change in function %s", fn.Name),
				Line:           fn.Line,
				Recommendation: "Emit events after significant state changes for better off-chain tracking",
			})
		}
	}
	return issues
}
