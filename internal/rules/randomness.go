package rules

import (
	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// Flags randomness derived from block attributes, which validators can
// predict or influence.
type weakRandomnessRule struct{}

func (r *weakRandomnessRule) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "weak_randomness",
		Description: "Detects randomness derived from block attributes",
		Severity:    model.SeverityHigh,
		Categories:  []model.Category{model.CategorySecurity},
	}
}

func (r *weakRandomnessRule) Analyze(m *ir.ContractModel) []model.Issue {
	var issues []model.Issue
	forEachStatement(m, func(st *ir.Statement) {
		if !st.ReadsBlockRand {
			return
		}
		issues = append(issues, model.Issue{
			Severity:       model.SeverityHigh,
			Message:        "Weak randomness from block attributes",
			Line:           st.Line,
			Recommendation: "Use a verifiable randomness source such as a VRF oracle instead of block attributes",
		})
	})
	return issues
}
