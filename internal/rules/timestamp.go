package rules

import (
	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// Flags control flow that branches on the block timestamp, a value block
// producers can skew within consensus bounds.
type timestampDependenceRule struct{}

func (r *timestampDependenceRule) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "timestamp_dependence",
		Description: "Detects contract logic that depends on block timestamps",
		Severity:    model.SeverityMedium,
		Categories:  []model.Category{model.CategorySecurity},
	}
}

func (r *timestampDependenceRule) Analyze(m *ir.ContractModel) []model.Issue {
	var issues []model.Issue
	forEachStatement(m, func(st *ir.Statement) {
		if !st.ReadsTimestamp {
			return
		}
		switch st.Kind {
		case ir.StmtIf, ir.StmtLoop, ir.StmtRequire:
			issues = append(issues, model.Issue{
				Severity:       model.SeverityMedium,
				Message:        "Contract logic depends on block timestamp",
				Line:           st.Line,
				Recommendation: "Avoid block timestamps for critical decisions; miners can skew them by several seconds",
			})
		}
	})
	return issues
}
