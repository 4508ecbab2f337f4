package rules

import (
	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// Flags authorization decisions based on the transaction origin, which a
// malicious intermediate contract can satisfy on the victim's behalf.
type txOriginAuthRule struct{}

func (r *txOriginAuthRule) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "tx_origin_auth",
		Description: "Detects authorization through tx.origin",
		Severity:    model.SeverityHigh,
		Categories:  []model.Category{model.CategorySecurity},
	}
}

func (r *txOriginAuthRule) Analyze(m *ir.ContractModel) []model.Issue {
	var issues []model.Issue
	forEachStatement(m, func(st *ir.Statement) {
		if !st.ReadsTxOrigin {
			return
		}
		if st.Kind != ir.StmtRequire && st.Kind != ir.StmtIf {
			return
		}
		issues = append(issues, model.Issue{
			Severity:       model.SeverityHigh,
			Message:        "Authorization through tx.origin",
			Line:           st.Line,
			Recommendation: "Use msg.sender for authorization instead of tx.origin",
		})
	})
	return issues
}

// forEachStatement visits every statement of every function body and
// constructor body in declaration order.
func forEachStatement(m *ir.ContractModel, visit func(*ir.Statement)) {
	for _, c := range m.Constructors {
		ir.Walk(c.Body, visit)
	}
	for _, fn := range m.Functions {
		ir.Walk(fn.Body, visit)
	}
}
