package rules

import (
	"fmt"

	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// Flags unkeyed sequence-valued storage fields, which grow without bound
// and make iteration cost scale with contract lifetime.
type unboundedStorageRule struct{}

func (r *unboundedStorageRule) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "unbounded_storage",
		Description: "Detects storage fields that can grow without bound",
		Severity:    model.SeverityMedium,
		Categories:  []model.Category{model.CategoryGasEfficiency},
	}
}

func (r *unboundedStorageRule) Analyze(m *ir.ContractModel) []model.Issue {
	var issues []model.Issue
	for _, f := range m.Fields {
		if f.Type.Kind != ir.TypeSequence {
			continue
		}
		issues = append(issues, model.Issue{
			Severity:       model.SeverityMedium,
			Message:        fmt.Sprintf("Unbounded storage growth in field %s", f.Name),
			Line:           f.Line,
			Recommendation: "Use a mapping keyed by account, or bound the collection, so storage and iteration costs stay constant",
		})
	}
	return issues
}
