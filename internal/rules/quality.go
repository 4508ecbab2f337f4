package rules

import (
	"fmt"

	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// Flags functions relying on the dialect's default visibility.
type missingVisibilityRule struct{}

func (r *missingVisibilityRule) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "missing_visibility",
		Description: "Checks that functions declare their visibility explicitly",
		Severity:    model.SeverityLow,
		Categories:  []model.Category{model.CategoryCodeQuality},
	}
}

func (r *missingVisibilityRule) Analyze(m *ir.ContractModel) []model.Issue {
	var issues []model.Issue
	for _, fn := range m.Functions {
		if !fn.DefaultVisibility {
			continue
		}
		issues = append(issues, model.Issue{
			Severity:       model.SeverityLow,
			Message:        fmt.Sprintf("Function %s has no explicit visibility", fn.Name),
			Line:           fn.Line,
			Recommendation: "Declare function visibility explicitly",
		})
	}
	return issues
}

// Flags unpinned compiler version pragmas.
type floatingPragmaRule struct{}

func (r *floatingPragmaRule) Meta() model.RuleMeta {
	return model.RuleMeta{
		ID:          "floating_pragma",
		Description: "Checks for unpinned compiler version pragmas",
		Severity:    model.SeverityLow,
		Categories:  []model.Category{model.CategoryCodeQuality},
	}
}

func (r *floatingPragmaRule) Analyze(m *ir.ContractModel) []model.Issue {
	if m.Pragma == nil || !m.Pragma.Floating {
		return nil
	}
	return []model.Issue{{
		Severity:       model.SeverityLow,
		Message:        "Floating compiler version pragma " + m.Pragma.Version,
		Line:           m.Pragma.Line,
		Recommendation: "Pin the compiler to a single tested version",
	}}
}
