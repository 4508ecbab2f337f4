package engine

import (
	"math"

	"github.com/elcharitas/mjolnir/internal/model"
)

// Scoring constants. Every category starts at 100; each issue subtracts
// weight x penalty from each category its rule declares, floored at 0.
// The overall score is the rounded unweighted mean of the four categories.
var severityPenalty = map[model.Severity]float64{
	model.SeverityHigh:   15,
	model.SeverityMedium: 7,
	model.SeverityLow:    2,
}

func score(entries []scoredIssue) (model.Metrics, int) {
	deductions := map[model.Category]float64{}
	for _, en := range entries {
		penalty := severityPenalty[en.issue.Severity] * en.weight
		for _, cat := range en.categories {
			deductions[cat] += penalty
		}
	}
	metrics := model.Metrics{
		Performance:   categoryScore(deductions[model.CategoryPerformance]),
		Security:      categoryScore(deductions[model.CategorySecurity]),
		GasEfficiency: categoryScore(deductions[model.CategoryGasEfficiency]),
		CodeQuality:   categoryScore(deductions[model.CategoryCodeQuality]),
	}
	overall := int(math.Round(float64(metrics.Performance+metrics.Security+metrics.GasEfficiency+metrics.CodeQuality) / 4))
	return metrics, overall
}

func categoryScore(deduction float64) int {
	s := int(math.Round(100 - deduction))
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
