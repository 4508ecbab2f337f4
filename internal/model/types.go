package model

type Dialect string

const (
	DialectInk      Dialect = "ink"
	DialectSolidity Dialect = "solidity"
)

// ParseDialect maps a request target string onto a known dialect.
func ParseDialect(s string) (Dialect, bool) {
	switch s {
	case string(DialectInk):
		return DialectInk, true
	case string(DialectSolidity):
		return DialectSolidity, true
	}
	return "", false
}

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

var severityRank = map[Severity]int{SeverityLow: 1, SeverityMedium: 2, SeverityHigh: 3}

// ParseSeverity maps a flag or config string onto a known severity.
func ParseSeverity(s string) (Severity, bool) {
	sev := Severity(s)
	_, ok := severityRank[sev]
	return sev, ok
}

func (s Severity) Rank() int { return severityRank[s] }

func SeverityGTE(a, b Severity) bool { return a.Rank() >= b.Rank() }

// Issue is a single analysis finding. Immutable once emitted by a rule.
type Issue struct {
	Severity       Severity `json:"severity"`
	Message        string   `json:"message"`
	Line           int      `json:"line,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
}

// Metrics holds the four published category scores, each in [0,100].
type Metrics struct {
	Performance   int `json:"performance"`
	Security      int `json:"security"`
	GasEfficiency int `json:"gas_efficiency"`
	CodeQuality   int `json:"code_quality"`
}

type AnalysisResult struct {
	Score   int     `json:"score"`
	Metrics Metrics `json:"metrics"`
	Issues  []Issue `json:"issues"`
}

type AnalyzerConfig struct {
	EnabledRules  []string           `json:"enabled_rules" yaml:"enabled_rules"`
	CustomWeights map[string]float64 `json:"custom_weights,omitempty" yaml:"custom_weights,omitempty"`
}

// RuleEnabled reports whether a rule id passes the enabled_rules filter.
// An empty list and the literal "all" both mean every built-in rule runs.
func (c AnalyzerConfig) RuleEnabled(id string) bool {
	if len(c.EnabledRules) == 0 {
		return true
	}
	for _, r := range c.EnabledRules {
		if r == "all" || r == id {
			return true
		}
	}
	return false
}

// Weight returns the configured weight for a rule id, defaulting to 1.
// Unknown keys in custom_weights are never looked up.
func (c AnalyzerConfig) Weight(id string) float64 {
	if w, ok := c.CustomWeights[id]; ok && w >= 0 {
		return w
	}
	return 1
}

type ConversionResult struct {
	ConvertedCode     string  `json:"convertedCode"`
	TargetType        Dialect `json:"targetType"`
	CompilationOutput string  `json:"compilationOutput,omitempty"`
}

type Category string

const (
	CategoryPerformance   Category = "performance"
	CategorySecurity      Category = "security"
	CategoryGasEfficiency Category = "gas_efficiency"
	CategoryCodeQuality   Category = "code_quality"
)

// RuleMeta describes a built-in analysis rule.
type RuleMeta struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Severity    Severity   `json:"severity"`
	Categories  []Category `json:"categories"`
}
