package rules

import (
	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// Rule is one independently-evaluable analysis unit. Rules are pure
// functions of the IR: no rule may read another rule's output, so the
// engine is free to run them in any order or in parallel.
type Rule interface {
	Meta() model.RuleMeta
	Analyze(m *ir.ContractModel) []model.Issue
}

type Registry struct{ rules []Rule }

func NewRegistry() *Registry { return &Registry{} }

func (r *Registry) Register(rule Rule) { r.rules = append(r.rules, rule) }

// RegisterBuiltin installs the built-in rule set. Registration order is the
// deterministic tie-breaker for issue sorting, so new rules go at the end.
func (r *Registry) RegisterBuiltin() {
	r.Register(&reentrancyRule{})
	r.Register(&unboundedStorageRule{})
	r.Register(&eventEmissionRule{})
	r.Register(&integerOverflowRule{})
	r.Register(&txOriginAuthRule{})
	r.Register(&timestampDependenceRule{})
	r.Register(&selfDestructRule{})
	r.Register(&delegatecallRule{})
	r.Register(&loopExternalCallRule{})
	r.Register(&missingVisibilityRule{})
	r.Register(&weakRandomnessRule{})
	r.Register(&floatingPragmaRule{})
}

func (r *Registry) Rules() []Rule { return r.rules }

// Enabled filters the registry through the config's enabled_rules list,
// preserving registration order.
func (r *Registry) Enabled(cfg model.AnalyzerConfig) []Rule {
	var out []Rule
	for _, rule := range r.rules {
		if cfg.RuleEnabled(rule.Meta().ID) {
			out = append(out, rule)
		}
	}
	return out
}
