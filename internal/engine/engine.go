package engine

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/elcharitas/mjolnir/internal/frontend"
	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
	"github.com/elcharitas/mjolnir/internal/rules"
)

type Engine struct {
	registry *rules.Registry
}

func New() *Engine {
	reg := rules.NewRegistry()
	reg.RegisterBuiltin()
	return &Engine{registry: reg}
}

func (e *Engine) Registry() *rules.Registry { return e.registry }

// Analyze parses source, runs the enabled rules and aggregates the result.
// The whole computation is in-memory and request-scoped.
func (e *Engine) Analyze(ctx context.Context, code string, cfg model.AnalyzerConfig) (*model.AnalysisResult, error) {
	m, err := frontend.DetectAndParse(code)
	if err != nil {
		return nil, err
	}
	return e.AnalyzeModel(ctx, m, cfg), nil
}

// AnalyzeModel runs the rule set over an already-built model. Rules are
// independent by contract, so they run in parallel; their outputs are
// re-joined in registration order before sorting, keeping results
// byte-identical for identical input.
func (e *Engine) AnalyzeModel(ctx context.Context, m *ir.ContractModel, cfg model.AnalyzerConfig) *model.AnalysisResult {
	enabled := e.registry.Enabled(cfg)
	perRule := make([][]model.Issue, len(enabled))

	cpu := runtime.NumCPU()
	if cpu < 2 {
		cpu = 2
	}
	sem := make(chan struct{}, cpu)
	var wg sync.WaitGroup
	for i, rule := range enabled {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			select {
			case <-ctx.Done():
			default:
				perRule[i] = rule.Analyze(m)
			}
		}()
	}
	wg.Wait()

	var entries []scoredIssue
	for i, issues := range perRule {
		meta := enabled[i].Meta()
		weight := cfg.Weight(meta.ID)
		for _, issue := range issues {
			entries = append(entries, scoredIssue{issue: issue, categories: meta.Categories, weight: weight, order: i})
		}
	}
	sortIssues(entries)

	metrics, overall := score(entries)
	out := make([]model.Issue, len(entries))
	for i, en := range entries {
		out[i] = en.issue
	}
	return &model.AnalysisResult{Score: overall, Metrics: metrics, Issues: out}
}

type scoredIssue struct {
	issue      model.Issue
	categories []model.Category
	weight     float64
	order      int
}

// sortIssues applies the published stable order: severity descending, then
// source line ascending with line-less issues last, then rule registration
// order, then message text.
func sortIssues(entries []scoredIssue) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].issue, entries[j].issue
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.Line != b.Line {
			if a.Line == 0 {
				return false
			}
			if b.Line == 0 {
				return true
			}
			return a.Line < b.Line
		}
		if entries[i].order != entries[j].order {
			return entries[i].order < entries[j].order
		}
		return a.Message < b.Message
	})
}
