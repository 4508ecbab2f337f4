package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/elcharitas/mjolnir/internal/model"
)

const FileName = ".mjolnir.yaml"

func Default() model.AnalyzerConfig {
	return model.AnalyzerConfig{EnabledRules: []string{"all"}}
}

// Load searches upward from startDir for a .mjolnir.yaml and returns its
// contents merged over Default. The second return is the path found, empty
// when no file exists anywhere up the tree.
func Load(startDir string) (model.AnalyzerConfig, string, error) {
	cfg := Default()
	dir := startDir
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			b, err := os.ReadFile(candidate)
			if err != nil {
				return cfg, candidate, err
			}
			var file model.AnalyzerConfig
			if err := yaml.Unmarshal(b, &file); err != nil {
				return cfg, candidate, &model.ConfigError{Field: FileName, Detail: err.Error()}
			}
			return Merge(cfg, file), candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return cfg, "", nil
}

// Merge layers override on top of base: a non-empty enabled_rules list
// replaces the base list wholesale, while custom_weights merge per rule id
// with the override winning on conflict.
func Merge(base, override model.AnalyzerConfig) model.AnalyzerConfig {
	out := base
	if len(override.EnabledRules) > 0 {
		out.EnabledRules = override.EnabledRules
	}
	if len(override.CustomWeights) > 0 {
		merged := make(map[string]float64, len(base.CustomWeights)+len(override.CustomWeights))
		for id, w := range base.CustomWeights {
			merged[id] = w
		}
		for id, w := range override.CustomWeights {
			merged[id] = w
		}
		out.CustomWeights = merged
	}
	return out
}
