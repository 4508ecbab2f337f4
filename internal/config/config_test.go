package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elcharitas/mjolnir/internal/model"
)

func TestLoad(t *testing.T) {
	t.Run("no file anywhere returns defaults", func(t *testing.T) {
		dir := t.TempDir()
		cfg, path, err := Load(dir)
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("file in start dir", func(t *testing.T) {
		dir := t.TempDir()
		content := "enabled_rules:\n  - reentrancy\n  - floating_pragma\ncustom_weights:\n  reentrancy: 2.5\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0o644))

		cfg, path, err := Load(dir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, FileName), path)
		assert.Equal(t, []string{"reentrancy", "floating_pragma"}, cfg.EnabledRules)
		assert.Equal(t, 2.5, cfg.CustomWeights["reentrancy"])
	})

	t.Run("file found in a parent dir", func(t *testing.T) {
		root := t.TempDir()
		nested := filepath.Join(root, "a", "b")
		require.NoError(t, os.MkdirAll(nested, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("enabled_rules: [tx_origin_auth]\n"), 0o644))

		cfg, path, err := Load(nested)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(root, FileName), path)
		assert.Equal(t, []string{"tx_origin_auth"}, cfg.EnabledRules)
	})

	t.Run("malformed yaml is a config error", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("enabled_rules: [unclosed"), 0o644))

		_, _, err := Load(dir)
		var cerr *model.ConfigError
		require.ErrorAs(t, err, &cerr)
	})
}

func TestMerge(t *testing.T) {
	base := model.AnalyzerConfig{
		EnabledRules:  []string{"all"},
		CustomWeights: map[string]float64{"reentrancy": 1.5, "floating_pragma": 0.5},
	}

	t.Run("empty override keeps base", func(t *testing.T) {
		got := Merge(base, model.AnalyzerConfig{})
		assert.Equal(t, base.EnabledRules, got.EnabledRules)
		assert.Equal(t, base.CustomWeights, got.CustomWeights)
	})

	t.Run("override rules replace wholesale", func(t *testing.T) {
		got := Merge(base, model.AnalyzerConfig{EnabledRules: []string{"reentrancy"}})
		assert.Equal(t, []string{"reentrancy"}, got.EnabledRules)
	})

	t.Run("weights merge per rule", func(t *testing.T) {
		got := Merge(base, model.AnalyzerConfig{CustomWeights: map[string]float64{"reentrancy": 3}})
		assert.Equal(t, 3.0, got.CustomWeights["reentrancy"])
		assert.Equal(t, 0.5, got.CustomWeights["floating_pragma"], "untouched base weights survive")
		assert.Equal(t, 1.5, base.CustomWeights["reentrancy"], "merge never mutates the base")
	})
}
