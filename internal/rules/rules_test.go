package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

func uintField(name string) ir.StorageField {
	return ir.StorageField{Name: name, Type: ir.Type{Kind: ir.TypeInt, Bits: 256}}
}

func TestReentrancyRule(t *testing.T) {
	rule := &reentrancyRule{}

	t.Run("call before state write fires", func(t *testing.T) {
		m := &ir.ContractModel{
			Name:   "Vault",
			Fields: []ir.StorageField{uintField("balance")},
			Functions: []ir.Function{{
				Name: "withdraw", Mutability: ir.MutMutating,
				Body: []ir.Statement{
					{Kind: ir.StmtExternalCall, Line: 10, Callee: "msg.sender"},
					{Kind: ir.StmtAssign, Line: 11, Target: "balance"},
				},
			}},
		}
		issues := rule.Analyze(m)
		require.Len(t, issues, 1)
		assert.Equal(t, model.SeverityHigh, issues[0].Severity)
		assert.Equal(t, 10, issues[0].Line)
		assert.Contains(t, issues[0].Message, "withdraw")
	})

	t.Run("write before call is clean", func(t *testing.T) {
		m := &ir.ContractModel{
			Name:   "Vault",
			Fields: []ir.StorageField{uintField("balance")},
			Functions: []ir.Function{{
				Name: "withdraw", Mutability: ir.MutMutating,
				Body: []ir.Statement{
					{Kind: ir.StmtAssign, Line: 10, Target: "balance"},
					{Kind: ir.StmtExternalCall, Line: 11, Callee: "msg.sender"},
				},
			}},
		}
		assert.Empty(t, rule.Analyze(m))
	})

	t.Run("view functions are skipped", func(t *testing.T) {
		m := &ir.ContractModel{
			Name:   "Vault",
			Fields: []ir.StorageField{uintField("balance")},
			Functions: []ir.Function{{
				Name: "peek", Mutability: ir.MutView,
				Body: []ir.Statement{
					{Kind: ir.StmtExternalCall, Line: 5},
					{Kind: ir.StmtAssign, Line: 6, Target: "balance"},
				},
			}},
		}
		assert.Empty(t, rule.Analyze(m))
	})
}

func TestIntegerOverflowRule(t *testing.T) {
	rule := &integerOverflowRule{}
	m := &ir.ContractModel{
		Name:   "Counter",
		Fields: []ir.StorageField{uintField("count"), {Name: "label", Type: ir.Type{Kind: ir.TypeString}}},
		Functions: []ir.Function{{
			Name: "bump", Mutability: ir.MutMutating,
			Body: []ir.Statement{
				{Kind: ir.StmtAssign, Line: 3, Target: "count", Arith: true},
				{Kind: ir.StmtAssign, Line: 4, Target: "count", Arith: true, Checked: true},
				{Kind: ir.StmtAssign, Line: 5, Target: "label", Arith: true},
				{Kind: ir.StmtAssign, Line: 6, Target: "local", Arith: true},
			},
		}},
	}
	issues := rule.Analyze(m)
	require.Len(t, issues, 1, "only unchecked arithmetic on integer storage fires")
	assert.Equal(t, 3, issues[0].Line)
}

func TestAuthorizationRules(t *testing.T) {
	t.Run("tx origin in require", func(t *testing.T) {
		m := &ir.ContractModel{
			Name: "Wallet",
			Functions: []ir.Function{{
				Name: "withdraw", Mutability: ir.MutMutating,
				Body: []ir.Statement{{Kind: ir.StmtRequire, Line: 7, ReadsTxOrigin: true}},
			}},
		}
		issues := (&txOriginAuthRule{}).Analyze(m)
		require.Len(t, issues, 1)
		assert.Equal(t, model.SeverityHigh, issues[0].Severity)
	})

	t.Run("tx origin outside a branch or guard is ignored", func(t *testing.T) {
		m := &ir.ContractModel{
			Name: "Logger",
			Functions: []ir.Function{{
				Name: "log",
				Body: []ir.Statement{{Kind: ir.StmtOther, ReadsTxOrigin: true}},
			}},
		}
		assert.Empty(t, (&txOriginAuthRule{}).Analyze(m))
	})

	t.Run("unguarded selfdestruct fires, guarded does not", func(t *testing.T) {
		kill := ir.Statement{Kind: ir.StmtExternalCall, SelfDestruct: true, Line: 9}
		m := &ir.ContractModel{
			Name: "Mortal",
			Functions: []ir.Function{
				{Name: "kill", Body: []ir.Statement{kill}},
				{Name: "ownerKill", Guarded: true, Body: []ir.Statement{kill}},
			},
		}
		issues := (&selfDestructRule{}).Analyze(m)
		require.Len(t, issues, 1)
		assert.Equal(t, 9, issues[0].Line)
	})
}

func TestTimestampAndRandomnessRules(t *testing.T) {
	m := &ir.ContractModel{
		Name: "Game",
		Functions: []ir.Function{{
			Name: "play", Mutability: ir.MutMutating,
			Body: []ir.Statement{
				{Kind: ir.StmtIf, Line: 3, ReadsTimestamp: true},
				{Kind: ir.StmtAssign, Line: 4, Target: "seed", ReadsBlockRand: true},
				{Kind: ir.StmtAssign, Line: 5, Target: "last", ReadsTimestamp: true},
			},
		}},
	}

	ts := (&timestampDependenceRule{}).Analyze(m)
	require.Len(t, ts, 1, "plain timestamp reads outside control flow are allowed")
	assert.Equal(t, 3, ts[0].Line)

	rand := (&weakRandomnessRule{}).Analyze(m)
	require.Len(t, rand, 1)
	assert.Equal(t, 4, rand[0].Line)
}

func TestDelegatecallRule(t *testing.T) {
	rule := &delegatecallRule{}
	m := &ir.ContractModel{
		Name: "Proxy",
		Functions: []ir.Function{{
			Name: "forward",
			Body: []ir.Statement{
				{Kind: ir.StmtExternalCall, Line: 4, Delegate: true},
				{Kind: ir.StmtExternalCall, Line: 5, Delegate: true, ConstCallee: true},
			},
		}},
	}
	issues := rule.Analyze(m)
	require.Len(t, issues, 1, "constant targets are trusted")
	assert.Equal(t, 4, issues[0].Line)
}

func TestLoopExternalCallRule(t *testing.T) {
	rule := &loopExternalCallRule{}
	m := &ir.ContractModel{
		Name: "Airdrop",
		Functions: []ir.Function{{
			Name: "payAll", Mutability: ir.MutMutating,
			Body: []ir.Statement{{
				Kind: ir.StmtLoop, Line: 3,
				Body: []ir.Statement{{Kind: ir.StmtExternalCall, Line: 4}},
			}},
		}},
	}
	issues := rule.Analyze(m)
	require.Len(t, issues, 1)
	assert.Equal(t, 4, issues[0].Line)
	assert.Contains(t, issues[0].Message, "loop")
}

func TestEventEmissionRule(t *testing.T) {
	rule := &eventEmissionRule{}
	m := &ir.ContractModel{
		Name:   "Bank",
		Fields: []ir.StorageField{uintField("total")},
		Functions: []ir.Function{
			{
				Name: "deposit", Mutability: ir.MutMutating, Line: 5,
				Body: []ir.Statement{
					{Kind: ir.StmtAssign, Target: "total"},
					{Kind: ir.StmtEmit, Event: "Deposited"},
				},
			},
			{
				Name: "sweep", Mutability: ir.MutMutating, Line: 12,
				Body: []ir.Statement{{Kind: ir.StmtAssign, Target: "total"}},
			},
		},
	}
	issues := rule.Analyze(m)
	require.Len(t, issues, 1)
	assert.Contains(t, issues[0].Message, "sweep")
	assert.Equal(t, 12, issues[0].Line)
}

func TestStorageAndQualityRules(t *testing.T) {
	t.Run("unbounded sequence field", func(t *testing.T) {
		m := &ir.ContractModel{
			Name: "Registry",
			Fields: []ir.StorageField{
				{Name: "entries", Line: 4, Type: ir.Type{Kind: ir.TypeSequence}},
				uintField("count"),
			},
		}
		issues := (&unboundedStorageRule{}).Analyze(m)
		require.Len(t, issues, 1)
		assert.Equal(t, model.SeverityMedium, issues[0].Severity)
		assert.Contains(t, issues[0].Message, "entries")
	})

	t.Run("default visibility", func(t *testing.T) {
		m := &ir.ContractModel{
			Name: "C",
			Functions: []ir.Function{
				{Name: "implicit", DefaultVisibility: true, Line: 3},
				{Name: "explicit"},
			},
		}
		issues := (&missingVisibilityRule{}).Analyze(m)
		require.Len(t, issues, 1)
		assert.Contains(t, issues[0].Message, "implicit")
	})

	t.Run("floating pragma", func(t *testing.T) {
		pinned := &ir.ContractModel{Name: "C", Pragma: &ir.Pragma{Version: "0.8.19"}}
		assert.Empty(t, (&floatingPragmaRule{}).Analyze(pinned))

		floating := &ir.ContractModel{Name: "C", Pragma: &ir.Pragma{Version: "^0.8.0", Floating: true, Line: 1}}
		issues := (&floatingPragmaRule{}).Analyze(floating)
		require.Len(t, issues, 1)
		assert.Equal(t, 1, issues[0].Line)
	})
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterBuiltin()

	t.Run("registration order is stable", func(t *testing.T) {
		ids := make([]string, 0, len(reg.Rules()))
		for _, r := range reg.Rules() {
			ids = append(ids, r.Meta().ID)
		}
		assert.Equal(t, []string{
			"reentrancy", "unbounded_storage", "event_emission", "integer_overflow",
			"tx_origin_auth", "timestamp_dependence", "unprotected_selfdestruct",
			"delegatecall_unsafe", "loop_external_call", "missing_visibility",
			"weak_randomness", "floating_pragma",
		}, ids)
	})

	t.Run("enabled filter", func(t *testing.T) {
		enabled := reg.Enabled(model.AnalyzerConfig{EnabledRules: []string{"reentrancy", "floating_pragma"}})
		require.Len(t, enabled, 2)
		assert.Equal(t, "reentrancy", enabled[0].Meta().ID)
		assert.Equal(t, "floating_pragma", enabled[1].Meta().ID)
	})

	t.Run("all keyword enables everything", func(t *testing.T) {
		assert.Len(t, reg.Enabled(model.AnalyzerConfig{EnabledRules: []string{"all"}}), len(reg.Rules()))
	})
}
