package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elcharitas/mjolnir/internal/model"
	"github.com/elcharitas/mjolnir/internal/util"
)

func TestToSARIF(t *testing.T) {
	issues := []model.Issue{
		{Severity: model.SeverityHigh, Message: "Potential reentrancy vulnerability in function withdraw", Line: 12, Recommendation: "Apply checks-effects-interactions"},
		{Severity: model.SeverityMedium, Message: "Contract logic depends on block timestamp", Line: 30},
		{Severity: model.SeverityLow, Message: "Floating compiler version pragma ^0.8.0"},
	}

	raw, err := ToSARIF(issues, "contracts/vault.sol")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "2.1.0", doc["version"])

	runs := doc["runs"].([]any)
	require.Len(t, runs, 1)
	results := runs[0].(map[string]any)["results"].([]any)
	require.Len(t, results, 3)

	first := results[0].(map[string]any)
	assert.Equal(t, "error", first["level"])
	msg := first["message"].(map[string]any)["text"].(string)
	assert.Contains(t, msg, "withdraw")
	assert.Contains(t, msg, "checks-effects-interactions", "recommendation folds into the message text")

	loc := first["locations"].([]any)[0].(map[string]any)["physicalLocation"].(map[string]any)
	assert.Equal(t, "contracts/vault.sol", loc["artifactLocation"].(map[string]any)["uri"])
	assert.Equal(t, float64(12), loc["region"].(map[string]any)["startLine"])

	fp := first["partialFingerprints"].(map[string]any)["issueHash/v1"].(string)
	assert.Equal(t, util.Fingerprint(issues[0]), fp)
	assert.Len(t, fp, 64)

	assert.Equal(t, "warning", results[1].(map[string]any)["level"])

	third := results[2].(map[string]any)
	assert.Equal(t, "note", third["level"])
	_, hasRegion := third["locations"].([]any)[0].(map[string]any)["physicalLocation"].(map[string]any)["region"]
	assert.False(t, hasRegion, "line-less issues omit the region")
}

func TestToSARIF_Empty(t *testing.T) {
	raw, err := ToSARIF(nil, "stdin")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	results := doc["runs"].([]any)[0].(map[string]any)["results"].([]any)
	assert.Empty(t, results)
}
