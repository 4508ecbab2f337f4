package report

import (
	"encoding/json"

	"github.com/elcharitas/mjolnir/internal/model"
	"github.com/elcharitas/mjolnir/internal/util"
)

type sarif struct {
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}
type sarifDriver struct {
	Name string `json:"name"`
}

type sarifResult struct {
	Level        string            `json:"level"`
	Message      sarifMessage      `json:"message"`
	Locations    []sarifLoc        `json:"locations,omitempty"`
	Fingerprints map[string]string `json:"partialFingerprints,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}
type sarifLoc struct {
	Physical sarifPhys `json:"physicalLocation"`
}
type sarifPhys struct {
	ArtifactLocation sarifArt     `json:"artifactLocation"`
	Region           *sarifRegion `json:"region,omitempty"`
}
type sarifArt struct {
	URI string `json:"uri"`
}
type sarifRegion struct {
	StartLine int `json:"startLine"`
	EndLine   int `json:"endLine"`
}

// ToSARIF renders analysis issues as a SARIF 2.1.0 log. uri names the
// analyzed artifact, e.g. the input file path or "stdin".
func ToSARIF(issues []model.Issue, uri string) ([]byte, error) {
	results := make([]sarifResult, 0, len(issues))
	for _, is := range issues {
		level := "note"
		switch is.Severity {
		case model.SeverityMedium:
			level = "warning"
		case model.SeverityHigh:
			level = "error"
		}
		text := is.Message
		if is.Recommendation != "" {
			text += ". " + is.Recommendation
		}
		loc := sarifLoc{Physical: sarifPhys{ArtifactLocation: sarifArt{URI: uri}}}
		if is.Line > 0 {
			loc.Physical.Region = &sarifRegion{StartLine: is.Line, EndLine: is.Line}
		}
		results = append(results, sarifResult{
			Level:        level,
			Message:      sarifMessage{Text: text},
			Locations:    []sarifLoc{loc},
			Fingerprints: map[string]string{"issueHash/v1": util.Fingerprint(is)},
		})
	}
	s := sarif{Version: "2.1.0", Runs: []sarifRun{{Tool: sarifTool{Driver: sarifDriver{Name: "mjolnir"}}, Results: results}}}
	return json.MarshalIndent(s, "", "  ")
}
