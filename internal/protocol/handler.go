// Package protocol is the engine's sole external boundary: one JSON request
// in, one JSON response out, no state retained between invocations.
package protocol

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/elcharitas/mjolnir/internal/config"
	"github.com/elcharitas/mjolnir/internal/convert"
	"github.com/elcharitas/mjolnir/internal/engine"
	"github.com/elcharitas/mjolnir/internal/frontend"
	"github.com/elcharitas/mjolnir/internal/model"
)

//go:embed schemas/analyze_request.schema.json
var analyzeSchemaSrc string

//go:embed schemas/convert_request.schema.json
var convertSchemaSrc string

var (
	analyzeSchema = jsonschema.MustCompileString("analyze_request.schema.json", analyzeSchemaSrc)
	convertSchema = jsonschema.MustCompileString("convert_request.schema.json", convertSchemaSrc)
)

type AnalyzeRequest struct {
	Code   string                `json:"code"`
	Config *model.AnalyzerConfig `json:"config,omitempty"`
}

type ConversionRequest struct {
	Code   string        `json:"code"`
	Config ConvertConfig `json:"config"`
}

type ConvertConfig struct {
	Target   string `json:"target"`
	Optimize bool   `json:"optimize,omitempty"`
}

// ErrorResponse is the failure-side wire shape. A caller can rely on
// either a parseable error object or a non-zero exit, never a crash.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

func validate(schema *jsonschema.Schema, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return &model.ConfigError{Field: "request", Detail: "body is not valid JSON: " + err.Error()}
	}
	if err := schema.Validate(v); err != nil {
		return &model.ConfigError{Field: "request", Detail: err.Error()}
	}
	return nil
}

// Analyze decodes an AnalyzeRequest, runs the rule engine and encodes the
// AnalysisResult. base carries config discovered outside the request (the
// config file); request-inline config overrides it field by field.
func Analyze(ctx context.Context, raw []byte, base model.AnalyzerConfig) ([]byte, error) {
	if err := validate(analyzeSchema, raw); err != nil {
		return nil, err
	}
	var req AnalyzeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, &model.ConfigError{Field: "request", Detail: err.Error()}
	}
	cfg := base
	if req.Config != nil {
		cfg = config.Merge(base, *req.Config)
	}
	res, err := engine.New().Analyze(ctx, req.Code, cfg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(res)
}

// Convert decodes a ConversionRequest and encodes the ConversionResult.
func Convert(raw []byte) ([]byte, error) {
	if err := validate(convertSchema, raw); err != nil {
		return nil, err
	}
	var req ConversionRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, &model.ConfigError{Field: "request", Detail: err.Error()}
	}
	target, ok := model.ParseDialect(req.Config.Target)
	if !ok {
		return nil, &model.ConfigError{Field: "target", Detail: "unknown conversion target " + req.Config.Target}
	}
	m, err := frontend.DetectAndParse(req.Code)
	if err != nil {
		return nil, err
	}
	res, err := convert.Convert(m, target, req.Config.Optimize)
	if err != nil {
		return nil, err
	}
	return json.Marshal(res)
}

// EncodeError renders any pipeline error as a well-formed JSON error
// object, classified per the public error taxonomy.
func EncodeError(err error) []byte {
	body := ErrorBody{Kind: "internal_error", Message: err.Error()}
	var parseErr *model.ParseError
	var cfgErr *model.ConfigError
	var convErr *model.ConversionError
	switch {
	case errors.As(err, &parseErr):
		body.Kind = string(parseErr.Kind)
		body.Line = parseErr.Line
	case errors.As(err, &cfgErr):
		body.Kind = "config_error"
	case errors.As(err, &convErr):
		body.Kind = "conversion_error"
		body.Line = convErr.Line
	}
	out, marshalErr := json.Marshal(ErrorResponse{Error: body})
	if marshalErr != nil {
		return []byte(`{"error":{"kind":"internal_error","message":"failed to encode error"}}`)
	}
	return out
}
