package frontend

import (
	"regexp"
	"strings"

	"github.com/elcharitas/mjolnir/internal/frontend/ink"
	"github.com/elcharitas/mjolnir/internal/frontend/solidity"
	"github.com/elcharitas/mjolnir/internal/ir"
	"github.com/elcharitas/mjolnir/internal/model"
)

// lightweight structural cues, checked before any real parsing happens
var (
	reInkAttr   = regexp.MustCompile(`#\[\s*ink\s*(::|\()`)
	reSolPragma = regexp.MustCompile(`(?m)^\s*pragma\s+solidity`)
	reSolDecl   = regexp.MustCompile(`(?m)^\s*(abstract\s+)?contract\s+\w+`)
)

// Detect infers the source dialect from structural cues. Input matching
// both dialects is ambiguous; input matching neither is not a contract.
func Detect(code string) (model.Dialect, error) {
	isInk := reInkAttr.MatchString(code)
	isSol := reSolPragma.MatchString(code) || reSolDecl.MatchString(code)
	switch {
	case isInk && isSol:
		return "", &model.ParseError{Kind: model.ParseAmbiguousDialect}
	case isInk:
		return model.DialectInk, nil
	case isSol:
		return model.DialectSolidity, nil
	default:
		return "", &model.ParseError{Kind: model.ParseNotAContract}
	}
}

// Parse builds the shared IR for source of a known dialect.
func Parse(code string, dialect model.Dialect) (*ir.ContractModel, error) {
	switch dialect {
	case model.DialectInk:
		return ink.Parse(code)
	case model.DialectSolidity:
		return solidity.Parse(code)
	default:
		return nil, &model.ConfigError{Field: "dialect", Detail: "unknown dialect " + string(dialect)}
	}
}

// DetectAndParse is the common entry point: infer the dialect, then parse.
func DetectAndParse(code string) (*ir.ContractModel, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &model.ParseError{Kind: model.ParseNotAContract}
	}
	dialect, err := Detect(code)
	if err != nil {
		return nil, err
	}
	return Parse(code, dialect)
}
