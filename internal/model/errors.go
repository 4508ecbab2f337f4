package model

import "fmt"

type ParseErrorKind string

const (
	ParseNotAContract     ParseErrorKind = "not_a_contract"
	ParseAmbiguousDialect ParseErrorKind = "ambiguous_dialect"
	ParseSyntaxError      ParseErrorKind = "syntax_error"
)

// ParseError is returned when input cannot be parsed as a contract at all.
// Recoverable oddities become ParseWarnings on the model instead.
type ParseError struct {
	Kind   ParseErrorKind
	Line   int
	Detail string
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case ParseNotAContract:
		return "input does not parse as a contract in any supported dialect"
	case ParseAmbiguousDialect:
		return "input matches more than one dialect; specify the source dialect explicitly"
	default:
		if e.Detail != "" {
			return fmt.Sprintf("syntax error at line %d: %s", e.Line, e.Detail)
		}
		return fmt.Sprintf("syntax error at line %d", e.Line)
	}
}

func NewSyntaxError(line int, format string, args ...any) *ParseError {
	return &ParseError{Kind: ParseSyntaxError, Line: line, Detail: fmt.Sprintf(format, args...)}
}

// ConfigError covers malformed request configuration, e.g. an unknown
// conversion target. No partial output is produced when one is returned.
type ConfigError struct {
	Field  string
	Detail string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %q: %s", e.Field, e.Detail)
}

// ConversionError is the hard failure case of the converter: no output can
// be produced at all. Lossy-but-emittable constructs are reported in
// ConversionResult.CompilationOutput instead.
type ConversionError struct {
	Construct string
	Line      int
}

func (e *ConversionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("unsupported construct %q at line %d", e.Construct, e.Line)
	}
	return fmt.Sprintf("unsupported construct %q", e.Construct)
}
