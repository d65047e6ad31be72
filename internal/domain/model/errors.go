package model

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by the scoring pipeline. Each typed error below
// unwraps to exactly one of them.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrSchemaMismatch = errors.New("feature schema mismatch")
	ErrNotFitted      = errors.New("preprocessor not fitted")
	ErrOracle         = errors.New("probability oracle failure")
)

var (
	ErrAlreadyFitted      = errors.New("preprocessor already fitted")
	ErrAssessmentNotFound = errors.New("assessment not found")
)

// InputError reports a missing or non-finite field.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid input: %s %s", e.Field, e.Reason)
}

func (e *InputError) Unwrap() error { return ErrInvalidInput }

// SchemaError reports columns required by the fitted schema but absent at transform time.
type SchemaError struct {
	SchemaVersion string
	Missing       []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("feature schema mismatch: schema %s missing columns [%s]",
		e.SchemaVersion, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error { return ErrSchemaMismatch }

// OracleError reports a failing oracle or a probability outside [0, 1].
type OracleError struct {
	Reason string
	Err    error
}

func (e *OracleError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("probability oracle failure: %s: %v", e.Reason, e.Err)
	}
	return "probability oracle failure: " + e.Reason
}

func (e *OracleError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrOracle, e.Err}
	}
	return []error{ErrOracle}
}

// ErrorKind labels err for metrics and transport mapping.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrSchemaMismatch):
		return "schema_mismatch"
	case errors.Is(err, ErrNotFitted):
		return "not_fitted"
	case errors.Is(err, ErrOracle):
		return "oracle"
	case errors.Is(err, ErrAssessmentNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
