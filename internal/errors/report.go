package errors

import (
	"encoding/json"
	goerrors "errors"

	"github.com/rustsem/corec/internal/ast"
)

// Report is the canonical structured diagnostic emitted by any phase of the
// core. Grounded on the teacher's internal/errors/report.go Report/ReportError
// pair, generalized from the teacher's single "ailang.error/v1" schema to
// this module's own schema tag and phase taxonomy (internal/errors/codes.go).
type Report struct {
	Schema  string         `json:"schema"`
	Code    string         `json:"code"`
	Phase   string         `json:"phase"`
	Message string         `json:"message"`
	Span    *ast.Span      `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// ReportError wraps a Report as an error so it survives errors.As unwrapping.
type ReportError struct {
	Rep *Report
}

func (e *ReportError) Error() string {
	if e.Rep == nil {
		return "unknown error"
	}
	return e.Rep.Code + ": " + e.Rep.Message
}

// AsReport extracts a Report from an error chain, if present.
func AsReport(err error) (*Report, bool) {
	var re *ReportError
	if goerrors.As(err, &re) {
		return re.Rep, true
	}
	return nil, false
}

// WrapReport wraps a Report as an error.
func WrapReport(r *Report) error {
	if r == nil {
		return nil
	}
	return &ReportError{Rep: r}
}

// NewReport builds a Report from a registered error code, filling Phase
// from the code registry so callers never have to restate it.
func NewReport(code string, span *ast.Span, msg string, data map[string]any) *Report {
	phase := "unknown"
	if info, ok := GetErrorInfo(code); ok {
		phase = info.Phase
	}
	return &Report{
		Schema:  "rustsem.core.error/v1",
		Code:    code,
		Phase:   phase,
		Message: msg,
		Span:    span,
		Data:    data,
	}
}

// ToJSON renders the report deterministically, for machine-readable
// diagnostic consumers.
func (r *Report) ToJSON() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
