package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParameter matches every *InvalidParameterError via errors.Is.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrTableNotFound matches every *TableNotFoundError via errors.Is.
	ErrTableNotFound = errors.New("decrement table not found")
)

// InvalidParameterError reports malformed or out-of-domain input. It is
// returned before any computation starts; values are never clamped silently.
type InvalidParameterError struct {
	Field  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}

func (e *InvalidParameterError) Is(target error) bool { return target == ErrInvalidParameter }

// NewInvalidParameter builds an InvalidParameterError with a formatted reason.
func NewInvalidParameter(field, format string, args ...any) error {
	return &InvalidParameterError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// TableNotFoundError reports an unknown decrement table code.
type TableNotFoundError struct {
	Code   string
	Gender Gender
}

func (e *TableNotFoundError) Error() string {
	if e.Gender == "" {
		return fmt.Sprintf("decrement table %q not found", e.Code)
	}
	return fmt.Sprintf("decrement table %q (%s) not found", e.Code, e.Gender)
}

func (e *TableNotFoundError) Is(target error) bool { return target == ErrTableNotFound }

// WarningCode identifies a recoverable numeric degeneracy.
type WarningCode string

const (
	WarnAnnuityFactorDegenerate WarningCode = "ANNUITY_FACTOR_DEGENERATE"
	WarnSolverMaxIterations     WarningCode = "SOLVER_MAX_ITERATIONS"
	WarnSolverNoBracket         WarningCode = "SOLVER_NO_BRACKET"
	WarnSurvivalExhausted       WarningCode = "SURVIVAL_EXHAUSTED"
)

// Warning is a non-fatal degeneracy carried in the result. Any warning marks
// the result as low confidence.
type Warning struct {
	Code    WarningCode `json:"code" yaml:"code"`
	Message string      `json:"message" yaml:"message"`
}
