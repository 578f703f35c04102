package validation

import (
	"fmt"

	"github.com/GriffinCanCode/appkit/internal/shared/types"
)

// Result collects errors, which make an app invalid, and warnings, which
// do not.
type Result struct {
	Errors   []string `json:"errors" yaml:"errors"`
	Warnings []string `json:"warnings" yaml:"warnings"`
}

// AddError records a failed rule.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// AddWarning records a suspicious but allowed condition.
func (r *Result) AddWarning(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Merge appends the findings of o.
func (r *Result) Merge(o Result) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// Valid reports whether no errors were recorded.
func (r Result) Valid() bool {
	return len(r.Errors) == 0
}

// Err returns the errors as a *types.ValidationError, or nil.
func (r Result) Err(subject string) error {
	if r.Valid() {
		return nil
	}
	return &types.ValidationError{Subject: subject, Violations: r.Errors}
}
