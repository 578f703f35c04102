package validation

import (
	"context"

	"github.com/GriffinCanCode/appkit/internal/shared/paths"
	"github.com/GriffinCanCode/appkit/internal/shared/types"
)

// Validator runs every check against one app.
type Validator struct {
	layout    paths.Layout
	isolation *Isolation
}

// New creates a validator for the project at layout.
func New(layout paths.Layout) *Validator {
	return &Validator{layout: layout, isolation: NewIsolation(layout)}
}

// Validate runs all checks and merges their findings.
func (v *Validator) Validate(ctx context.Context, rec *types.AppRecord) Result {
	r := Manifest(rec.Manifest)
	r.Merge(v.isolation.Validate(ctx, rec))
	r.Merge(Migrations(v.layout, rec))
	return r
}
