package registry

import (
	"errors"
	"fmt"

	"github.com/GriffinCanCode/appkit/internal/shared/types"
	"github.com/GriffinCanCode/appkit/pkg/routes"
)

// Registry is an ordered, name-keyed, append-only store of loaded apps.
// It is built by a single owner and not safe for concurrent mutation.
type Registry struct {
	records []*types.AppRecord
	index   map[string]int
	mounts  []Mount
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{index: make(map[string]int)}
}

// Register appends rec. Registering a name twice is an error.
func (r *Registry) Register(rec *types.AppRecord) error {
	if rec == nil || rec.Name == "" {
		return errors.New("app record requires a name")
	}
	if _, exists := r.index[rec.Name]; exists {
		return fmt.Errorf("%w: %s", types.ErrDuplicateApp, rec.Name)
	}
	r.index[rec.Name] = len(r.records)
	r.records = append(r.records, rec)
	return nil
}

// Get returns the named record.
func (r *Registry) Get(name string) (*types.AppRecord, bool) {
	i, ok := r.index[name]
	if !ok {
		return nil, false
	}
	return r.records[i], true
}

// Contains reports whether name is registered.
func (r *Registry) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// List returns all records in registration order.
func (r *Registry) List() []*types.AppRecord {
	out := make([]*types.AppRecord, len(r.records))
	copy(out, r.records)
	return out
}

// FilterByKind returns the records of one kind in registration order.
func (r *Registry) FilterByKind(kind types.AppKind) []*types.AppRecord {
	var out []*types.AppRecord
	for _, rec := range r.records {
		if rec.Kind == kind {
			out = append(out, rec)
		}
	}
	return out
}

// Names returns app names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.records))
	for i, rec := range r.records {
		out[i] = rec.Name
	}
	return out
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.records)
}

// bindRoutes late-binds the route collection returned by an entrypoint.
// It is the only mutation allowed after registration.
func (r *Registry) bindRoutes(name string, rc *routes.Collection) error {
	rec, ok := r.Get(name)
	if !ok {
		return fmt.Errorf("%w: %s", types.ErrAppNotFound, name)
	}
	rec.Routes = rc
	return nil
}
