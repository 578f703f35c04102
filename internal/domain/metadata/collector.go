// Package metadata locates the schema each app declares for migration
// generation.
package metadata

import (
	"sort"

	"github.com/GriffinCanCode/appkit/internal/shared/types"
	"github.com/GriffinCanCode/appkit/pkg/code"
	"github.com/GriffinCanCode/appkit/pkg/schema"
)

// Conventional attribute names, checked before the type scan.
const (
	AttrBase     = "Base"
	AttrMetadata = "Metadata"
)

// Collector finds *schema.Metadata in app models modules.
type Collector struct {
	code code.Resolver
}

// NewCollector creates a collector over r.
func NewCollector(r code.Resolver) *Collector {
	return &Collector{code: r}
}

// Collect returns the schema of one app, or nil when the app has none.
// The models module is the manifest's models_module, else
// "<import_path>.models", else the app module itself.
func (c *Collector) Collect(rec *types.AppRecord) *schema.Metadata {
	for _, path := range candidates(rec) {
		m, err := c.code.Import(path)
		if err != nil {
			continue
		}
		if md := c.find(m); md != nil {
			return md
		}
	}
	return nil
}

func candidates(rec *types.AppRecord) []string {
	if declared := rec.ModelsModule(); declared != "" {
		return []string{declared}
	}
	return []string{rec.ImportPath + ".models", rec.ImportPath}
}

func (c *Collector) find(m *code.Module) *schema.Metadata {
	if v, err := c.code.Attribute(m, AttrBase); err == nil {
		if p, ok := v.(schema.Provider); ok {
			if md := p.SchemaMetadata(); md != nil {
				return md
			}
		}
	}
	if v, err := c.code.Attribute(m, AttrMetadata); err == nil {
		if md, ok := v.(*schema.Metadata); ok && md != nil {
			return md
		}
	}

	names := make([]string, 0, len(m.Attrs))
	for name := range m.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if md, ok := m.Attrs[name].(*schema.Metadata); ok && md != nil {
			return md
		}
	}
	return nil
}

// CollectAll returns the schema of every app that declares one, keyed by
// app name.
func (c *Collector) CollectAll(apps []*types.AppRecord) map[string]*schema.Metadata {
	out := make(map[string]*schema.Metadata)
	for _, rec := range apps {
		if md := c.Collect(rec); md != nil {
			out[rec.Name] = md
		}
	}
	return out
}
