// Package schema describes the tables an app owns. Apps expose a
// *Metadata from their models module; migration generation diffs it
// against the live database.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrConflict is returned by Merge when two sources define one table
// differently.
var ErrConflict = errors.New("conflicting table definitions")

// Column is one table column. Type is the SQL type as written in DDL.
type Column struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	PrimaryKey bool   `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	Nullable   bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
}

// Table is a named, ordered column list.
type Table struct {
	Name    string   `json:"name" yaml:"name"`
	Columns []Column `json:"columns" yaml:"columns"`
}

// Metadata is an ordered set of tables.
type Metadata struct {
	Tables []Table `json:"tables" yaml:"tables"`
}

// Provider is implemented by model bases that carry their metadata.
type Provider interface {
	SchemaMetadata() *Metadata
}

// New creates metadata from tables.
func New(tables ...Table) *Metadata {
	return &Metadata{Tables: tables}
}

// Column returns the named column.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return Column{}, false
}

// Equal compares tables column by column, ignoring type case.
func (t Table) Equal(o Table) bool {
	if t.Name != o.Name || len(t.Columns) != len(o.Columns) {
		return false
	}
	for i, c := range t.Columns {
		oc := o.Columns[i]
		if c.Name != oc.Name || !strings.EqualFold(c.Type, oc.Type) ||
			c.PrimaryKey != oc.PrimaryKey || c.Nullable != oc.Nullable {
			return false
		}
	}
	return true
}

// Table returns the named table.
func (m *Metadata) Table(name string) (Table, bool) {
	if m == nil {
		return Table{}, false
	}
	for _, t := range m.Tables {
		if t.Name == name {
			return t, true
		}
	}
	return Table{}, false
}

// TableNames returns table names sorted.
func (m *Metadata) TableNames() []string {
	if m == nil {
		return nil
	}
	names := make([]string, 0, len(m.Tables))
	for _, t := range m.Tables {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Without returns a copy of m lacking the named tables.
func (m *Metadata) Without(names ...string) *Metadata {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	out := &Metadata{}
	if m == nil {
		return out
	}
	for _, t := range m.Tables {
		if !skip[t.Name] {
			out.Tables = append(out.Tables, t)
		}
	}
	return out
}

// Merge unions the tables of all sources in order. A table defined
// identically by several sources appears once; differing definitions are
// an ErrConflict. Nil sources are skipped.
func Merge(sources ...*Metadata) (*Metadata, error) {
	out := &Metadata{}
	for _, src := range sources {
		if src == nil {
			continue
		}
		for _, t := range src.Tables {
			existing, ok := out.Table(t.Name)
			if !ok {
				out.Tables = append(out.Tables, t)
				continue
			}
			if !existing.Equal(t) {
				return nil, fmt.Errorf("%w: table %q", ErrConflict, t.Name)
			}
		}
	}
	return out, nil
}
