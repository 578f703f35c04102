package types

// AppKind distinguishes apps co-located with the host from separately
// packaged ones.
type AppKind string

const (
	KindInternal AppKind = "internal" // lives under the host's apps/ tree
	KindExternal AppKind = "external" // independently packaged Go module
)

// Valid reports whether k is a known kind.
func (k AppKind) Valid() bool {
	return k == KindInternal || k == KindExternal
}

func (k AppKind) String() string {
	return string(k)
}
