package ident

import "fmt"

// MappedKey wraps a RemoteId that may have been produced by
// alias-transform rewriting or sub_id normalization, retaining the
// original user input for diagnostics (spec.md §4.2).
type MappedKey struct {
	Mapped   RemoteId
	Original string // empty if Mapped was not derived from rewriting
}

// Direct wraps a RemoteId the user supplied directly, with no rewrite.
func Direct(r RemoteId) MappedKey {
	return MappedKey{Mapped: r}
}

// Rewritten wraps a RemoteId produced by rewriting original.
func Rewritten(r RemoteId, original string) MappedKey {
	return MappedKey{Mapped: r, Original: original}
}

// WasMapped reports whether this key was produced by a rewrite.
func (m MappedKey) WasMapped() bool { return m.Original != "" && m.Original != m.Mapped.Name() }

// String shows the mapped form, plus the original when it differs, per
// spec.md §4.2: "<mapped> (converted from '<original>')".
func (m MappedKey) String() string {
	if m.WasMapped() {
		return fmt.Sprintf("%s (converted from '%s')", m.Mapped.Name(), m.Original)
	}
	return m.Mapped.Name()
}
