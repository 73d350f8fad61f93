package ident

import "strings"

// Alias is a user-chosen short name with no colon (spec.md GLOSSARY).
type Alias struct {
	name string
}

// NewAlias validates and constructs an Alias: non-empty after
// trimming, and containing no ':'.
func NewAlias(s string) (Alias, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Alias{}, parseErr(ErrEmptyAlias, s)
	}
	if strings.ContainsRune(trimmed, ':') {
		return Alias{}, parseErr(ErrAliasContainsColon, s)
	}
	return Alias{name: trimmed}, nil
}

// Name returns the alias's identifier-table name.
func (a Alias) Name() string { return a.name }

func (a Alias) String() string { return a.name }
