package ident

import "strings"

// RecordId is raw, unvalidated user input: trimmed of surrounding
// whitespace, with the position of the first ':' recorded if any.
// It is the entry point to resolution (spec.md §4.2).
type RecordId struct {
	raw       string
	colonIdx  int // -1 if no colon
}

// NewRecordId trims s and records the first ':' position.
func NewRecordId(s string) RecordId {
	trimmed := strings.TrimSpace(s)
	return RecordId{raw: trimmed, colonIdx: strings.IndexByte(trimmed, ':')}
}

// String returns the trimmed raw input.
func (r RecordId) String() string { return r.raw }

// HasColon reports whether the input contains a ':'.
func (r RecordId) HasColon() bool { return r.colonIdx >= 0 }

// Classify splits r into either an Alias or a syntactic (unvalidated
// against any provider registry) RemoteId. It enforces only the
// purely-syntactic rules from spec.md §4.2: a colon routes to
// provider:sub_id parsing (both halves must be non-empty); otherwise
// the whole trimmed string must be non-empty to be an Alias.
func (r RecordId) Classify() (Alias, RemoteId, error) {
	if !r.HasColon() {
		if r.raw == "" {
			return Alias{}, RemoteId{}, parseErr(ErrEmptyAlias, r.raw)
		}
		return Alias{name: r.raw}, RemoteId{}, nil
	}

	provider := r.raw[:r.colonIdx]
	subID := r.raw[r.colonIdx+1:]
	if provider == "" {
		return Alias{}, RemoteId{}, parseErr(ErrEmptyProvider, r.raw)
	}
	if subID == "" {
		return Alias{}, RemoteId{}, parseErr(ErrEmptySubID, r.raw)
	}
	return Alias{}, RemoteId{Provider: provider, SubID: subID}, nil
}
