package provider

import (
	"context"

	"github.com/autobib/autobib/internal/codec"
)

// localValidate accepts any non-empty identifier byte string as a
// "local" sub_id: local records are user-assigned, not issued by a
// remote authority, so the only syntactic constraint is the shared
// identifier grammar already enforced by ident.RecordId.
func localValidate(subID string) ValidateOutcome {
	if subID == "" {
		return ValidateOutcome{Kind: Invalid}
	}
	return ValidateOutcome{Kind: Valid}
}

// localResolve must never be called: "local" records have no remote
// source to resolve from, and a cache miss against "local:x" means the
// record simply does not exist (spec.md §6.3, SPEC_FULL.md's
// supplemented feature on the local provider). Any caller reaching
// this function has a bug in the dispatch logic in internal/resolve.
func localResolve(ctx context.Context, subID string, f Fetcher) (*codec.EntryData, error) {
	return nil, &Error{Kind: ErrUnexpectedLocal}
}
