// Package resolve implements get_record_row (spec.md §4.7): the
// pipeline that turns a user-supplied RecordId into a located state,
// applying alias-transform rewriting, provider sub_id normalization,
// the null cache, and provider resolution with reference-chain
// following. Grounded on rust/src/app/retrieve.rs's user-facing
// resolve-and-fetch flow.
package resolve

import (
	"context"
	"fmt"

	"github.com/autobib/autobib/internal/aliastransform"
	"github.com/autobib/autobib/internal/ident"
	"github.com/autobib/autobib/internal/provider"
	"github.com/autobib/autobib/internal/statemachine"
	"github.com/autobib/autobib/internal/store"
)

// maxReferenceHops bounds reference-provider chain following (spec.md
// §4.3: "implementations must bound the chain length (e.g. 8 hops) to
// prevent loops"), decided in DESIGN.md's Open Questions section.
const maxReferenceHops = 8

// ErrHopLimitExceeded is returned when a reference-provider chain does
// not reach a canonical provider within maxReferenceHops.
var ErrHopLimitExceeded = fmt.Errorf("resolve: reference-provider chain exceeded %d hops", maxReferenceHops)

// ErrUndefinedAlias is returned when input parses as an alias with no
// backing identifier and no alias-transform rule matches it.
var ErrUndefinedAlias = fmt.Errorf("resolve: undefined alias")

// ErrInvalidRemoteId is returned when input parses as provider:sub_id
// but the provider is unregistered or the provider's own validator
// rejects the sub_id, and no alias-transform rule rescues it.
type ErrInvalidRemoteId struct {
	Input string
	Cause error
}

func (e *ErrInvalidRemoteId) Error() string {
	return fmt.Sprintf("resolve: %q does not name a valid remote id: %v", e.Input, e.Cause)
}

func (e *ErrInvalidRemoteId) Unwrap() error { return e.Cause }

// Resolve runs the full get_record_row pipeline for a user-supplied
// key (spec.md §4.7's five-step algorithm). fetcher and rules are the
// HTTP collaborator and ordered alias-transform rule set.
func Resolve(ctx context.Context, tx *store.Tx, key string, fetcher provider.Fetcher, rules []aliastransform.Rule) (*statemachine.State, error) {
	return resolveHops(ctx, tx, key, fetcher, rules, 0)
}

func resolveHops(ctx context.Context, tx *store.Tx, key string, fetcher provider.Fetcher, rules []aliastransform.Rule, hops int) (*statemachine.State, error) {
	if hops > maxReferenceHops {
		return nil, ErrHopLimitExceeded
	}

	// Step 1: a direct identifier hit short-circuits everything else.
	if st, err := statemachine.Locate(ctx, tx, key); err != nil {
		return nil, err
	} else if st.Kind != statemachine.KindMissing {
		return st, nil
	}

	rid := ident.NewRecordId(key)
	alias, remote, classifyErr := rid.Classify()

	if classifyErr == nil && !rid.HasColon() {
		// Step 2: a bare alias with no identifier row. Try alias-transform.
		if rewritten, ok := aliastransform.Rewrite(rules, alias.Name()); ok {
			return resolveRewritten(ctx, tx, key, rewritten.Name(), fetcher, rules, hops+1)
		}
		return nil, ErrUndefinedAlias
	}

	if classifyErr != nil {
		// An unparseable alias form (empty after trim) is also tried
		// against alias-transform rules before giving up, since a rule
		// may match raw user input that doesn't itself look like a
		// valid alias (e.g. the matched prefix itself contains a colon
		// once rewritten by a provider-qualified rule).
		if rewritten, ok := aliastransform.Rewrite(rules, key); ok {
			return resolveRewritten(ctx, tx, key, rewritten.Name(), fetcher, rules, hops+1)
		}
		return nil, &ErrInvalidRemoteId{Input: key, Cause: classifyErr}
	}

	// Step 3: provider validate/normalize for a provider:sub_id form.
	cap, ok := provider.Lookup(remote.Provider)
	if !ok {
		if rewritten, ok := aliastransform.Rewrite(rules, key); ok {
			return resolveRewritten(ctx, tx, key, rewritten.Name(), fetcher, rules, hops+1)
		}
		return nil, &ErrInvalidRemoteId{Input: key, Cause: fmt.Errorf("unregistered provider %q", remote.Provider)}
	}

	outcome := cap.Validate(remote.SubID)
	switch outcome.Kind {
	case provider.Invalid:
		if rewritten, ok := aliastransform.Rewrite(rules, key); ok {
			return resolveRewritten(ctx, tx, key, rewritten.Name(), fetcher, rules, hops+1)
		}
		return nil, &ErrInvalidRemoteId{Input: key, Cause: fmt.Errorf("rejected by provider %q", remote.Provider)}
	case provider.Normalize:
		normalized := remote.WithSubID(outcome.NormalizedSub)
		return resolveRewritten(ctx, tx, key, normalized.Name(), fetcher, rules, hops+1)
	}

	// Step 4: consult the null cache.
	if _, isNull, err := tx.IsNull(ctx, remote.Name()); err != nil {
		return nil, err
	} else if isNull {
		return &statemachine.State{Kind: statemachine.KindNull, Name: remote.Name()}, nil
	}

	// Step 5: call the provider.
	return fetchFromProvider(ctx, tx, remote, cap, fetcher, rules, hops)
}

// resolveRewritten resolves rewritten (the alias-transformed or
// normalized form of original) and, on an Entry result, binds original
// itself as an identifier to the resulting row (spec.md §8 S3: "the
// original ... is recorded as an identifier referencing the same
// row"), mirroring the reference-chain binding in fetchFromProvider.
func resolveRewritten(ctx context.Context, tx *store.Tx, original, rewritten string, fetcher provider.Fetcher, rules []aliastransform.Rule, hops int) (*statemachine.State, error) {
	resolved, err := resolveHops(ctx, tx, rewritten, fetcher, rules, hops)
	if err != nil {
		return nil, err
	}
	if resolved.Kind == statemachine.KindEntry && original != rewritten {
		if err := tx.AddIdentifier(ctx, original, resolved.Row.Key); err != nil && err != store.ErrIdentifierExists {
			return nil, err
		}
	}
	return resolved, nil
}

func fetchFromProvider(ctx context.Context, tx *store.Tx, remote ident.RemoteId, cap provider.Capability, fetcher provider.Fetcher, rules []aliastransform.Rule, hops int) (*statemachine.State, error) {
	missing := &statemachine.State{Kind: statemachine.KindMissing, Name: remote.Name()}

	// The local provider has no remote source: a local id with no
	// identifier row does not exist, and it is never passed to Resolve.
	if remote.Provider == "local" {
		return missing, nil
	}

	if cap.Canonical {
		entry, err := cap.Resolve(ctx, remote.SubID, fetcher)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return missing.SetNull(ctx, tx, remote.Name())
		}
		return missing.Insert(ctx, tx, remote.Name(), entry)
	}

	next, err := cap.Refer(ctx, remote.SubID, fetcher)
	if err != nil {
		return nil, err
	}
	if next == nil {
		return missing.SetNull(ctx, tx, remote.Name())
	}

	resolved, err := resolveHops(ctx, tx, next.Name(), fetcher, rules, hops+1)
	if err != nil {
		return nil, err
	}
	if resolved.Kind == statemachine.KindEntry {
		if err := tx.AddIdentifier(ctx, remote.Name(), resolved.Row.Key); err != nil && err != store.ErrIdentifierExists {
			return nil, err
		}
	}
	return resolved, nil
}
