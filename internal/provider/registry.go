// Package provider implements the closed registry of remote
// bibliographic data providers (spec.md §4.3, §6.3). Each provider
// exposes a validator, and either a Resolve (canonical providers) or a
// Refer (reference providers) function.
package provider

import (
	"context"

	"github.com/autobib/autobib/internal/codec"
	"github.com/autobib/autobib/internal/ident"
)

// ValidateKind is the outcome of a provider's sub_id validator.
type ValidateKind int

const (
	Valid ValidateKind = iota
	Normalize
	Invalid
)

// ValidateOutcome is the result of Capability.Validate.
type ValidateOutcome struct {
	Kind          ValidateKind
	NormalizedSub string // set iff Kind == Normalize
}

// Resolver converts a sub_id into entry data. Canonical providers only.
type Resolver func(ctx context.Context, subID string, f Fetcher) (*codec.EntryData, error)

// Referrer converts a sub_id into the next-hop RemoteId to chase.
// Reference providers only.
type Referrer func(ctx context.Context, subID string, f Fetcher) (*ident.RemoteId, error)

// Validator checks (and possibly normalizes) a sub_id.
type Validator func(subID string) ValidateOutcome

// Capability is the per-provider tuple from spec.md §4.3.
type Capability struct {
	Canonical   bool
	Validate    Validator
	Resolve     Resolver // non-nil iff Canonical
	Refer       Referrer // non-nil iff !Canonical
	FormatSubID func(subID string) string
}

var registry = map[string]Capability{
	"arxiv": {
		Canonical: true,
		Validate:  arxivValidate,
		Resolve:   arxivResolve,
	},
	"doi": {
		Canonical: true,
		Validate:  doiValidate,
		Resolve:   doiResolve,
	},
	"zbmath": {
		Canonical:   true,
		Validate:    zbmathValidate,
		Resolve:     zbmathResolve,
		FormatSubID: zbmathFormatSubID,
	},
	"zbl": {
		Canonical: false,
		Validate:  zblValidate,
		Refer:     zblRefer,
	},
	"jfm": {
		Canonical: false,
		Validate:  jfmValidate,
		Refer:     jfmRefer,
	},
	"local": {
		Canonical: true,
		Validate:  localValidate,
		Resolve:   localResolve,
	},
}

// Lookup returns the Capability registered for provider, if any.
func Lookup(provider string) (Capability, bool) {
	c, ok := registry[provider]
	return c, ok
}

// IsRegistered reports whether provider names a known provider.
func IsRegistered(provider string) bool {
	_, ok := registry[provider]
	return ok
}

// IsValidProviderName reports whether a string could ever name a
// provider: non-empty, printable-ASCII identifier characters (spec.md
// §4.3's validation note). This is independent of whether the name is
// actually registered.
func IsValidProviderName(name string) bool {
	return codec.IsValidIdentifier(name)
}

// Names returns every registered provider name, for diagnostics
// (spec.md §7's "did-you-mean" pass enumerates these).
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	return names
}
