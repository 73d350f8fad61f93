package provider

import (
	"regexp"
	"strings"

	"github.com/autobib/autobib/internal/codec"
)

// bibtexFields is the intermediate, case-insensitively-keyed shape
// canonical providers decode a raw BibTeX-ish response into before
// building a validated codec.EntryData, mirroring the original's
// ProviderBibtex/ProviderBibtexFields (src/provider.rs): some
// providers (notably zbMATH) emit capitalized BibTeX field names, and
// the codec itself only accepts lowercase keys, so this adapter layer
// is where that case folding happens rather than weakening the codec.
type bibtexFields struct {
	EntryType string
	Title     string
	Author    string
	Journal   string
	Volume    string
	Pages     string
	Year      string
	DOI       string
	Language  string
}

// fieldEntryRe matches one top-level "Key = {value}" or "key = "value""
// assignment inside a @type{..., ...} body. It intentionally does not
// attempt to handle nested braces beyond one level of balance, which is
// sufficient for the flat bibliographic fields providers return here;
// full BibTeX parsing is explicitly out of this spec's scope (spec.md
// §1 lists "citation-key extraction from TeX/BibTeX source text" as an
// external collaborator concern, and this is the mirror case: ingesting
// a provider's BibTeX, not parsing the user's own).
var fieldEntryRe = regexp.MustCompile(`(?s)([A-Za-z][A-Za-z0-9_-]*)\s*=\s*\{([^{}]*(?:\{[^{}]*\}[^{}]*)*)\}`)

var entryTypeRe = regexp.MustCompile(`@([A-Za-z]+)\s*\{`)

// parseBibtexFields does a best-effort scan of raw BibTeX text into a
// bibtexFields value. It is not a general BibTeX parser: it only
// extracts the flat fields this package's providers care about.
func parseBibtexFields(raw string) bibtexFields {
	var f bibtexFields
	if m := entryTypeRe.FindStringSubmatch(raw); m != nil {
		f.EntryType = strings.ToLower(m[1])
	}
	for _, m := range fieldEntryRe.FindAllStringSubmatch(raw, -1) {
		key := strings.ToLower(m[1])
		val := strings.TrimSpace(m[2])
		switch key {
		case "title":
			f.Title = val
		case "author":
			f.Author = val
		case "journal":
			f.Journal = val
		case "volume":
			f.Volume = val
		case "pages":
			f.Pages = val
		case "year":
			f.Year = val
		case "doi":
			f.DOI = val
		case "language":
			f.Language = val
		}
	}
	return f
}

// toEntryData builds a validated codec.EntryData from the parsed
// fields, defaulting to "misc" when the source didn't carry a
// recognizable @type.
func (f bibtexFields) toEntryData() (*codec.EntryData, error) {
	entryType := f.EntryType
	if entryType == "" {
		entryType = "misc"
	}
	e, err := codec.New(entryType)
	if err != nil {
		return nil, err
	}
	insert := func(key, val string) error {
		if val == "" {
			return nil
		}
		return e.CheckAndInsert(key, val)
	}
	for _, kv := range []struct{ key, val string }{
		{"title", f.Title},
		{"author", f.Author},
		{"journal", f.Journal},
		{"volume", f.Volume},
		{"pages", f.Pages},
		{"year", f.Year},
		{"doi", f.DOI},
		{"language", f.Language},
	} {
		if err := insert(kv.key, kv.val); err != nil {
			return nil, err
		}
	}
	return e, nil
}
