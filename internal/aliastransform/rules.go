// Package aliastransform implements the ordered regex-to-provider
// rewrite rules an unresolvable alias is tried against before giving
// up (spec.md §4.4).
package aliastransform

import (
	"errors"
	"regexp"

	"github.com/autobib/autobib/internal/ident"
	"github.com/autobib/autobib/internal/provider"
)

var errInvalidProvider = errors.New("contains invalid provider")

// Rule is one accepted (regex, provider) pair. Regexp is guaranteed to
// have exactly one capture group across every alternative; Provider is
// guaranteed to be a syntactically valid provider name (it need not be
// registered — an alias-transform rule can name a provider configured
// later, or never).
type Rule struct {
	Pattern  string
	Regexp   *regexp.Regexp
	Provider string
}

// LoadError reports one rejected rule from a rule set; rejected rules
// are skipped, not fatal, per spec.md §4.4.
type LoadError struct {
	Pattern  string
	Provider string
	Err      error
}

func (e *LoadError) Error() string {
	return "alias-transform rule [\"" + e.Pattern + "\", \"" + e.Provider + "\"]: " + e.Err.Error()
}

func (e *LoadError) Unwrap() error { return e.Err }

// BuildRules compiles and validates a raw ordered list of (regex,
// provider) pairs. Accepted rules are returned in their original
// order; rejected rules are reported in errs but do not abort the
// build, mirroring validate_alias_transform_rules's report-and-skip
// behavior in rust/src/config/validate.rs.
func BuildRules(raw [][2]string) (rules []Rule, errs []error) {
	for _, pair := range raw {
		pattern, providerName := pair[0], pair[1]

		if !provider.IsValidProviderName(providerName) {
			errs = append(errs, &LoadError{
				Pattern:  pattern,
				Provider: providerName,
				Err:      errInvalidProvider,
			})
			continue
		}
		if err := validateCaptureGroup(pattern); err != nil {
			errs = append(errs, &LoadError{Pattern: pattern, Provider: providerName, Err: err})
			continue
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			errs = append(errs, &LoadError{Pattern: pattern, Provider: providerName, Err: err})
			continue
		}
		rules = append(rules, Rule{Pattern: pattern, Regexp: re, Provider: providerName})
	}
	return rules, errs
}

// Rewrite applies the first rule (in order) whose regex matches input,
// producing the rewritten RemoteId. It reports false if no rule
// matches.
func Rewrite(rules []Rule, input string) (ident.RemoteId, bool) {
	for _, r := range rules {
		m := r.Regexp.FindStringSubmatch(input)
		if m == nil || len(m) < 2 {
			continue
		}
		remote, err := ident.NewRemoteId(r.Provider, m[1])
		if err != nil {
			continue
		}
		return remote, true
	}
	return ident.RemoteId{}, false
}
