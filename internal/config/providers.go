package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// ProvidersFileData is the on-disk shape of providers.toml
// (SPEC_FULL.md's DOMAIN STACK table): per-provider network timeout
// overrides, plus a default alias-transform rule set shipped as a
// TOML seed distinct from the user-editable YAML rule file spec.md
// §4.4 describes. Grounded on the teacher's two-config-file-families
// convention (viper's YAML for settings, BurntSushi/toml for a second,
// more structured file).
type ProvidersFileData struct {
	Timeout       map[string]string `toml:"timeout"`
	DefaultRules  []DefaultRule     `toml:"default_rules"`
	UserAgent     string            `toml:"user_agent"`
	MaxResponseKB int               `toml:"max_response_kb"`
}

// DefaultRule is one built-in (regex, provider) alias-transform seed
// (spec.md §4.4). Every default rule is appended after the user's own
// rules; a user rule for the same provider does not remove or replace it.
type DefaultRule struct {
	Regex    string `toml:"regex"`
	Provider string `toml:"provider"`
}

// LoadProvidersFile parses a providers.toml file. A missing path is
// not an error: callers get a zero-value ProvidersFileData and fall
// back to internal/provider's registry defaults.
func LoadProvidersFile(path string) (ProvidersFileData, error) {
	var data ProvidersFileData
	if path == "" {
		return data, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return data, fmt.Errorf("config: statting providers file %s: %w", path, err)
	}
	if _, err := toml.DecodeFile(path, &data); err != nil {
		return data, fmt.Errorf("config: parsing providers file %s: %w", path, err)
	}
	return data, nil
}

// Timeouts parses ProvidersFileData.Timeout into durations, skipping
// (and reporting) any value that fails to parse rather than aborting
// the whole file.
func (d ProvidersFileData) Timeouts() (map[string]time.Duration, []error) {
	out := make(map[string]time.Duration, len(d.Timeout))
	var errs []error
	for provider, raw := range d.Timeout {
		dur, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: providers file: provider %q timeout %q: %w", provider, raw, err))
			continue
		}
		out[provider] = dur
	}
	return out, errs
}

// RulePairs converts DefaultRules into the [][2]string shape
// aliastransform.BuildRules expects.
func (d ProvidersFileData) RulePairs() [][2]string {
	pairs := make([][2]string, 0, len(d.DefaultRules))
	for _, r := range d.DefaultRules {
		pairs = append(pairs, [2]string{r.Regex, r.Provider})
	}
	return pairs
}
