package main

import (
	"context"
	"os"

	"github.com/autobib/autobib/internal/aliastransform"
	"github.com/autobib/autobib/internal/config"
	"github.com/autobib/autobib/internal/provider"
	"github.com/autobib/autobib/internal/store"
)

// openStore opens the configured database, honoring --read-only /
// config's read-only setting (spec.md §5).
func openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, config.DBPath(), store.Options{ReadOnly: config.ReadOnly()})
}

// loadRules builds the effective alias-transform rule set from the
// configured YAML rules file and providers.toml's default seed
// (spec.md §4.4), logging (not failing on) any rejected rule.
func loadRules() []aliastransform.Rule {
	var userYAML []byte
	if path := config.AliasTransformRulesFile(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("reading alias-transform rules %s: %v", path, err)
		} else {
			userYAML = data
		}
	}

	var defaultPairs [][2]string
	if path := config.ProvidersFile(); path != "" {
		pf, err := config.LoadProvidersFile(path)
		if err != nil {
			logger.Warn("loading providers file: %v", err)
		} else {
			defaultPairs = pf.RulePairs()
		}
	}

	rules, errs := aliastransform.LoadRuleSet(userYAML, defaultPairs)
	for _, e := range errs {
		logger.Warn("%v", e)
	}
	return rules
}

// newFetcher builds the HTTP collaborator (spec.md §6.4) with the
// configured provider timeout.
func newFetcher() provider.Fetcher {
	f := provider.NewDefaultFetcher()
	f.HTTPClient.Timeout = config.ProviderTimeout()
	return f
}
