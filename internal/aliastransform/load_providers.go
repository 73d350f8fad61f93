package aliastransform

// LoadRuleSet builds the effective ordered rule list: user-configured
// rules (from a YAML file, parsed by LoadRulesYAML) take precedence
// over the TOML-seeded defaults shipped in providers.toml (spec.md
// §4.4's ordered rule list, extended in SPEC_FULL.md to draw from two
// sources the way the teacher draws settings from two config-file
// families). Rejected rules from either source are reported together,
// in source order.
func LoadRuleSet(userYAML []byte, defaultPairs [][2]string) ([]Rule, []error) {
	var rules []Rule
	var errs []error

	if len(userYAML) > 0 {
		userRules, userErrs := LoadRulesYAML(userYAML)
		rules = append(rules, userRules...)
		errs = append(errs, userErrs...)
	}

	defaultRules, defaultErrs := BuildRules(defaultPairs)
	rules = append(rules, defaultRules...)
	errs = append(errs, defaultErrs...)

	return rules, errs
}
