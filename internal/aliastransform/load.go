package aliastransform

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// rawRule is the on-disk shape of one alias_transform.rules entry in
// the YAML config the teacher's config layer loads with
// gopkg.in/yaml.v3.
type rawRule struct {
	Regex    string `yaml:"regex"`
	Provider string `yaml:"provider"`
}

// LoadRulesYAML parses an alias_transform.rules YAML sequence and
// builds the accepted rule set, reporting any rejected rules.
func LoadRulesYAML(data []byte) ([]Rule, []error) {
	var raw []rawRule
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, []error{fmt.Errorf("parsing alias_transform.rules: %w", err)}
	}
	pairs := make([][2]string, 0, len(raw))
	for _, r := range raw {
		pairs = append(pairs, [2]string{r.Regex, r.Provider})
	}
	return BuildRules(pairs)
}
