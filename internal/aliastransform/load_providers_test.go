package aliastransform

import "testing"

func TestLoadRuleSetUserRulesPrecedeDefaults(t *testing.T) {
	userYAML := []byte(`
- regex: "^zbMATH([0-9]+)$"
  provider: zbmath
`)
	defaults := [][2]string{
		{"^arXiv:(.+)$", "arxiv"},
	}

	rules, errs := LoadRuleSet(userYAML, defaults)
	if len(errs) != 0 {
		t.Fatalf("LoadRuleSet errs = %v, want none", errs)
	}
	if len(rules) != 2 {
		t.Fatalf("LoadRuleSet returned %d rules, want 2", len(rules))
	}
	if rules[0].Provider != "zbmath" {
		t.Errorf("rules[0].Provider = %q, want the user rule to come first", rules[0].Provider)
	}
	if rules[1].Provider != "arxiv" {
		t.Errorf("rules[1].Provider = %q, want the default rule second", rules[1].Provider)
	}
}

func TestLoadRuleSetNoUserFile(t *testing.T) {
	defaults := [][2]string{{"^zbMATH([0-9]+)$", "zbmath"}}
	rules, errs := LoadRuleSet(nil, defaults)
	if len(errs) != 0 {
		t.Fatalf("LoadRuleSet errs = %v, want none", errs)
	}
	if len(rules) != 1 {
		t.Fatalf("LoadRuleSet returned %d rules, want 1", len(rules))
	}
}

func TestLoadRuleSetCombinesRejections(t *testing.T) {
	userYAML := []byte(`
- regex: "(([unbalanced"
  provider: zbmath
`)
	defaults := [][2]string{
		{"^(a)(b)$", "toomanygroups"},
	}
	_, errs := LoadRuleSet(userYAML, defaults)
	if len(errs) != 2 {
		t.Fatalf("LoadRuleSet errs = %v, want one rejection from each source", errs)
	}
}
