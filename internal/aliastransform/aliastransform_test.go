package aliastransform

import "testing"

func TestValidateCaptureGroup(t *testing.T) {
	valid := []string{
		"a(b)",
		"(b)",
		"(a)|(b)",
		"(a)|(b|c)",
		"(a)|(?:(b)|c(d))",
		"a(?:(b)|c(d))",
		"(?i)a+((?-i)b+)",
		"((?i)a+(?-i)b+)",
	}
	for _, re := range valid {
		if err := validateCaptureGroup(re); err != nil {
			t.Errorf("validateCaptureGroup(%q) = %v, want nil", re, err)
		}
	}

	noCapture := []string{
		"a",
		"a(?:b|c|d)",
	}
	for _, re := range noCapture {
		err := validateCaptureGroup(re)
		var ce *CaptureError
		if err == nil {
			t.Errorf("validateCaptureGroup(%q) = nil, want error", re)
			continue
		}
		if !errorsAs(err, &ce) || ce.Kind != ErrNoCaptureGroup {
			t.Errorf("validateCaptureGroup(%q) = %v, want ErrNoCaptureGroup", re, err)
		}
	}

	invalid := []struct {
		re   string
		kind CaptureErrorKind
	}{
		{"(a)(b(?:c))", ErrTooMany},
		{"(a)(b)", ErrTooMany},
		{"(a)(b(c))", ErrNested},
		{"(a)|(?:b|c(d))", ErrMissing},
		{"a(?:b|c(d))", ErrMissing},
	}
	for _, tc := range invalid {
		err := validateCaptureGroup(tc.re)
		var ce *CaptureError
		if !errorsAs(err, &ce) {
			t.Errorf("validateCaptureGroup(%q) = %v, want *CaptureError", tc.re, err)
			continue
		}
		if ce.Kind != tc.kind {
			t.Errorf("validateCaptureGroup(%q) kind = %v, want %v", tc.re, ce.Kind, tc.kind)
		}
	}
}

func errorsAs(err error, target **CaptureError) bool {
	ce, ok := err.(*CaptureError)
	if !ok {
		return false
	}
	*target = ce
	return true
}

func TestBuildRulesSkipsRejected(t *testing.T) {
	raw := [][2]string{
		{"^zbMATH([0-9]+)$", "zbmath"},
		{"^nocap$", "zbmath"},
		{"^bad([0-9]+)$", "not a provider"},
	}
	rules, errs := BuildRules(raw)
	if len(rules) != 1 {
		t.Fatalf("expected 1 accepted rule, got %d", len(rules))
	}
	if len(errs) != 2 {
		t.Fatalf("expected 2 rejected rules, got %d", len(errs))
	}
	if rules[0].Provider != "zbmath" {
		t.Errorf("unexpected accepted rule: %+v", rules[0])
	}
}

func TestRewriteMatchesFirstRule(t *testing.T) {
	raw := [][2]string{
		{"^zbMATH([0-9]+)$", "zbmath"},
		{"^fallback-(.+)$", "local"},
	}
	rules, errs := BuildRules(raw)
	if len(errs) != 0 {
		t.Fatalf("unexpected rejected rules: %v", errs)
	}
	remote, ok := Rewrite(rules, "zbMATH06346461")
	if !ok {
		t.Fatal("expected match")
	}
	if remote.Provider != "zbmath" || remote.SubID != "06346461" {
		t.Errorf("unexpected rewrite: %+v", remote)
	}

	if _, ok := Rewrite(rules, "no-match-here"); ok {
		t.Error("expected no match")
	}
}
