package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoadProvidersFileMissingPath(t *testing.T) {
	data, err := LoadProvidersFile("")
	if err != nil {
		t.Fatalf("LoadProvidersFile(\"\"): %v", err)
	}
	if len(data.Timeout) != 0 || len(data.DefaultRules) != 0 {
		t.Errorf("LoadProvidersFile(\"\") = %+v, want zero value", data)
	}
}

func TestLoadProvidersFileParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "providers.toml")
	const contents = `
user_agent = "autobib/test"
max_response_kb = 512

[timeout]
arxiv = "5s"
doi = "not-a-duration"

[[default_rules]]
regex = "^zbMATH([0-9]+)$"
provider = "zbmath"
`
	if err := writeFile(t, path, contents); err != nil {
		t.Fatalf("writeFile: %v", err)
	}

	data, err := LoadProvidersFile(path)
	if err != nil {
		t.Fatalf("LoadProvidersFile: %v", err)
	}
	if data.UserAgent != "autobib/test" {
		t.Errorf("UserAgent = %q, want %q", data.UserAgent, "autobib/test")
	}
	if data.MaxResponseKB != 512 {
		t.Errorf("MaxResponseKB = %d, want 512", data.MaxResponseKB)
	}

	timeouts, errs := data.Timeouts()
	if len(errs) != 1 {
		t.Fatalf("Timeouts() errs = %v, want exactly one for the malformed doi entry", errs)
	}
	if timeouts["arxiv"] != 5*time.Second {
		t.Errorf("Timeouts()[\"arxiv\"] = %v, want 5s", timeouts["arxiv"])
	}
	if _, ok := timeouts["doi"]; ok {
		t.Errorf("Timeouts() should not include the malformed doi entry")
	}

	pairs := data.RulePairs()
	if len(pairs) != 1 || pairs[0][0] != "^zbMATH([0-9]+)$" || pairs[0][1] != "zbmath" {
		t.Errorf("RulePairs() = %v, want one (zbMATH regex, zbmath) pair", pairs)
	}
}

func TestLoadProvidersFileMissingFileIsNotError(t *testing.T) {
	data, err := LoadProvidersFile(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("LoadProvidersFile on a nonexistent path: %v", err)
	}
	if len(data.DefaultRules) != 0 {
		t.Errorf("LoadProvidersFile on a nonexistent path = %+v, want zero value", data)
	}
}
