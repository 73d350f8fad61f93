package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatchRulesNoFileConfigured(t *testing.T) {
	withTempHome(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	oldwd := chdir(t, t.TempDir())
	defer chdir(t, oldwd)
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	called := false
	closer, err := WatchRules(func() { called = true })
	if err != nil {
		t.Fatalf("WatchRules: %v", err)
	}
	defer closer()
	if called {
		t.Errorf("onChange fired with no rules file configured")
	}
}

func TestWatchRulesFiresOnWrite(t *testing.T) {
	withTempHome(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	oldwd := chdir(t, t.TempDir())
	defer chdir(t, oldwd)

	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "rules.yaml")
	if err := writeFile(t, rulesPath, "rules: []\n"); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	if err := writeFile(t, filepath.Join(dir, ".autobib", "config.yaml"), "alias-transform:\n  rules-file: "+rulesPath+"\n"); err != nil {
		t.Fatalf("writeFile: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	if err := Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if AliasTransformRulesFile() != rulesPath {
		t.Fatalf("AliasTransformRulesFile() = %q, want %q", AliasTransformRulesFile(), rulesPath)
	}

	changed := make(chan struct{}, 1)
	closer, err := WatchRules(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("WatchRules: %v", err)
	}
	defer closer()

	if err := os.WriteFile(rulesPath, []byte("rules: [updated]\n"), 0o644); err != nil {
		t.Fatalf("rewriting rules file: %v", err)
	}

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("onChange was not invoked after the rules file was rewritten")
	}
}
