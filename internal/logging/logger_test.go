package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerExitCode(t *testing.T) {
	var buf bytes.Buffer
	noColor := false
	l := New(&buf, &noColor)

	if l.HadErrors() {
		t.Fatalf("HadErrors on a fresh logger = true, want false")
	}
	if got := l.ExitCode(); got != 0 {
		t.Fatalf("ExitCode on a fresh logger = %d, want 0", got)
	}

	l.Info("resolved %s", "doi:10.1/x")
	if l.HadErrors() {
		t.Fatalf("HadErrors after Info = true, want false")
	}

	l.Warn("rule %q rejected", "bad-rule")
	l.Suggest("did you mean %q?", "zbmath")
	if l.ExitCode() != 0 {
		t.Fatalf("ExitCode after Warn/Suggest = %d, want 0", l.ExitCode())
	}

	l.Error("provider %q timed out", "arxiv")
	if !l.HadErrors() {
		t.Fatalf("HadErrors after Error = false, want true")
	}
	if got := l.ExitCode(); got != 1 {
		t.Fatalf("ExitCode after Error = %d, want 1", got)
	}

	out := buf.String()
	for _, want := range []string{"info: resolved", "warn: rule", "suggest: did you mean", "error: provider"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q does not contain %q", out, want)
		}
	}
}

func TestLoggerNoColorOmitsEscapes(t *testing.T) {
	var buf bytes.Buffer
	noColor := false
	l := New(&buf, &noColor)
	l.Error("boom")
	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("output %q contains an ANSI escape with color forced off", buf.String())
	}
}

func TestShouldUseColorRespectsNoColorEnv(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	var buf bytes.Buffer
	if ShouldUseColor(&buf) {
		t.Errorf("ShouldUseColor = true with NO_COLOR set, want false")
	}
}
