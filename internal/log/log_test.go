package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestConfigureTextOutput(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Output: &buf, Level: LevelInfo})
	defer Configure(Options{})

	Info("reverting", "page", "Sandbox")

	out := buf.String()
	if !strings.Contains(out, "reverting") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "page=Sandbox") {
		t.Errorf("output missing attribute: %q", out)
	}
}

func TestConfigureJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Output: &buf, JSON: true})
	defer Configure(Options{})

	Info("rollback", "revid", 42)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if entry["msg"] != "rollback" {
		t.Errorf("msg = %v, want rollback", entry["msg"])
	}
}

func TestDebugSuppressedByDefault(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Output: &buf, Level: LevelInfo})
	defer Configure(Options{})

	Debug("hidden")

	if buf.Len() != 0 {
		t.Errorf("debug output not suppressed: %q", buf.String())
	}
}

func TestVerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	Configure(Options{Output: &buf, Verbose: true})
	defer Configure(Options{})

	Debug("visible")

	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("verbose did not enable debug output: %q", buf.String())
	}
}

func TestAttrHelpers(t *testing.T) {
	if got := Page("Main Page").Value.String(); got != "Main Page" {
		t.Errorf("Page attr = %q", got)
	}
	if got := User("Example").Value.String(); got != "Example" {
		t.Errorf("User attr = %q", got)
	}
	if got := RevID(7).Value.Int64(); got != 7 {
		t.Errorf("RevID attr = %d", got)
	}
	attrs := State("created", "preflighting")
	if len(attrs) != 2 {
		t.Fatalf("State attrs = %d, want 2", len(attrs))
	}
}
