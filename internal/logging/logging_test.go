package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSetVerbose(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Default().Debug("hidden")
	if buf.Len() != 0 {
		t.Fatalf("debug logged at info level: %q", buf.String())
	}

	SetVerbose(true)
	defer SetVerbose(false)
	Default().Debug("shown", "key", "value")
	if !strings.Contains(buf.String(), "shown") || !strings.Contains(buf.String(), "key=value") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestSetQuiet(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	SetQuiet()
	defer SetVerbose(false)

	Default().Warn("nope")
	if buf.Len() != 0 {
		t.Fatalf("warn logged in quiet mode: %q", buf.String())
	}
	Default().Error("boom")
	if !strings.Contains(buf.String(), "boom") {
		t.Fatalf("error missing: %q", buf.String())
	}
}

func TestRedirectToFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)

	restore := RedirectToFile()
	Default().Info("to file")
	restore()

	data, err := os.ReadFile(filepath.Join(dir, "meetcost", "meetcost.log"))
	if err != nil {
		t.Fatalf("reading log: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Fatalf("log file = %q", data)
	}
}
