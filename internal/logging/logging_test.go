// ABOUTME: Tests for logger construction.
// ABOUTME: Checks file output, level parsing, and the verbose override.
package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "quill.log")

	logger, err := New(path, "info", false)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	logger.Info("hello")
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if !strings.Contains(string(data), `"msg":"hello"`) {
		t.Errorf("expected info line, got %q", data)
	}
	if strings.Contains(string(data), "hidden") {
		t.Error("debug line must be filtered at info level")
	}
}

func TestNewVerboseEnablesDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quill.log")

	logger, err := New(path, "error", true)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	logger.Debug("visible")
	_ = logger.Sync()

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "visible") {
		t.Errorf("expected debug line with verbose, got %q", data)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "x.log"), "loud", false); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestNewEmptyPathIsNop(t *testing.T) {
	logger, err := New("", "debug", true)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	logger.Info("nowhere")
}
