package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "tote.log")

	log, err := New(Options{File: path, Level: "info", Format: "json"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	log.Debug("hidden")
	log.Info("mutation confirmed", zap.String("op", "update cart item"))
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1:\n%s", len(lines), data)
	}
	var rec map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &rec); err != nil {
		t.Fatalf("line is not JSON: %v", err)
	}
	if rec["msg"] != "mutation confirmed" || rec["op"] != "update cart item" {
		t.Fatalf("record = %v", rec)
	}
}

func TestNew_ConsoleFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tote.log")
	log, err := New(Options{File: path, Level: "debug", Format: "console"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	log.Debug("refresh started")
	_ = log.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "DEBUG") || !strings.Contains(string(data), "refresh started") {
		t.Fatalf("console output = %q", data)
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Options{File: filepath.Join(t.TempDir(), "tote.log"), Level: "loud"})
	if err == nil || !strings.Contains(err.Error(), "parse log level") {
		t.Fatalf("New error = %v, want parse log level", err)
	}
}

func TestNew_EmptyFileIsNop(t *testing.T) {
	log, err := New(Options{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if log.Core().Enabled(zap.ErrorLevel) {
		t.Fatal("expected a no-op logger")
	}
}
