package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")

	l, err := New(Config{Level: "debug", Output: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	l.Debug().Str("path", "/app.js").Msg("served")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}
	if !strings.Contains(string(data), `"path":"/app.js"`) {
		t.Errorf("Expected path field in log output, got %q", data)
	}
}

func TestNewUnknownLevelFallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "loud", Output: "stderr"})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if l.GetLevel() != zerolog.InfoLevel {
		t.Errorf("Expected info level, got %v", l.GetLevel())
	}
}

func TestNewUnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	// A directory cannot be opened for appending.
	if _, err := New(Config{Level: "info", Output: dir}); err == nil {
		t.Error("Expected error for directory output")
	}
}
