package logging

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestDefaultLogDir(t *testing.T) {
	dir := DefaultLogDir()
	if dir == "" {
		t.Error("DefaultLogDir returned empty string")
	}

	if !strings.Contains(dir, ".fascase") || !strings.Contains(dir, "logs") {
		t.Errorf("DefaultLogDir should contain .fascase/logs, got: %s", dir)
	}
}

func TestDefaultLogPath(t *testing.T) {
	path := DefaultLogPath()
	if path == "" {
		t.Error("DefaultLogPath returned empty string")
	}

	if filepath.Base(path) != "server.log" {
		t.Errorf("DefaultLogPath should end with server.log, got: %s", path)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got: %s", cfg.Level)
	}
	if cfg.MaxSizeMB != 10 {
		t.Errorf("expected MaxSizeMB 10, got: %d", cfg.MaxSizeMB)
	}
	if cfg.MaxFiles != 5 {
		t.Errorf("expected MaxFiles 5, got: %d", cfg.MaxFiles)
	}
	if !cfg.WriteToStderr {
		t.Error("expected WriteToStderr to be true")
	}
}

func TestDebugConfig(t *testing.T) {
	cfg := DebugConfig()

	if cfg.Level != "debug" {
		t.Errorf("expected level 'debug', got: %s", cfg.Level)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"bogus", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSetup_WritesJSONToFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "server.log")

	logger, cleanup, err := Setup(Config{
		Level:         "debug",
		FilePath:      logPath,
		MaxSizeMB:     1,
		MaxFiles:      2,
		WriteToStderr: false,
	})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	logger.Info("hello", slog.String("component", "test"))
	cleanup()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("reading log file: %v", err)
	}

	line := strings.TrimSpace(string(data))
	var parsed map[string]any
	if err := json.Unmarshal([]byte(line), &parsed); err != nil {
		t.Fatalf("log line is not JSON: %v\nline: %s", err, line)
	}
	if parsed["msg"] != "hello" {
		t.Errorf("expected msg 'hello', got: %v", parsed["msg"])
	}
	if parsed["component"] != "test" {
		t.Errorf("expected component attr, got: %v", parsed["component"])
	}
}

func TestRotatingWriter_RotatesAtMaxSize(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "server.log")

	w, err := NewRotatingWriter(logPath, 1, 3)
	if err != nil {
		t.Fatalf("NewRotatingWriter failed: %v", err)
	}
	defer func() { _ = w.Close() }()
	w.SetImmediateSync(false)

	// Write just over 1MB to force a rotation
	chunk := strings.Repeat("x", 64*1024)
	for i := 0; i < 17; i++ {
		if _, err := w.Write([]byte(chunk)); err != nil {
			t.Fatalf("write %d failed: %v", i, err)
		}
	}

	if _, err := os.Stat(logPath + ".1"); err != nil {
		t.Errorf("expected rotated file %s.1 to exist: %v", logPath, err)
	}
}

func TestRotatingWriter_KeepsAtMostMaxFiles(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "server.log")

	// Pre-create rotated files beyond the cap
	for i := 1; i <= 4; i++ {
		name := fmt.Sprintf("%s.%d", logPath, i)
		if err := os.WriteFile(name, []byte("old"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	w, err := NewRotatingWriter(logPath, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = w.Close() }()
	w.SetImmediateSync(false)

	chunk := strings.Repeat("x", 64*1024)
	for i := 0; i < 17; i++ {
		if _, err := w.Write([]byte(chunk)); err != nil {
			t.Fatal(err)
		}
	}

	matches, err := filepath.Glob(logPath + ".*")
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) > 3 {
		t.Errorf("expected at most 3 rotated files, got %d: %v", len(matches), matches)
	}
}

func TestFindLogFile_ExplicitMissing(t *testing.T) {
	_, err := FindLogFile(filepath.Join(t.TempDir(), "nope.log"))
	if err == nil {
		t.Error("expected error for missing explicit log file")
	}
}

func TestFindLogFile_ExplicitExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, err := FindLogFile(path)
	if err != nil {
		t.Fatalf("FindLogFile failed: %v", err)
	}
	if found != path {
		t.Errorf("expected %s, got %s", path, found)
	}
}

func TestViewer_TailFiltersByLevel(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")

	lines := []string{
		`{"time":"2026-08-20T10:00:00.000Z","level":"DEBUG","msg":"noise"}`,
		`{"time":"2026-08-20T10:00:01.000Z","level":"INFO","msg":"loaded corpus"}`,
		`{"time":"2026-08-20T10:00:02.000Z","level":"ERROR","msg":"embed failed"}`,
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := NewViewer(ViewerConfig{Level: "info", NoColor: true}, os.Stdout)
	entries, err := v.Tail(path, 100)
	if err != nil {
		t.Fatalf("Tail failed: %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after level filter, got %d", len(entries))
	}
	if entries[0].Msg != "loaded corpus" || entries[1].Msg != "embed failed" {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestViewer_TailFiltersByPattern(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server.log")

	lines := []string{
		`{"time":"2026-08-20T10:00:00.000Z","level":"INFO","msg":"search completed"}`,
		`{"time":"2026-08-20T10:00:01.000Z","level":"INFO","msg":"reload triggered"}`,
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := NewViewer(ViewerConfig{Pattern: regexp.MustCompile("search"), NoColor: true}, os.Stdout)
	entries, err := v.Tail(path, 100)
	if err != nil {
		t.Fatal(err)
	}

	if len(entries) != 1 || entries[0].Msg != "search completed" {
		t.Errorf("pattern filter failed: %+v", entries)
	}
}

func TestViewer_FormatEntry_RawForInvalidJSON(t *testing.T) {
	v := NewViewer(ViewerConfig{NoColor: true}, os.Stdout)
	entry := v.parseLine("plain text line, not json")

	if entry.IsValid {
		t.Error("expected invalid entry for non-JSON line")
	}
	if got := v.FormatEntry(entry); got != "plain text line, not json" {
		t.Errorf("expected raw passthrough, got: %s", got)
	}
}

func TestViewer_FormatEntry_IncludesAttrs(t *testing.T) {
	v := NewViewer(ViewerConfig{NoColor: true}, os.Stdout)
	entry := v.parseLine(`{"time":"2026-08-20T10:00:00.000Z","level":"INFO","msg":"done","took_ms":12}`)

	out := v.FormatEntry(entry)
	if !strings.Contains(out, "done") || !strings.Contains(out, "took_ms=12") {
		t.Errorf("formatted entry missing fields: %s", out)
	}
}
