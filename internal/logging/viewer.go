package logging

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"
)

// LogEntry represents a parsed JSON log line.
type LogEntry struct {
	Time    time.Time              `json:"time"`
	Level   string                 `json:"level"`
	Msg     string                 `json:"msg"`
	Attrs   map[string]interface{} `json:"-"` // Additional attributes
	Raw     string                 `json:"-"` // Original line
	IsValid bool                   `json:"-"` // Whether JSON parsing succeeded
}

// ViewerConfig configures the log viewer.
type ViewerConfig struct {
	Level   string         // Filter by level (debug, info, warn, error)
	Pattern *regexp.Regexp // Filter by pattern
	NoColor bool           // Disable colors
}

// Viewer provides log viewing and filtering capabilities.
type Viewer struct {
	config ViewerConfig
	out    io.Writer
}

// NewViewer creates a new log viewer.
func NewViewer(cfg ViewerConfig, out io.Writer) *Viewer {
	return &Viewer{
		config: cfg,
		out:    out,
	}
}

// Tail reads the last n lines from a log file and returns matching entries.
func (v *Viewer) Tail(path string, n int) ([]LogEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var lines []string
	scanner := bufio.NewScanner(file)
	// Increase buffer size for long log lines
	const maxCapacity = 1024 * 1024 // 1MB
	buf := make([]byte, maxCapacity)
	scanner.Buffer(buf, maxCapacity)

	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read log file: %w", err)
	}

	// Take last n lines
	start := 0
	if len(lines) > n {
		start = len(lines) - n
	}
	lines = lines[start:]

	// Parse and filter entries
	var entries []LogEntry
	for _, line := range lines {
		entry := v.parseLine(line)
		if v.matchesFilter(entry) {
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// Follow watches a log file for new entries and sends them to the channel.
// Blocks until context is cancelled.
func (v *Viewer) Follow(ctx context.Context, path string, entries chan<- LogEntry) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// Seek to end of file
	_, err = file.Seek(0, io.SeekEnd)
	if err != nil {
		return fmt.Errorf("failed to seek to end: %w", err)
	}

	reader := bufio.NewReader(file)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			// Try to read new lines
			for {
				line, err := reader.ReadString('\n')
				if err != nil {
					break // No more data available
				}

				line = strings.TrimSuffix(line, "\n")
				if line == "" {
					continue
				}

				entry := v.parseLine(line)
				if v.matchesFilter(entry) {
					select {
					case entries <- entry:
					case <-ctx.Done():
						return nil
					}
				}
			}
		}
	}
}

// FormatEntry formats a log entry for display.
func (v *Viewer) FormatEntry(entry LogEntry) string {
	if !entry.IsValid {
		// Return raw line for unparseable entries
		return entry.Raw
	}

	timestamp := entry.Time.Format("15:04:05.000")
	level := v.formatLevel(entry.Level)
	msg := entry.Msg

	var attrs []string
	for k, val := range entry.Attrs {
		attrs = append(attrs, fmt.Sprintf("%s=%v", k, val))
	}
	attrStr := ""
	if len(attrs) > 0 {
		attrStr = " " + strings.Join(attrs, " ")
	}

	return fmt.Sprintf("%s %s %s%s", timestamp, level, msg, attrStr)
}

// Print prints entries to the output.
func (v *Viewer) Print(entries []LogEntry) {
	for _, entry := range entries {
		_, _ = fmt.Fprintln(v.out, v.FormatEntry(entry))
	}
}

// parseLine parses a JSON log line into LogEntry.
func (v *Viewer) parseLine(line string) LogEntry {
	entry := LogEntry{
		Raw:     line,
		IsValid: false,
	}

	var data map[string]interface{}
	if err := json.Unmarshal([]byte(line), &data); err != nil {
		return entry
	}

	entry.IsValid = true

	if t, ok := data["time"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			entry.Time = parsed
		}
	}

	if l, ok := data["level"].(string); ok {
		entry.Level = l
	}

	if m, ok := data["msg"].(string); ok {
		entry.Msg = m
	}

	// Collect remaining attributes
	entry.Attrs = make(map[string]interface{})
	for k, val := range data {
		if k != "time" && k != "level" && k != "msg" {
			entry.Attrs[k] = val
		}
	}

	return entry
}

// matchesFilter checks if an entry matches the configured filters.
func (v *Viewer) matchesFilter(entry LogEntry) bool {
	// Level filter
	if v.config.Level != "" {
		entryLevel := LevelFromString(entry.Level)
		filterLevel := LevelFromString(v.config.Level)
		if entryLevel < filterLevel {
			return false
		}
	}

	// Pattern filter
	if v.config.Pattern != nil {
		if !v.config.Pattern.MatchString(entry.Raw) {
			return false
		}
	}

	return true
}

// formatLevel formats the log level with optional color.
func (v *Viewer) formatLevel(level string) string {
	levelStr := strings.ToUpper(level)
	if len(levelStr) > 5 {
		levelStr = levelStr[:5]
	}
	levelStr = fmt.Sprintf("%-5s", levelStr)

	if v.config.NoColor {
		return levelStr
	}

	// ANSI colors
	switch strings.ToLower(level) {
	case "debug":
		return "\033[90m" + levelStr + "\033[0m" // Gray
	case "info":
		return "\033[32m" + levelStr + "\033[0m" // Green
	case "warn", "warning":
		return "\033[33m" + levelStr + "\033[0m" // Yellow
	case "error":
		return "\033[31m" + levelStr + "\033[0m" // Red
	default:
		return levelStr
	}
}
