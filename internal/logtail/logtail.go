package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one parsed log record. Lines that are not JSON keep only Raw.
type Entry struct {
	Time    time.Time
	Level   string
	Logger  string
	Message string
	Op      string
	Entity  string
	Kind    string
	Error   string
	Raw     string
}

// Structured reports whether the line parsed as a JSON record.
func (e Entry) Structured() bool { return e.Message != "" || e.Level != "" }

// Failure reports whether the record describes a failed operation.
func (e Entry) Failure() bool {
	switch e.Level {
	case "warn", "error", "dpanic", "panic", "fatal":
		return true
	}
	return e.Error != ""
}

// Parse decodes a JSON log line as written by tote's logger.
func Parse(line string) Entry {
	entry := Entry{Raw: line}
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return entry
	}
	var rec struct {
		TS     json.RawMessage `json:"ts"`
		Level  string          `json:"level"`
		Logger string          `json:"logger"`
		Msg    string          `json:"msg"`
		Op     string          `json:"op"`
		Entity string          `json:"entity"`
		Kind   string          `json:"kind"`
		Error  string          `json:"error"`
	}
	if err := json.Unmarshal([]byte(trimmed), &rec); err != nil {
		return entry
	}
	entry.Time = parseTS(rec.TS)
	entry.Level = strings.ToLower(rec.Level)
	entry.Logger = rec.Logger
	entry.Message = rec.Msg
	entry.Op = rec.Op
	entry.Entity = rec.Entity
	entry.Kind = rec.Kind
	entry.Error = rec.Error
	return entry
}

// parseTS accepts both ISO8601 strings and epoch-seconds floats.
func parseTS(raw json.RawMessage) time.Time {
	if len(raw) == 0 {
		return time.Time{}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		for _, layout := range []string{"2006-01-02T15:04:05.000Z0700", time.RFC3339Nano} {
			if t, err := time.Parse(layout, s); err == nil {
				return t
			}
		}
		return time.Time{}
	}
	var secs float64
	if err := json.Unmarshal(raw, &secs); err == nil {
		return time.Unix(0, int64(secs*float64(time.Second)))
	}
	return time.Time{}
}

// Format renders an entry on one line: time, level, message, then the
// operation fields that are present.
func Format(e Entry) string {
	if !e.Structured() {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", strings.ToUpper(e.Level), e.Message)
	if e.Op != "" {
		fmt.Fprintf(&b, " op=%s", e.Op)
	}
	if e.Entity != "" {
		fmt.Fprintf(&b, " id=%s", e.Entity)
	}
	if e.Kind != "" {
		fmt.Fprintf(&b, " kind=%s", e.Kind)
	}
	if e.Error != "" {
		fmt.Fprintf(&b, " error=%q", e.Error)
	}
	return b.String()
}

// ReadEntries is Read followed by Parse for each line.
func ReadEntries(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}
