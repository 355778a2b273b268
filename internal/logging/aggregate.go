package logging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// Entry is one parsed line of a council log file.
type Entry struct {
	Time           time.Time      `json:"time"`
	Level          string         `json:"level"`
	Message        string         `json:"msg"`
	ConversationID string         `json:"conversation_id,omitempty"`
	RoleID         string         `json:"role_id,omitempty"`
	State          string         `json:"state,omitempty"`
	Attrs          map[string]any `json:"attrs,omitempty"`
}

// Filter selects log entries. Zero-valued fields do not filter; set fields
// are combined with AND.
type Filter struct {
	Level           string
	Since           time.Time
	ConversationID  string
	RoleID          string
	State           string
	MessageContains string
}

var levelOrder = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

var knownKeys = map[string]bool{
	"time": true, "level": true, "msg": true,
	"conversation_id": true, "role_id": true, "state": true,
}

// ReadFile parses every JSON line of the log file at path, sorted by time.
// Malformed lines are skipped.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no log file at %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// Read parses JSON log lines from r, sorted by time.
func Read(r io.Reader) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var entries []Entry
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entry, err := parseEntry(line)
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading log file: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Time.Before(entries[j].Time)
	})
	return entries, nil
}

func parseEntry(line string) (Entry, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, fmt.Errorf("invalid JSON: %w", err)
	}

	entry := Entry{Attrs: make(map[string]any)}
	if s, ok := raw["time"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			entry.Time = t
		}
	}
	entry.Level, _ = raw["level"].(string)
	entry.Message, _ = raw["msg"].(string)
	entry.ConversationID, _ = raw["conversation_id"].(string)
	entry.RoleID, _ = raw["role_id"].(string)
	entry.State, _ = raw["state"].(string)

	for k, v := range raw {
		if !knownKeys[k] {
			entry.Attrs[k] = v
		}
	}
	return entry, nil
}

// Apply returns the entries matching f, preserving order.
func (f Filter) Apply(entries []Entry) []Entry {
	var out []Entry
	for _, e := range entries {
		if f.matches(e) {
			out = append(out, e)
		}
	}
	return out
}

func (f Filter) matches(e Entry) bool {
	if f.Level != "" {
		want, ok1 := levelOrder[strings.ToUpper(f.Level)]
		got, ok2 := levelOrder[e.Level]
		if ok1 && ok2 && got < want {
			return false
		}
	}
	if !f.Since.IsZero() && e.Time.Before(f.Since) {
		return false
	}
	if f.ConversationID != "" && e.ConversationID != f.ConversationID {
		return false
	}
	if f.RoleID != "" && e.RoleID != f.RoleID {
		return false
	}
	if f.State != "" && !strings.EqualFold(e.State, f.State) {
		return false
	}
	if f.MessageContains != "" && !strings.Contains(e.Message, f.MessageContains) {
		return false
	}
	return true
}

// Format renders an entry as a single human-readable line.
func (e Entry) Format() string {
	var b strings.Builder
	b.WriteString(e.Time.Format("15:04:05.000"))
	fmt.Fprintf(&b, " %-5s %s", e.Level, e.Message)
	if e.ConversationID != "" {
		fmt.Fprintf(&b, " conversation=%s", shortID(e.ConversationID))
	}
	if e.RoleID != "" {
		fmt.Fprintf(&b, " role=%s", e.RoleID)
	}
	if e.State != "" {
		fmt.Fprintf(&b, " state=%s", e.State)
	}
	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, e.Attrs[k])
	}
	return b.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
