package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/Iron-Ham/council/internal/event"
	"github.com/Iron-Ham/council/internal/logging"
)

// Journal mirrors transcript events into <dir>/<conversation_id>.jsonl.
// Write failures are logged and never reach the conversation.
type Journal struct {
	dir    string
	logger *logging.Logger

	mu    sync.Mutex
	subID string
	bus   *event.Bus
}

// NewJournal creates a Journal rooted at dir. The directory is created
// lazily on the first write.
func NewJournal(dir string, logger *logging.Logger) *Journal {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Journal{dir: dir, logger: logger}
}

// Attach subscribes the journal to transcript notifications on bus.
func (j *Journal) Attach(bus *event.Bus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.bus != nil {
		return
	}
	j.bus = bus
	j.subID = bus.Subscribe(event.TypeTranscriptAppended, j.handle)
}

// Detach removes the bus subscription.
func (j *Journal) Detach() {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.bus == nil {
		return
	}
	j.bus.Unsubscribe(j.subID)
	j.bus = nil
}

func (j *Journal) handle(e event.Event) {
	appended, ok := e.(event.TranscriptAppendedEvent)
	if !ok {
		return
	}
	entry := Event{
		ID:             appended.EntryID,
		ConversationID: appended.ConversationID,
		Author:         appended.Author,
		Text:           appended.Text,
		Timestamp:      appended.At,
		Lane:           appended.Lane,
	}
	if err := j.Write(entry); err != nil {
		j.logger.WithConversation(entry.ConversationID).Warn("journal write failed",
			"event_id", entry.ID,
			"error", err.Error())
	}
}

// Write appends one event as a JSON line.
func (j *Journal) Write(e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("journal: marshal event: %w", err)
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return fmt.Errorf("journal: create directory: %w", err)
	}
	f, err := os.OpenFile(j.Path(e.ConversationID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("journal: open: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("journal: append: %w", err)
	}
	return f.Close()
}

// Path returns the journal file of a conversation.
func (j *Journal) Path(conversationID string) string {
	return filepath.Join(j.dir, conversationID+".jsonl")
}

// ReadJournal loads a journal file for export or inspection. Malformed
// lines are skipped; a missing file yields no events.
func ReadJournal(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("journal: open: %w", err)
	}
	defer func() { _ = f.Close() }()

	var events []Event
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e Event
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("journal: scan: %w", err)
	}
	return events, nil
}
