package transcript

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Iron-Ham/council/internal/event"
)

// Log is the in-memory, process-wide event log. It is safe for concurrent
// use by any number of conversations.
type Log struct {
	mu     sync.RWMutex
	events []Event          // global, ascending id
	byConv map[string][]int // conversation -> indexes into events
	nextID atomic.Int64

	bus *event.Bus
	now func() time.Time
}

// Option configures a Log.
type Option func(*Log)

// WithBus publishes an event.TranscriptAppendedEvent after every Append.
func WithBus(bus *event.Bus) Option {
	return func(l *Log) {
		l.bus = bus
	}
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Log) {
		l.now = now
	}
}

// NewLog creates an empty Log.
func NewLog(opts ...Option) *Log {
	l := &Log{
		byConv: make(map[string][]int),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Append records a new event and returns it with its assigned id.
// Ids are allocated under the write lock so the global slice stays sorted.
func (l *Log) Append(conversationID, author, text, lane string) Event {
	l.mu.Lock()
	e := Event{
		ID:             l.nextID.Add(1),
		ConversationID: conversationID,
		Author:         author,
		Text:           text,
		Timestamp:      l.now(),
		Lane:           lane,
	}
	l.byConv[conversationID] = append(l.byConv[conversationID], len(l.events))
	l.events = append(l.events, e)
	l.mu.Unlock()

	if l.bus != nil {
		l.bus.Publish(event.NewTranscriptAppendedEvent(e.ID, e.ConversationID, e.Author, e.Text, e.Lane, e.Timestamp))
	}
	return e
}

// Query returns the conversation's events with id > sinceID in id order.
func (l *Log) Query(conversationID string, sinceID int64) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.byConv[conversationID]
	start := sort.Search(len(idx), func(i int) bool { return l.events[idx[i]].ID > sinceID })
	out := make([]Event, 0, len(idx)-start)
	for _, i := range idx[start:] {
		out = append(out, l.events[i])
	}
	return out
}

// Since returns events of every conversation with id > sinceID.
func (l *Log) Since(sinceID int64) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	start := sort.Search(len(l.events), func(i int) bool { return l.events[i].ID > sinceID })
	return append([]Event(nil), l.events[start:]...)
}

// Lane returns all events of one lane of a conversation.
func (l *Log) Lane(conversationID, lane string) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Event
	for _, i := range l.byConv[conversationID] {
		if e := l.events[i]; e.Lane == lane {
			out = append(out, e)
		}
	}
	return out
}

// Last returns the most recent event of a lane.
func (l *Log) Last(conversationID, lane string) (Event, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	idx := l.byConv[conversationID]
	for i := len(idx) - 1; i >= 0; i-- {
		if e := l.events[idx[i]]; e.Lane == lane {
			return e, true
		}
	}
	return Event{}, false
}

// Recent returns up to n of the latest events of a lane, oldest first.
func (l *Log) Recent(conversationID, lane string, n int) []Event {
	if n <= 0 {
		return nil
	}
	events := l.Lane(conversationID, lane)
	if len(events) > n {
		events = events[len(events)-n:]
	}
	return events
}

// LastID returns the id of the most recent event, zero when empty.
func (l *Log) LastID() int64 {
	return l.nextID.Load()
}
