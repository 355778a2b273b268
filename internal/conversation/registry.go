package conversation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/council/internal/errors"
)

// Registry owns every conversation of the process. Each conversation has a
// single writer at a time: Do serialises callers per conversation while
// distinct conversations proceed concurrently.
type Registry struct {
	mu    sync.RWMutex
	convs map[string]*Conversation
	now   func() time.Time
	newID func() string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		convs: make(map[string]*Conversation),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Create registers a new conversation with a fresh UUID.
func (r *Registry) Create() *Conversation {
	c := New(r.newID(), r.now())

	r.mu.Lock()
	r.convs[c.ID] = c
	r.mu.Unlock()
	return c
}

// Get returns a conversation by id.
func (r *Registry) Get(id string) (*Conversation, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.convs[id]
	return c, ok
}

// IDs returns the ids of all conversations, oldest first.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	all := make([]*Conversation, 0, len(r.convs))
	for _, c := range r.convs {
		all = append(all, c)
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].Created.Equal(all[j].Created) {
			return all[i].ID < all[j].ID
		}
		return all[i].Created.Before(all[j].Created)
	})
	ids := make([]string, len(all))
	for i, c := range all {
		ids[i] = c.ID
	}
	return ids
}

// Do runs fn with exclusive access to the conversation. Waiting for the
// conversation stops when ctx is done.
func (r *Registry) Do(ctx context.Context, id string, fn func(*Conversation) error) error {
	c, ok := r.Get(id)
	if !ok {
		return errors.NewNotFoundError("conversation", id).WithCause(errors.ErrConversationNotFound)
	}

	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-c.sem }()

	return fn(c)
}
