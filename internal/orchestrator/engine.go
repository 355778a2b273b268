// Package orchestrator runs conversation turns: it decides which roles
// respond to a message, drives each through an initial exchange and a
// bounded follow-up dialogue, and closes the turn with a ranked summary and
// a continuation question.
package orchestrator

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Iron-Ham/council/internal/conversation"
	"github.com/Iron-Ham/council/internal/errors"
	"github.com/Iron-Ham/council/internal/event"
	"github.com/Iron-Ham/council/internal/followup"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/provider"
	"github.com/Iron-Ham/council/internal/retrieval"
	"github.com/Iron-Ham/council/internal/roles"
	"github.com/Iron-Ham/council/internal/selector"
	"github.com/Iron-Ham/council/internal/transcript"
)

// Retriever supplies reference material for initial consultations.
type Retriever interface {
	Fetch(ctx context.Context, url string) (retrieval.Document, error)
	Search(ctx context.Context, query string, n int) []retrieval.Result
}

// Engine owns every conversation of the process. HandleMessage serialises
// turns per conversation; distinct conversations run concurrently.
type Engine struct {
	registry  roles.Registry
	provider  provider.Provider
	log       *transcript.Log
	convs     *conversation.Registry
	scheduler *followup.Scheduler
	retriever Retriever
	bus       *event.Bus
	logger    *logging.Logger
	now       func() time.Time

	mu       sync.RWMutex
	settings Settings
}

// Option configures an Engine.
type Option func(*Engine)

// WithLog uses an existing event log instead of a private one.
func WithLog(l *transcript.Log) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// WithConversations uses an existing conversation registry.
func WithConversations(r *conversation.Registry) Option {
	return func(e *Engine) {
		e.convs = r
	}
}

// WithBus publishes turn notifications on bus. A log created by the engine
// publishes its appends there too.
func WithBus(bus *event.Bus) Option {
	return func(e *Engine) {
		e.bus = bus
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *logging.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithRetriever enables reference material for initial consultations.
func WithRetriever(r Retriever) Option {
	return func(e *Engine) {
		e.retriever = r
	}
}

// WithSettings overrides the default settings.
func WithSettings(s Settings) Option {
	return func(e *Engine) {
		e.settings = s.normalized()
	}
}

// WithClock overrides the time source used for turn durations.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine consulting roles from reg through p.
func New(reg roles.Registry, p provider.Provider, opts ...Option) *Engine {
	e := &Engine{
		registry:  reg,
		provider:  p,
		scheduler: followup.New(),
		logger:    logging.NopLogger(),
		now:       time.Now,
		settings:  DefaultSettings(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = transcript.NewLog(transcript.WithBus(e.bus))
	}
	if e.convs == nil {
		e.convs = conversation.NewRegistry()
	}
	return e
}

// TurnResult describes one completed turn.
type TurnResult struct {
	ConversationID string `json:"conversation_id"`
	// States is the sequence of states the turn passed through.
	States []State `json:"states"`
	// Rule is the selector rule that chose the roles, if selection ran.
	Rule string `json:"rule,omitempty"`
	// Roles are the consulted roles in consultation order.
	Roles []string `json:"roles,omitempty"`
	// Adopted is the role whose response the summary adopted.
	Adopted    string              `json:"adopted,omitempty"`
	Advisories []selector.Advisory `json:"advisories,omitempty"`
	// NotMembers are roles a continuation answer named outside the membership.
	NotMembers []string `json:"not_members,omitempty"`
	// Events are the transcript events appended by the turn.
	Events []transcript.Event `json:"events"`
}

// Final returns the terminal state of the turn.
func (r TurnResult) Final() State {
	if len(r.States) == 0 {
		return ""
	}
	return r.States[len(r.States)-1]
}

// Log returns the engine's event log.
func (e *Engine) Log() *transcript.Log {
	return e.log
}

// Registry returns the role registry.
func (e *Engine) Registry() roles.Registry {
	return e.registry
}

// Conversations returns the ids of every conversation, oldest first.
func (e *Engine) Conversations() []string {
	return e.convs.IDs()
}

// Start creates a conversation and greets the user in its main lane.
func (e *Engine) Start(_ context.Context) (string, []transcript.Event) {
	conv := e.convs.Create()
	// Nobody else knows the id yet, so the lock is not needed.
	text := e.greeting()
	ev := e.log.Append(conv.ID, transcript.AuthorOrchestrator, text, transcript.LaneMain)
	conv.Remember(transcript.LaneMain, text)

	e.publish(event.NewConversationStartedEvent(conv.ID))
	e.logger.WithConversation(conv.ID).Info("conversation started")
	return conv.ID, []transcript.Event{ev}
}

func (e *Engine) greeting() string {
	var labels []string
	for _, id := range e.registry.AllIDs() {
		if role, ok := e.registry.ByID(id); ok {
			labels = append(labels, role.Label())
		}
	}
	if len(labels) == 0 {
		return "Hi, I'm the orchestrator. Tell me what you're working on."
	}
	return fmt.Sprintf("Hi, I'm the orchestrator. Tell me what you're working on, or ask me to add experts: %s.",
		strings.Join(labels, ", "))
}

// HandleMessage runs one turn for text. Empty text and unknown
// conversations are rejected before anything is recorded.
func (e *Engine) HandleMessage(ctx context.Context, conversationID, text string) (TurnResult, error) {
	if strings.TrimSpace(text) == "" {
		return TurnResult{}, errors.NewConversationError("message rejected", errors.ErrEmptyMessage).
			WithConversationID(conversationID)
	}

	var res TurnResult
	err := e.convs.Do(ctx, conversationID, func(conv *conversation.Conversation) error {
		res = e.runTurn(ctx, conv, text)
		return nil
	})
	if err != nil {
		return TurnResult{}, err
	}
	return res, nil
}

// AddMembers adds roles to a conversation and announces them in the main
// lane. Every id is validated first; an unknown id changes nothing.
func (e *Engine) AddMembers(ctx context.Context, conversationID string, roleIDs []string) ([]transcript.Event, error) {
	if len(roleIDs) == 0 {
		return nil, errors.NewValidationError("no roles given").
			WithField("role_ids").WithCause(errors.ErrInvalidInput)
	}
	for _, id := range roleIDs {
		if _, ok := e.registry.ByID(id); !ok {
			return nil, errors.NewValidationError("unknown role").
				WithField("role_id").WithValue(id).WithCause(errors.ErrUnknownRole)
		}
	}

	var events []transcript.Event
	err := e.convs.Do(ctx, conversationID, func(conv *conversation.Conversation) error {
		var added, present []string
		for _, id := range roleIDs {
			if conv.Add(id) {
				added = append(added, id)
			} else if !slices.Contains(present, id) && !slices.Contains(added, id) {
				present = append(present, id)
			}
		}
		conv.OrchestratorOnly = false

		var parts []string
		if len(added) > 0 {
			parts = append(parts, fmt.Sprintf("Added %s to the conversation.", joinLabels(e.labels(added))))
		}
		if len(present) > 0 {
			parts = append(parts, fmt.Sprintf("%s already in the conversation.", withVerb(e.labels(present))))
		}
		for _, adv := range selector.Advisories(added, conv.Members(), e.registry) {
			parts = append(parts, e.advisoryNote(adv))
			e.publish(event.NewAdvisoryRaisedEvent(conv.ID, event.AdvisoryPrerequisite, adv.Role, adv.Missing))
		}

		text := strings.Join(parts, " ")
		events = append(events, e.log.Append(conv.ID, transcript.AuthorOrchestrator, text, transcript.LaneMain))
		conv.Remember(transcript.LaneMain, text)

		e.logger.WithConversation(conv.ID).Info("members added", "added", added, "members", conv.Members())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// Members returns the members of a conversation.
func (e *Engine) Members(ctx context.Context, conversationID string) ([]string, error) {
	var members []string
	err := e.convs.Do(ctx, conversationID, func(conv *conversation.Conversation) error {
		members = conv.Members()
		return nil
	})
	return members, err
}

// Events returns the events of a conversation with id > since.
func (e *Engine) Events(conversationID string, since int64) ([]transcript.Event, error) {
	if _, ok := e.convs.Get(conversationID); !ok {
		return nil, errors.NewNotFoundError("conversation", conversationID).WithCause(errors.ErrConversationNotFound)
	}
	return e.log.Query(conversationID, since), nil
}

// Feed returns the events of every conversation with id > since.
func (e *Engine) Feed(since int64) []transcript.Event {
	return e.log.Since(since)
}

// Recommend returns up to limit recommended roles. A non-positive limit
// returns the whole padded list.
func (e *Engine) Recommend(limit int) []roles.Role {
	ids := selector.Recommended(e.registry)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]roles.Role, 0, len(ids))
	for _, id := range ids {
		if role, ok := e.registry.ByID(id); ok {
			out = append(out, role)
		}
	}
	return out
}

// Settings returns the current settings.
func (e *Engine) Settings() Settings {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.settings
}

// UpdateSettings validates s, clamps it and makes it current for the next
// turns. It returns the stored settings.
func (e *Engine) UpdateSettings(s Settings) (Settings, error) {
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	s = s.normalized()

	e.mu.Lock()
	e.settings = s
	e.mu.Unlock()

	e.logger.Info("settings updated",
		"followup_turns", s.FollowupTurns,
		"select_limit", s.SelectLimit,
		"summary_style", s.SummaryStyle,
	)
	return s, nil
}

func (e *Engine) publish(ev event.Event) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

// labels maps role ids to display labels, keeping unknown ids as is.
func (e *Engine) labels(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id
		if role, ok := e.registry.ByID(id); ok {
			out[i] = role.Label()
		}
	}
	return out
}

func (e *Engine) advisoryNote(adv selector.Advisory) string {
	return fmt.Sprintf("Note: %s usually builds on input from %s.",
		e.labels([]string{adv.Role})[0], joinLabels(e.labels(adv.Missing)))
}

// joinLabels renders "A", "A and B" or "A, B and C".
func joinLabels(labels []string) string {
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return labels[0]
	default:
		return strings.Join(labels[:len(labels)-1], ", ") + " and " + labels[len(labels)-1]
	}
}

func withVerb(labels []string) string {
	if len(labels) == 1 {
		return labels[0] + " is"
	}
	return joinLabels(labels) + " are"
}
