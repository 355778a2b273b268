package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns an identifier of the form "category.action",
	// e.g. "turn.completed".
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeConversationStarted = "conversation.started"
	TypeTranscriptAppended  = "transcript.appended"
	TypeTurnStarted         = "turn.started"
	TypeTurnCompleted       = "turn.completed"
	TypeRoleConsulted       = "role.consulted"
	TypeAdvisoryRaised      = "advisory.raised"
	TypeRolesReloaded       = "roles.reloaded"
)

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// ConversationStartedEvent is emitted when a conversation is created.
type ConversationStartedEvent struct {
	baseEvent
	ConversationID string
}

// NewConversationStartedEvent creates a ConversationStartedEvent.
func NewConversationStartedEvent(conversationID string) ConversationStartedEvent {
	return ConversationStartedEvent{
		baseEvent:      newBaseEvent(TypeConversationStarted),
		ConversationID: conversationID,
	}
}

// TranscriptAppendedEvent is emitted for every entry added to the event log.
type TranscriptAppendedEvent struct {
	baseEvent
	EntryID        int64
	ConversationID string
	Author         string
	Text           string
	Lane           string
	At             time.Time
}

// NewTranscriptAppendedEvent creates a TranscriptAppendedEvent.
func NewTranscriptAppendedEvent(id int64, conversationID, author, text, lane string, at time.Time) TranscriptAppendedEvent {
	return TranscriptAppendedEvent{
		baseEvent:      newBaseEvent(TypeTranscriptAppended),
		EntryID:        id,
		ConversationID: conversationID,
		Author:         author,
		Text:           text,
		Lane:           lane,
		At:             at,
	}
}

// TurnStartedEvent is emitted when a user message begins a turn.
type TurnStartedEvent struct {
	baseEvent
	ConversationID string
	Message        string
}

// NewTurnStartedEvent creates a TurnStartedEvent.
func NewTurnStartedEvent(conversationID, message string) TurnStartedEvent {
	return TurnStartedEvent{
		baseEvent:      newBaseEvent(TypeTurnStarted),
		ConversationID: conversationID,
		Message:        message,
	}
}

// TurnCompletedEvent is emitted once a turn reaches a terminal state.
type TurnCompletedEvent struct {
	baseEvent
	ConversationID string
	States         []string // state sequence visited by the turn
	Roles          []string // roles consulted, in order
	Adopted        string   // adopted role, empty when no summary was produced
	Duration       time.Duration
}

// NewTurnCompletedEvent creates a TurnCompletedEvent.
func NewTurnCompletedEvent(conversationID string, states, roles []string, adopted string, d time.Duration) TurnCompletedEvent {
	return TurnCompletedEvent{
		baseEvent:      newBaseEvent(TypeTurnCompleted),
		ConversationID: conversationID,
		States:         states,
		Roles:          roles,
		Adopted:        adopted,
		Duration:       d,
	}
}

// ConsultPhase identifies which exchange of a role's dialogue an event
// refers to.
type ConsultPhase string

const (
	PhaseInitial  ConsultPhase = "initial"
	PhaseFollowup ConsultPhase = "followup"
	PhaseDirect   ConsultPhase = "direct"
)

// RoleConsultedEvent is emitted after each completion request to a role.
type RoleConsultedEvent struct {
	baseEvent
	ConversationID string
	RoleID         string
	Phase          ConsultPhase
	Round          int  // follow-up round, zero for initial and direct consults
	Degraded       bool // the reply is a provider-error placeholder
}

// NewRoleConsultedEvent creates a RoleConsultedEvent.
func NewRoleConsultedEvent(conversationID, roleID string, phase ConsultPhase, round int, degraded bool) RoleConsultedEvent {
	return RoleConsultedEvent{
		baseEvent:      newBaseEvent(TypeRoleConsulted),
		ConversationID: conversationID,
		RoleID:         roleID,
		Phase:          phase,
		Round:          round,
		Degraded:       degraded,
	}
}

// AdvisoryKind distinguishes non-blocking advisories.
type AdvisoryKind string

const (
	// AdvisoryPrerequisite: a selected role declares prerequisites that were not selected.
	AdvisoryPrerequisite AdvisoryKind = "prerequisite"
	// AdvisoryNotMember: a continuation answer named roles outside the membership.
	AdvisoryNotMember AdvisoryKind = "not_member"
)

// AdvisoryRaisedEvent is emitted when a turn surfaces an advisory.
type AdvisoryRaisedEvent struct {
	baseEvent
	ConversationID string
	Kind           AdvisoryKind
	RoleID         string
	Missing        []string
}

// NewAdvisoryRaisedEvent creates an AdvisoryRaisedEvent.
func NewAdvisoryRaisedEvent(conversationID string, kind AdvisoryKind, roleID string, missing []string) AdvisoryRaisedEvent {
	return AdvisoryRaisedEvent{
		baseEvent:      newBaseEvent(TypeAdvisoryRaised),
		ConversationID: conversationID,
		Kind:           kind,
		RoleID:         roleID,
		Missing:        missing,
	}
}

// RolesReloadedEvent is emitted when the role definition file is reloaded.
type RolesReloadedEvent struct {
	baseEvent
	Path  string
	Count int
	Err   string // non-empty when the reload failed and the previous roles were kept
}

// NewRolesReloadedEvent creates a RolesReloadedEvent.
func NewRolesReloadedEvent(path string, count int, errMsg string) RolesReloadedEvent {
	return RolesReloadedEvent{
		baseEvent: newBaseEvent(TypeRolesReloaded),
		Path:      path,
		Count:     count,
		Err:       errMsg,
	}
}
