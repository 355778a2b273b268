package orchestrator

// State is one step of a turn. Every message runs one turn, starting at
// StateReceive and ending in a terminal state.
type State string

const (
	// StateReceive records the user's message in the main lane.
	StateReceive State = "RECEIVE"

	// StateCheckContinuation reads the message as an answer when the
	// previous main-lane message was a continuation question.
	StateCheckContinuation State = "CHECK_CONTINUATION"

	// StateOrchestratorOnlyReply answers without consulting any expert.
	StateOrchestratorOnlyReply State = "ORCHESTRATOR_ONLY_REPLY"

	// StateSelectRoles applies the selector rule table.
	StateSelectRoles State = "SELECT_ROLES"

	// StateAnnounce posts the acknowledgement and the consultation notice.
	StateAnnounce State = "ANNOUNCE"

	// StateInitialConsult sends the request to one role and sets its anchor.
	StateInitialConsult State = "INITIAL_CONSULT"

	// StateFollowupLoop runs the bounded clarification rounds of one role.
	StateFollowupLoop State = "FOLLOWUP_LOOP"

	// StateSummarize ranks the responses and posts the summary.
	StateSummarize State = "SUMMARIZE"

	// StateContinuationPrompt asks whether the panel should continue.
	StateContinuationPrompt State = "CONTINUATION_PROMPT"

	// StateNextAction suggests a next step after a negative continuation
	// answer.
	StateNextAction State = "NEXT_ACTION"
)

// AllStates returns every turn state in flow order.
func AllStates() []State {
	return []State{
		StateReceive,
		StateCheckContinuation,
		StateOrchestratorOnlyReply,
		StateSelectRoles,
		StateAnnounce,
		StateInitialConsult,
		StateFollowupLoop,
		StateSummarize,
		StateContinuationPrompt,
		StateNextAction,
	}
}

// IsTerminal returns true if the turn ends in this state.
func (s State) IsTerminal() bool {
	switch s {
	case StateOrchestratorOnlyReply, StateContinuationPrompt, StateNextAction:
		return true
	default:
		return false
	}
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known turn state.
func (s State) IsValid() bool {
	for _, st := range AllStates() {
		if s == st {
			return true
		}
	}
	return false
}
