package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Iron-Ham/council/internal/classify"
	"github.com/Iron-Ham/council/internal/continuation"
	"github.com/Iron-Ham/council/internal/conversation"
	"github.com/Iron-Ham/council/internal/event"
	"github.com/Iron-Ham/council/internal/logging"
	"github.com/Iron-Ham/council/internal/roles"
	"github.com/Iron-Ham/council/internal/selector"
	"github.com/Iron-Ham/council/internal/transcript"
	"github.com/Iron-Ham/council/internal/variation"
)

// turn is the state of one HandleMessage execution. It only lives while
// the conversation lock is held.
type turn struct {
	e        *Engine
	ctx      context.Context
	conv     *conversation.Conversation
	text     string
	settings Settings
	logger   *logging.Logger

	// messageID is the id of the user's message in the main lane.
	messageID int64
	result    TurnResult

	reference     string
	referenceDone bool
}

// panel is a set of roles consulted together.
type panel struct {
	roles      []string
	advisories []selector.Advisory
	notMembers []string
	// continuing panels skip the initial consult and replay earlier answers.
	continuing bool
}

func (e *Engine) runTurn(ctx context.Context, conv *conversation.Conversation, text string) TurnResult {
	t := &turn{
		e:        e,
		ctx:      ctx,
		conv:     conv,
		text:     strings.TrimSpace(text),
		settings: e.Settings(),
		logger:   e.logger.WithConversation(conv.ID),
		result:   TurnResult{ConversationID: conv.ID},
	}

	start := e.now()
	e.publish(event.NewTurnStartedEvent(conv.ID, t.text))
	t.run()

	states := make([]string, len(t.result.States))
	for i, s := range t.result.States {
		states[i] = s.String()
	}
	e.publish(event.NewTurnCompletedEvent(conv.ID, states, t.result.Roles, t.result.Adopted, e.now().Sub(start)))
	t.logger.Info("turn completed",
		"states", states,
		"rule", t.result.Rule,
		"roles", t.result.Roles,
		"adopted", t.result.Adopted,
		"events", len(t.result.Events),
	)
	return t.result
}

func (t *turn) run() {
	prev, hasPrev := t.e.log.Last(t.conv.ID, transcript.LaneMain)

	t.enter(StateReceive)
	t.messageID = t.say(transcript.AuthorUser, transcript.LaneMain, t.text).ID

	t.enter(StateCheckContinuation)
	awaiting := t.conv.PendingContinuation != 0 && hasPrev && prev.ID == t.conv.PendingContinuation
	t.conv.PendingContinuation = 0
	if awaiting && t.answerContinuation() {
		return
	}

	if t.orchestratorOnly() {
		t.enter(StateOrchestratorOnlyReply)
		t.directReply()
		return
	}

	t.enter(StateSelectRoles)
	sel := selector.Select(selector.Input{
		Members:  t.conv.Members(),
		Text:     t.text,
		Limit:    t.settings.SelectLimit,
		Registry: t.e.registry,
	})
	t.result.Rule = sel.Rule
	t.logger.WithState(StateSelectRoles.String()).Debug("roles selected",
		"rule", sel.Rule, "roles", sel.Roles, "mentions", sel.Mentions)
	if len(sel.Roles) == 0 {
		t.enter(StateOrchestratorOnlyReply)
		t.directReply()
		return
	}
	t.consultPanel(panel{roles: sel.Roles, advisories: sel.Advisories})
}

// answerContinuation reads the message as an answer to the pending
// continuation question. It reports whether the turn was handled.
func (t *turn) answerContinuation() bool {
	members := t.conv.Members()
	ans := continuation.Interpret(t.text, members, t.e.registry)
	t.logger.WithState(StateCheckContinuation.String()).Debug("continuation answer",
		"kind", ans.Kind.String(), "roles", ans.Roles, "unknown", ans.Unknown)

	switch ans.Kind {
	case continuation.No:
		t.enter(StateNextAction)
		cat := classify.Category(t.conv.LastCategory)
		if cat == "" {
			cat = classify.General
		}
		t.say(transcript.AuthorOrchestrator, transcript.LaneMain,
			continuation.NextAction(cat, t.conv.Recent(transcript.LaneMain)))
		return true

	case continuation.Yes:
		var ids []string
		for _, id := range t.conv.LastConsulted {
			if _, ok := t.e.registry.ByID(id); ok {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			return false
		}
		t.consultPanel(panel{roles: ids, continuing: true})
		return true

	case continuation.Subset:
		for _, id := range ans.Unknown {
			t.e.publish(event.NewAdvisoryRaisedEvent(t.conv.ID, event.AdvisoryNotMember, id, nil))
		}
		t.result.NotMembers = ans.Unknown

		sel := selector.Select(selector.Input{
			Members:              members,
			Text:                 t.text,
			AwaitingContinuation: true,
			Registry:             t.e.registry,
		})
		valid := sel.Rule == selector.RuleContinuationSubset || sel.Rule == selector.RuleBroadcast
		if !valid || len(sel.Roles) == 0 {
			// Nobody to continue with: say so and treat the message as new.
			if len(ans.Unknown) > 0 {
				t.say(transcript.AuthorOrchestrator, transcript.LaneMain, t.notMemberNote(ans.Unknown))
			}
			return false
		}
		t.result.Rule = sel.Rule
		t.consultPanel(panel{roles: sel.Roles, notMembers: ans.Unknown, continuing: true})
		return true
	}
	return false
}

// orchestratorOnly updates and reports the conversation's
// orchestrator-only mode for this message.
func (t *turn) orchestratorOnly() bool {
	mentions := selector.Mentions(t.text, t.e.registry)
	adding := classify.AsksToAdd(t.text)
	broadcast := classify.ContainsAny(t.text, classify.Broadcast)

	// Naming roles or asking for specialists wins over addressing the
	// orchestrator: "Orchestrator, please add alpha" adds alpha.
	switch {
	case len(mentions) > 0 || broadcast:
		t.conv.OrchestratorOnly = false
	case classify.ContainsAny(t.text, classify.OrchestratorAddress):
		t.conv.OrchestratorOnly = true
	case adding:
		t.conv.OrchestratorOnly = false
	case len(t.conv.Members()) == 0:
		t.conv.OrchestratorOnly = true
	}
	return t.conv.OrchestratorOnly
}

// consultPanel runs announce, the per-role dialogues, the summary and the
// continuation question.
func (t *turn) consultPanel(p panel) {
	for _, id := range p.roles {
		if t.conv.Add(id) {
			t.logger.Debug("role joined", "role_id", id)
		}
	}
	t.conv.OrchestratorOnly = false

	t.enter(StateAnnounce)
	t.announce(p)

	var consulted []string
	var candidates []candidate
	for _, id := range p.roles {
		role, ok := t.e.registry.ByID(id)
		if !ok {
			continue
		}
		candidates = append(candidates, t.consultRole(role, p.continuing))
		consulted = append(consulted, id)
	}
	t.result.Roles = consulted

	t.enter(StateSummarize)
	t.summarize(candidates)

	t.enter(StateContinuationPrompt)
	prompt := continuation.Prompt(t.conv.Recent(transcript.LaneMain))
	t.conv.PendingContinuation = t.say(transcript.AuthorOrchestrator, transcript.LaneMain, prompt).ID
	t.conv.LastConsulted = consulted
	if !p.continuing {
		t.conv.LastCategory = string(classify.Classify(t.text))
	}
}

// announce posts one main-lane message: the acknowledgement, the
// consultation notice and any advisories.
func (t *turn) announce(p panel) {
	var parts []string
	if !p.continuing {
		if ack, ok := variation.Acknowledge(t.conv, t.text); ok {
			parts = append(parts, ack)
		}
		parts = append(parts, fmt.Sprintf("Consulting %s.", joinLabels(t.e.labels(p.roles))))
	} else {
		parts = append(parts, fmt.Sprintf("Continuing with %s.", joinLabels(t.e.labels(p.roles))))
	}
	if len(p.notMembers) > 0 {
		parts = append(parts, t.notMemberNote(p.notMembers))
	}
	for _, adv := range p.advisories {
		parts = append(parts, t.e.advisoryNote(adv))
		t.e.publish(event.NewAdvisoryRaisedEvent(t.conv.ID, event.AdvisoryPrerequisite, adv.Role, adv.Missing))
		t.logger.Info("prerequisite advisory", "role_id", adv.Role, "missing", adv.Missing)
	}
	t.result.Advisories = p.advisories
	t.say(transcript.AuthorOrchestrator, transcript.LaneMain, strings.Join(parts, " "))
}

func (t *turn) notMemberNote(ids []string) string {
	return fmt.Sprintf("%s not part of this conversation; add them first to hear from them.",
		withVerb(t.e.labels(ids)))
}

// enter records a state transition.
func (t *turn) enter(s State) {
	t.result.States = append(t.result.States, s)
	t.logger.WithState(s.String()).Debug("state entered")
}

// say appends an event and keeps the lane's recent-text history current.
func (t *turn) say(author, lane, text string) transcript.Event {
	ev := t.e.log.Append(t.conv.ID, author, text, lane)
	t.conv.Remember(lane, text)
	t.result.Events = append(t.result.Events, ev)
	return ev
}

// label returns a role's display label; the orchestrator and the user keep
// their author names.
func (t *turn) label(author string) string {
	switch author {
	case transcript.AuthorUser:
		return "User"
	case transcript.AuthorOrchestrator:
		return "Orchestrator"
	}
	if role, ok := t.e.registry.ByID(author); ok {
		return role.Label()
	}
	return author
}

// orchestratorRole returns the orchestrator persona with its reserved id.
func (t *turn) orchestratorRole() roles.Role {
	role := t.e.registry.Orchestrator()
	if role.ID == "" {
		role.ID = roles.OrchestratorID
	}
	return role
}
