package orchestrator

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Iron-Ham/council/internal/classify"
	"github.com/Iron-Ham/council/internal/conversation"
	"github.com/Iron-Ham/council/internal/errors"
	"github.com/Iron-Ham/council/internal/event"
	"github.com/Iron-Ham/council/internal/followup"
	"github.com/Iron-Ham/council/internal/provider"
	"github.com/Iron-Ham/council/internal/roles"
	"github.com/Iron-Ham/council/internal/scoring"
	"github.com/Iron-Ham/council/internal/transcript"
	"github.com/Iron-Ham/council/internal/util"
)

// MinClarificationRunes is the shortest follow-up reply kept as a
// clarification.
const MinClarificationRunes = 12

// contextLineRunes bounds each line of the recent-conversation window.
const contextLineRunes = 300

// NoInfoPhrases mark follow-up replies that add nothing.
var NoInfoPhrases = []string{
	"no additional information",
	"nothing to add",
	"n/a",
	"特になし",
	"追加情報はありません",
}

type candidate = scoring.Candidate

// consultRole runs the initial exchange (unless continuing) and the
// follow-up loop of one role and returns its summary candidate.
func (t *turn) consultRole(role roles.Role, continuing bool) candidate {
	lane := transcript.ConsultLane(role.ID)
	logger := t.logger.WithRole(role.ID)

	rounds := t.settings.continuationRounds()
	if !continuing {
		t.enter(StateInitialConsult)
		reply := t.consult(role, t.initialPrompt(), event.PhaseInitial, 0)
		t.say(role.ID, lane, reply)
		if !provider.IsPlaceholder(reply) {
			if t.conv.SetAnchor(role.ID, conversation.Anchor{Response: reply, Headline: util.Headline(reply)}) {
				logger.Debug("anchor set", "headline", util.Headline(reply))
			}
		}
		rounds = t.settings.freshRounds()
	}

	t.enter(StateFollowupLoop)
	var headline string
	if anchor, ok := t.conv.Anchor(role.ID); ok {
		headline = anchor.Headline
	}

	var clarifications []string
	for round := 1; round <= rounds; round++ {
		questions, all := laneTexts(t.e.log.Lane(t.conv.ID, lane))
		q := t.e.scheduler.Next(questions, all, headline, round)
		prompt := t.followupPrompt(role, q.Text)
		t.say(transcript.AuthorOrchestrator, lane, q.Text)

		reply := t.consult(role, prompt, event.PhaseFollowup, round)
		t.say(role.ID, lane, reply)
		if headline == "" && !provider.IsPlaceholder(reply) {
			// The initial reply failed; the first substantive one anchors.
			anchor := conversation.Anchor{Response: reply, Headline: util.Headline(reply)}
			if t.conv.SetAnchor(role.ID, anchor) {
				headline = anchor.Headline
			}
		}
		logger.Debug("follow-up answered", "round", round, "topic", string(q.Topic))

		if len(clarifications) < scoring.MaxClarifications && isClarification(reply) {
			clarifications = append(clarifications, fmt.Sprintf("%s: %s", topicLabel(q.Topic), firstLine(reply)))
		}
	}

	return candidate{
		RoleID:         role.ID,
		Label:          role.Label(),
		Response:       t.candidateResponse(role.ID, lane),
		Clarifications: clarifications,
	}
}

// consult asks a role and reports the exchange on the bus. An empty reply
// is turned into a placeholder.
func (t *turn) consult(role roles.Role, prompt string, phase event.ConsultPhase, round int) string {
	reply := strings.TrimSpace(t.e.provider.Consult(t.ctx, role, prompt))
	if reply == "" {
		reply = provider.Placeholder(errors.New("empty reply"))
	}
	degraded := provider.IsPlaceholder(reply)
	if degraded {
		t.logger.WithRole(role.ID).Warn("consultation degraded", "phase", string(phase), "round", round)
	}
	t.e.publish(event.NewRoleConsultedEvent(t.conv.ID, role.ID, phase, round, degraded))
	return reply
}

// initialPrompt is the request with the recent conversation and any
// reference material.
func (t *turn) initialPrompt() string {
	var b strings.Builder
	if lines := t.contextWindow(); len(lines) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, l := range lines {
			b.WriteString(l)
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	if ref := t.referenceMaterial(); ref != "" {
		b.WriteString("Reference material:\n")
		b.WriteString(ref)
		b.WriteString("\n\n")
	}
	b.WriteString("Request:\n")
	b.WriteString(t.text)
	return b.String()
}

// contextWindow renders the main-lane events preceding the user's message.
func (t *turn) contextWindow() []string {
	n := t.settings.ContextWindow
	if n <= 0 {
		return nil
	}
	var before []transcript.Event
	for _, ev := range t.e.log.Lane(t.conv.ID, transcript.LaneMain) {
		if ev.ID < t.messageID {
			before = append(before, ev)
		}
	}
	if len(before) > n {
		before = before[len(before)-n:]
	}
	lines := make([]string, len(before))
	for i, ev := range before {
		text := strings.Join(strings.Fields(ev.Text), " ")
		lines[i] = fmt.Sprintf("%s: %s", t.label(ev.Author), util.TruncateString(text, contextLineRunes))
	}
	return lines
}

// followupPrompt carries the role's first and latest answers with the
// question.
func (t *turn) followupPrompt(role roles.Role, question string) string {
	first, latest := t.replies(role.ID, transcript.ConsultLane(role.ID))

	var b strings.Builder
	if first != "" {
		b.WriteString("Your first answer in this conversation:\n")
		b.WriteString(first)
		b.WriteString("\n\n")
	}
	if latest != "" && latest != first {
		b.WriteString("Your latest answer:\n")
		b.WriteString(latest)
		b.WriteString("\n\n")
	}
	b.WriteString(question)
	return b.String()
}

// replies returns the first and the latest substantive replies of a role.
func (t *turn) replies(roleID, lane string) (first, latest string) {
	for _, ev := range t.e.log.Lane(t.conv.ID, lane) {
		if ev.Author != roleID || provider.IsPlaceholder(ev.Text) {
			continue
		}
		if first == "" {
			first = ev.Text
		}
		latest = ev.Text
	}
	if anchor, ok := t.conv.Anchor(roleID); ok {
		first = anchor.Response
	}
	return first, latest
}

// candidateResponse is the anchor, else the latest reply, else the latest
// placeholder.
func (t *turn) candidateResponse(roleID, lane string) string {
	if anchor, ok := t.conv.Anchor(roleID); ok {
		return anchor.Response
	}
	if _, latest := t.replies(roleID, lane); latest != "" {
		return latest
	}
	events := t.e.log.Lane(t.conv.ID, lane)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Author == roleID {
			return events[i].Text
		}
	}
	return ""
}

// summarize ranks the candidates and posts the summary.
func (t *turn) summarize(candidates []candidate) {
	res := scoring.Rank(candidates)
	text := scoring.Render(res, t.settings.SummaryStyle == SummaryCondensed)
	if w, ok := res.Winner(); ok {
		t.result.Adopted = w.RoleID
		t.logger.WithState(StateSummarize.String()).Debug("candidate adopted",
			"role_id", w.RoleID, "score", w.Score, "rationale", res.Rationale)
	}
	t.say(transcript.AuthorOrchestrator, transcript.LaneMain, text)
}

func isClarification(reply string) bool {
	reply = strings.TrimSpace(reply)
	if util.RuneLen(reply) < MinClarificationRunes || provider.IsPlaceholder(reply) {
		return false
	}
	norm := strings.TrimRight(classify.Normalize(reply), ".。! ")
	return !slices.Contains(NoInfoPhrases, norm)
}

func topicLabel(topic followup.Topic) string {
	if topic == followup.KPI {
		return "KPI"
	}
	return cases.Title(language.English).String(string(topic))
}

func firstLine(text string) string {
	lines := util.NonEmptyLines(text)
	if len(lines) == 0 {
		return ""
	}
	line, _ := util.StripListMarker(lines[0])
	return line
}

// laneTexts splits a consult lane into the orchestrator's questions and
// every text in it.
func laneTexts(events []transcript.Event) (questions, all []string) {
	all = make([]string, len(events))
	for i, ev := range events {
		all[i] = ev.Text
		if ev.Author == transcript.AuthorOrchestrator {
			questions = append(questions, ev.Text)
		}
	}
	return questions, all
}
