package orchestrator

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/council/internal/classify"
	"github.com/Iron-Ham/council/internal/event"
	"github.com/Iron-Ham/council/internal/provider"
	"github.com/Iron-Ham/council/internal/scoring"
	"github.com/Iron-Ham/council/internal/transcript"
	"github.com/Iron-Ham/council/internal/util"
)

// Glossary holds the terms the orchestrator defines without a consultation.
// Keys are normalised.
var Glossary = map[string]string{
	"kpi":   "A KPI (key performance indicator) is a metric tied to a goal, with a target value and a review cadence, e.g. weekly active users ≥ 2,000 by Q3.",
	"okr":   "OKRs (objectives and key results) pair a qualitative objective with two to five measurable key results reviewed each quarter.",
	"mvp":   "An MVP (minimum viable product) is the smallest version of a product that lets you learn whether customers want it.",
	"poc":   "A PoC (proof of concept) is a short experiment that shows an idea is technically feasible before committing to build it.",
	"roi":   "ROI (return on investment) is the net gain of an investment divided by its cost, usually expressed as a percentage.",
	"ltv":   "LTV (customer lifetime value) is the total gross margin a customer is expected to generate over the whole relationship.",
	"cac":   "CAC (customer acquisition cost) is total sales and marketing spend divided by the number of new customers in the same period.",
	"gtm":   "GTM (go-to-market) is the plan for reaching customers: target segment, positioning, pricing, channels and launch sequence.",
	"pmf":   "PMF (product-market fit) is the point where a product satisfies a clear market demand, visible in retention and organic growth.",
	"churn": "Churn is the share of customers (or revenue) lost in a period, e.g. 3% monthly churn means 3 of every 100 customers leave each month.",
}

// directReply answers the message as the orchestrator.
func (t *turn) directReply() {
	reply := t.directAnswer()
	t.say(transcript.AuthorOrchestrator, transcript.LaneMain, reply)
}

func (t *turn) directAnswer() string {
	if classify.AsksWhichOfThese(t.text) && len(t.conv.LastOptions) > 0 {
		return pickOption(t.conv.LastOptions)
	}

	if term, ok := classify.DefinitionTerm(t.text); ok {
		if def, ok := Glossary[strings.ToLower(term)]; ok {
			t.logger.Debug("glossary answer", "term", term)
			return def
		}
		return t.consultOrchestrator(fmt.Sprintf(
			"Define %q in two or three plain sentences and give one concrete example.", term))
	}

	if n, ok := classify.ListCount(t.text); ok {
		reply := t.consultOrchestrator(fmt.Sprintf(
			"%s\n\nList exactly %d distinct options, one per line, numbered, without commentary.", t.initialPrompt(), n))
		options := parseOptions(reply, n)
		if len(options) == 0 {
			t.conv.LastOptions = nil
			return reply
		}
		t.conv.LastOptions = options
		return renderOptions(options)
	}

	return t.consultOrchestrator(t.initialPrompt())
}

func (t *turn) consultOrchestrator(prompt string) string {
	role := t.orchestratorRole()
	reply := strings.TrimSpace(t.e.provider.Consult(t.ctx, role, prompt))
	degraded := reply == "" || provider.IsPlaceholder(reply)
	if reply == "" {
		reply = "I could not come up with an answer right now. Could you rephrase the question?"
	}
	if degraded {
		t.logger.Warn("direct answer degraded")
	}
	t.e.publish(event.NewRoleConsultedEvent(t.conv.ID, role.ID, event.PhaseDirect, 0, degraded))
	return reply
}

// parseOptions reads up to n options from a listed reply. Marked lines win;
// a reply without list markers is read line by line.
func parseOptions(reply string, n int) []string {
	lines := util.NonEmptyLines(reply)
	var marked, plain []string
	for _, line := range lines {
		if provider.IsPlaceholder(line) {
			return nil
		}
		if text, ok := util.StripListMarker(line); ok {
			if text != "" {
				marked = append(marked, text)
			}
			continue
		}
		plain = append(plain, line)
	}
	options := marked
	if len(options) == 0 {
		options = plain
	}
	if len(options) > n {
		options = options[:n]
	}
	return options
}

func renderOptions(options []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Here are %d options:\n", len(options))
	for i, opt := range options {
		fmt.Fprintf(&b, "%d. %s\n", i+1, opt)
	}
	b.WriteString("Ask me which of these to pick and I'll recommend one.")
	return b.String()
}

// pickOption ranks remembered options with the adoption scorer.
func pickOption(options []string) string {
	candidates := make([]scoring.Candidate, len(options))
	for i, opt := range options {
		candidates[i] = scoring.Candidate{
			RoleID:   fmt.Sprintf("option-%d", i+1),
			Label:    fmt.Sprintf("Option %d", i+1),
			Response: opt,
		}
	}
	res := scoring.Rank(candidates)
	w, ok := res.Winner()
	if !ok {
		return "There are no options to choose from yet."
	}
	if res.Rationale == "" {
		return fmt.Sprintf("I'd pick option %d: %s. None of the options stands out on evidence, so I went with the earliest.",
			res.Adopted+1, w.Response)
	}
	return fmt.Sprintf("I'd pick option %d: %s. Why: %s.", res.Adopted+1, w.Response, res.Rationale)
}
