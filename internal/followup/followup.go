// Package followup generates the clarification questions asked of a role
// after its initial reply.
//
// Nothing is stored between turns: the topics already covered are recovered
// from the orchestrator's question texts in the role's lane, matching each
// topic's fixed prompt stem.
package followup

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/council/internal/variation"
)

// Topic labels a follow-up question.
type Topic string

const (
	Elaboration     Topic = "elaboration"
	Economics       Topic = "economics"
	Staffing        Topic = "staffing"
	Risk            Topic = "risk"
	KPI             Topic = "kpi"
	Evaluation      Topic = "evaluation"
	Origin          Topic = "origin"
	Differentiation Topic = "differentiation"
	Validation      Topic = "validation"
	Stakeholders    Topic = "stakeholders"
	Revenue         Topic = "revenue"
	Alternate       Topic = "alternate"
)

// Primary is the main rotation.
var Primary = []Topic{Elaboration, Economics, Staffing, Risk, KPI}

// Secondary is used once every primary topic has been asked.
var Secondary = []Topic{Evaluation, Origin, Differentiation, Validation, Stakeholders, Revenue}

// Stems are the fixed openings of each topic's question. They are matched
// verbatim to recover the topic of an earlier question.
var Stems = map[Topic]string{
	Elaboration:     "Please elaborate on the concrete details of your proposal.",
	Economics:       "Walk through the economics: costs, pricing and break-even.",
	Staffing:        "What team and staffing would this need?",
	Risk:            "What are the main risks, and how would you mitigate each?",
	KPI:             "Which KPIs would show this is working, with target values?",
	Evaluation:      "How should we evaluate this against the alternatives?",
	Origin:          "What context or problem originally motivates this?",
	Differentiation: "How does this differ from what competitors already offer?",
	Validation:      "What is the smallest experiment that would validate this?",
	Stakeholders:    "Which stakeholders must agree, and what do they need to hear?",
	Revenue:         "Which revenue model fits this best?",
	Alternate:       "Take an alternate viewpoint: what would a skeptic propose instead?",
}

// Question is one generated follow-up.
type Question struct {
	Topic Topic
	Text  string
}

// Scheduler picks follow-up topics. The zero value is not usable; use New.
type Scheduler struct {
	primary   []Topic
	secondary []Topic
}

// New returns a Scheduler using the Primary and Secondary rotations.
func New() *Scheduler {
	return &Scheduler{primary: Primary, secondary: Secondary}
}

// Next returns the question for the given round. questions holds the
// orchestrator's earlier questions in the role's lane and lane every text
// exchanged there, both oldest first. Topics are recovered from questions
// only, so a reply quoting a question does not count as asking it; the new
// text is made unique against the whole lane. headline is the role's
// anchor headline and is embedded verbatim.
func (s *Scheduler) Next(questions, lane []string, headline string, round int) Question {
	asked := AskedTopics(questions)
	var last Topic
	if len(asked) > 0 {
		last = asked[len(asked)-1]
	}

	topic, ok := nextIn(s.primary, asked, last)
	if !ok {
		topic, ok = nextIn(s.secondary, asked, last)
	}
	if !ok {
		topic = Alternate
	}

	text := render(topic, headline, round)
	text = variation.Unique(text, func(t string) bool {
		return slices.Contains(lane, t) || slices.Contains(questions, t)
	})
	return Question{Topic: topic, Text: text}
}

// nextIn walks list circularly starting after last, returning the first
// topic not yet asked.
func nextIn(list, asked []Topic, last Topic) (Topic, bool) {
	if len(list) == 0 {
		return "", false
	}
	start := 0
	if i := slices.Index(list, last); i >= 0 {
		start = i + 1
	}
	for i := range list {
		t := list[(start+i)%len(list)]
		if !slices.Contains(asked, t) {
			return t, true
		}
	}
	return "", false
}

func render(topic Topic, headline string, round int) string {
	var b strings.Builder
	b.WriteString(Stems[topic])
	if topic == Alternate {
		fmt.Fprintf(&b, " (round %d)", round)
	}
	if headline != "" {
		fmt.Fprintf(&b, "\nYour headline (keep this headline unchanged): %s", headline)
		b.WriteString("\nElaborate on it without changing the headline.")
	}
	return b.String()
}

// TopicOf recovers the topic of a question text from its opening stem.
func TopicOf(text string) (Topic, bool) {
	for _, t := range slices.Concat(Primary, Secondary, []Topic{Alternate}) {
		if strings.HasPrefix(text, Stems[t]) {
			return t, true
		}
	}
	return "", false
}

// AskedTopics returns the topics of questions, in order, each listed once
// at its latest position.
func AskedTopics(questions []string) []Topic {
	var out []Topic
	for _, text := range questions {
		t, ok := TopicOf(text)
		if !ok {
			continue
		}
		if i := slices.Index(out, t); i >= 0 {
			out = slices.Delete(out, i, i+1)
		}
		out = append(out, t)
	}
	return out
}
