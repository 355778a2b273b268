// Package variation keeps user-facing lines from repeating. It picks
// acknowledgement lines and prompts against the bounded history kept on each
// conversation.
package variation

import (
	"fmt"
	"slices"

	"github.com/Iron-Ham/council/internal/classify"
	"github.com/Iron-Ham/council/internal/conversation"
)

// FallbackAck is used once every template of a category has been shown
// recently.
const FallbackAck = "Noted. Let me bring in the right people."

// AckTemplates are the acknowledgement lines per topic category.
var AckTemplates = map[classify.Category][]string{
	classify.Research: {
		"Got it. Let's look at what the evidence says.",
		"Understood. I'll have the team dig into the facts first.",
		"Good question to research. Gathering perspectives now.",
		"了解しました。まず事実関係を確認します。",
	},
	classify.Plan: {
		"Got it. Let's turn this into a concrete plan.",
		"Understood. I'll ask for steps and owners.",
		"Makes sense. Let's sequence this properly.",
		"承知しました。段取りを整理します。",
	},
	classify.Tech: {
		"Got it. Let's check what it takes to build this.",
		"Understood. I'll get a technical read on it.",
		"Good. Let's weigh the implementation options.",
		"了解です。技術面から見ていきます。",
	},
	classify.GTM: {
		"Got it. Let's think about how this reaches customers.",
		"Understood. I'll ask about channels and pricing.",
		"Good. Let's look at the launch angle.",
		"承知しました。売り方を考えましょう。",
	},
	classify.General: {
		"Got it. Let me gather some views.",
		"Understood. Asking the panel now.",
		"Thanks. Let's hear from the experts.",
		"了解しました。意見を集めます。",
	},
}

// Acknowledge returns the acknowledgement line for a user message and
// records it on conv. It returns false for questions, which are answered
// directly instead. Callers must hold the conversation.
func Acknowledge(conv *conversation.Conversation, text string) (string, bool) {
	if classify.IsQuestion(text) {
		return "", false
	}
	cat := classify.Classify(text)
	line, ok := nextTemplate(conv, cat)
	if !ok {
		line = mutate(FallbackAck, func(s string) bool { return seen(conv, s) })
	}
	conv.AckHistory.Push(line)
	conv.UsedTemplates.Add(line)
	return line, true
}

func nextTemplate(conv *conversation.Conversation, cat classify.Category) (string, bool) {
	templates := AckTemplates[cat]
	if len(templates) == 0 {
		return "", false
	}
	start := conv.AckRotation[string(cat)]
	for i := range templates {
		idx := (start + i) % len(templates)
		if !seen(conv, templates[idx]) {
			conv.AckRotation[string(cat)] = idx + 1
			return templates[idx], true
		}
	}
	return "", false
}

func seen(conv *conversation.Conversation, s string) bool {
	if conv.UsedTemplates.Contains(s) {
		return true
	}
	last, ok := conv.AckHistory.Last()
	return ok && last == s
}

// mutate returns base, or base with a " (n)" counter, whichever is first not
// taken.
func mutate(base string, taken func(string) bool) string {
	s := base
	for n := 2; taken(s); n++ {
		s = fmt.Sprintf("%s (%d)", base, n)
	}
	return s
}

// Pick chooses a candidate that is not among recent. The rotation resumes
// after the most recently used candidate. When every candidate is recent the
// least recently used one is returned, which is never the latest.
func Pick(recent, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}
	start := 0
	for i := len(recent) - 1; i >= 0; i-- {
		if idx := slices.Index(candidates, recent[i]); idx >= 0 {
			start = idx + 1
			break
		}
	}
	for i := range candidates {
		c := candidates[(start+i)%len(candidates)]
		if !slices.Contains(recent, c) {
			return c
		}
	}
	for _, r := range recent {
		if slices.Contains(candidates, r) && (len(candidates) == 1 || r != recent[len(recent)-1]) {
			return r
		}
	}
	return candidates[start%len(candidates)]
}

// Unique returns text, adding a numbered suffix while taken reports it as
// already used.
func Unique(text string, taken func(string) bool) string {
	s := text
	for n := 2; taken(s); n++ {
		s = fmt.Sprintf("%s (follow-up %d)", text, n)
	}
	return s
}
