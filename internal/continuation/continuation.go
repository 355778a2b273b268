// Package continuation closes a turn with a yes/no/subset question and
// interprets the user's answer to it.
package continuation

import (
	"slices"
	"strings"

	"github.com/Iron-Ham/council/internal/classify"
	"github.com/Iron-Ham/council/internal/roles"
	"github.com/Iron-Ham/council/internal/selector"
	"github.com/Iron-Ham/council/internal/variation"
)

// Kind classifies an answer to the continuation question.
type Kind int

const (
	// None means the message is not an answer; it starts a new turn.
	None Kind = iota
	Yes
	No
	Subset
)

func (k Kind) String() string {
	switch k {
	case Yes:
		return "yes"
	case No:
		return "no"
	case Subset:
		return "subset"
	default:
		return "none"
	}
}

// Answer is the interpretation of a message sent while a continuation
// question is pending.
type Answer struct {
	Kind Kind
	// Roles are the named roles that are members, in text order.
	Roles []string
	// Unknown are the named roles that are not members.
	Unknown []string
}

// Vocabularies matched exactly after normalisation.
var (
	YesWords = []string{"yes", "y", "yeah", "continue", "go on", "ok", "okay", "sure", "はい", "うん", "続けて", "お願いします", "お願い"}
	NoWords  = []string{"no", "n", "nope", "stop", "enough", "done", "いいえ", "いや", "大丈夫", "終わり", "不要", "結構です"}
)

// Prompts are the continuation questions, rotated without repeats.
var Prompts = []string{
	"Shall the same experts dig deeper? Reply yes, no, or name the roles to continue with.",
	"Want another round with this panel? Answer yes or no, or list the experts to keep.",
	"Should I continue the discussion? Say yes, no, or which roles should go on.",
	"続けますか？「はい」「いいえ」、または続けてほしい担当を指定してください。",
}

// NextActions are suggestions offered when the user declines to continue.
var NextActions = map[classify.Category][]string{
	classify.Research: {
		"Next step: pick the two claims that matter most and find one primary source for each.",
		"Next step: write down the open questions and schedule three short user interviews.",
	},
	classify.Plan: {
		"Next step: assign an owner and a due date to the first milestone.",
		"Next step: turn the adopted option into a one-page plan and share it with the team.",
	},
	classify.Tech: {
		"Next step: build a throwaway spike of the riskiest component this week.",
		"Next step: list the integrations needed and check each one against existing tools.",
	},
	classify.GTM: {
		"Next step: draft the landing page message and test it with a small paid campaign.",
		"Next step: pick one channel and define the conversion metric you will watch.",
	},
	classify.General: {
		"Next step: write down the adopted option and the first action you will take tomorrow.",
		"Next step: share the summary with a stakeholder and ask for one objection.",
	},
}

// Prompt returns a continuation question not among recent.
func Prompt(recent []string) string {
	return variation.Pick(recent, Prompts)
}

// NextAction returns a suggestion for the category not among recent.
func NextAction(cat classify.Category, recent []string) string {
	candidates, ok := NextActions[cat]
	if !ok {
		candidates = NextActions[classify.General]
	}
	return variation.Pick(recent, candidates)
}

// Interpret reads text as an answer to a pending continuation question.
func Interpret(text string, members []string, reg roles.Registry) Answer {
	t := strings.TrimSpace(classify.Normalize(text))
	t = strings.TrimRight(t, ".!?。！？、, ")
	switch {
	case slices.Contains(YesWords, t):
		return Answer{Kind: Yes}
	case slices.Contains(NoWords, t):
		return Answer{Kind: No}
	}

	named := selector.Mentions(text, reg)
	if len(named) == 0 {
		return Answer{Kind: None}
	}
	ans := Answer{Kind: Subset}
	for _, id := range named {
		if slices.Contains(members, id) {
			ans.Roles = append(ans.Roles, id)
		} else {
			ans.Unknown = append(ans.Unknown, id)
		}
	}
	return ans
}
