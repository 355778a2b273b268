// Package selector decides which roles respond to a message.
//
// Selection is an ordered rule table; the first rule whose predicate holds
// resolves the roles. The result is truncated to the per-message limit
// unless the broadcast rule applied.
package selector

import (
	"slices"
	"sort"

	"github.com/Iron-Ham/council/internal/classify"
	"github.com/Iron-Ham/council/internal/roles"
)

// Rule names reported on a Selection.
const (
	RuleBroadcast          = "broadcast"
	RuleContinuationSubset = "continuation_subset"
	RuleAddSpecialist      = "add_specialist"
	RuleOpinion            = "opinion"
	RuleKeyword            = "keyword"
	RuleRecommended        = "recommended"
	RuleNone               = "none"
)

// MinRecommended is the minimum size of the recommended fallback list.
const MinRecommended = 8

// Input is everything a selection depends on.
type Input struct {
	Members              []string
	Text                 string
	Limit                int
	AwaitingContinuation bool
	Registry             roles.Registry
}

// Advisory reports that a selected role declares prerequisites that were
// not selected. It never blocks the consultation.
type Advisory struct {
	Role    string   `json:"role"`
	Missing []string `json:"missing"`
}

// Selection is the outcome of Select.
type Selection struct {
	Roles      []string
	Advisories []Advisory
	Rule       string
	// Mentions are the roles named in the text, in text order.
	Mentions []string
}

// Adds reports whether the selection asks for its roles to join the
// conversation.
func (s Selection) Adds() bool {
	return s.Rule == RuleAddSpecialist
}

type state struct {
	in       Input
	mentions []string
	adding   bool
}

type rule struct {
	name    string
	applies func(c *state) bool
	resolve func(c *state) []string
}

// rules is evaluated top to bottom.
var rules = []rule{
	{
		name:    RuleBroadcast,
		applies: func(c *state) bool { return len(c.in.Members) > 0 && classify.ContainsAny(c.in.Text, classify.Broadcast) },
		resolve: func(c *state) []string { return slices.Clone(c.in.Members) },
	},
	{
		name:    RuleContinuationSubset,
		applies: func(c *state) bool { return c.in.AwaitingContinuation && len(c.mentions) > 0 },
		resolve: func(c *state) []string {
			var out []string
			for _, id := range c.mentions {
				if slices.Contains(c.in.Members, id) {
					out = append(out, id)
				}
			}
			return out
		},
	},
	{
		name:    RuleAddSpecialist,
		applies: func(c *state) bool { return c.adding && len(c.mentions) > 0 },
		resolve: func(c *state) []string { return slices.Clone(c.mentions) },
	},
	{
		// An add request naming no valid role falls through to keywords.
		name: RuleOpinion,
		applies: func(c *state) bool {
			return !c.adding &&
				(len(c.in.Members) > 0 || len(c.mentions) > 0) &&
				classify.ContainsAny(c.in.Text, classify.Opinion)
		},
		resolve: resolveOpinion,
	},
}

// Select applies the rule table to in.
func Select(in Input) Selection {
	c := &state{
		in:       in,
		mentions: Mentions(in.Text, in.Registry),
		adding:   classify.AsksToAdd(in.Text),
	}

	sel := Selection{Rule: RuleNone, Mentions: c.mentions}
	matched := false
	for _, r := range rules {
		if r.applies(c) {
			sel.Rule = r.name
			sel.Roles = r.resolve(c)
			matched = true
			break
		}
	}
	if !matched {
		sel.Roles, sel.Rule = resolveKeywords(c)
	}

	if sel.Rule != RuleBroadcast && in.Limit > 0 && len(sel.Roles) > in.Limit {
		sel.Roles = sel.Roles[:in.Limit]
	}
	sel.Advisories = advisories(sel.Roles, in.Registry)
	return sel
}

func resolveOpinion(c *state) []string {
	var out []string
	for _, id := range c.in.Members {
		role, ok := c.in.Registry.ByID(id)
		if ok && role.Auxiliary && !slices.Contains(c.mentions, id) {
			continue
		}
		out = append(out, id)
	}
	for _, id := range c.mentions {
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func resolveKeywords(c *state) ([]string, string) {
	var out []string
	for _, kr := range KeywordTable {
		if slices.Contains(out, kr.Role) {
			continue
		}
		if _, ok := c.in.Registry.ByID(kr.Role); !ok {
			continue
		}
		if classify.ContainsAny(c.in.Text, kr.Keywords) {
			out = append(out, kr.Role)
		}
	}
	if len(out) > 0 {
		return out, RuleKeyword
	}
	if classify.ContainsAny(c.in.Text, classify.BroadOpinion) {
		return Recommended(c.in.Registry), RuleRecommended
	}
	return nil, RuleNone
}

// Recommended returns the registry's recommended list padded with other
// roles to at least MinRecommended entries.
func Recommended(reg roles.Registry) []string {
	out := reg.Recommended()
	for _, id := range reg.AllIDs() {
		if len(out) >= MinRecommended {
			break
		}
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out
}

func advisories(selected []string, reg roles.Registry) []Advisory {
	return Advisories(selected, selected, reg)
}

// Advisories reports the roles of ids whose declared prerequisites are not
// in present.
func Advisories(ids, present []string, reg roles.Registry) []Advisory {
	var out []Advisory
	for _, id := range ids {
		role, ok := reg.ByID(id)
		if !ok {
			continue
		}
		if missing := roles.MissingPrerequisites(role, present); len(missing) > 0 {
			out = append(out, Advisory{Role: id, Missing: missing})
		}
	}
	return out
}

// Mentions returns the registry roles named in text by id, "@id", title or
// alias, ordered by first appearance.
func Mentions(text string, reg roles.Registry) []string {
	if reg == nil {
		return nil
	}
	type hit struct {
		id  string
		pos int
	}
	var hits []hit
	for _, id := range reg.AllIDs() {
		role, _ := reg.ByID(id)
		names := make([]string, 0, 4)
		for _, n := range role.Names() {
			names = append(names, classify.Normalize(n))
		}
		if pos := classify.MatchIndex(text, names); pos >= 0 {
			hits = append(hits, hit{id: id, pos: pos})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.id)
	}
	return out
}
