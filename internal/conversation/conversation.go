package conversation

import (
	"slices"
	"time"
)

// History bounds.
const (
	AckHistoryLimit    = 5
	UsedTemplatesLimit = 8
	RecentTextsLimit   = 8
)

// Anchor is the first substantive response of a role in a conversation.
type Anchor struct {
	Response string
	Headline string
}

// Conversation is the mutable state of one conversation. Outside of
// Registry.Do it must be treated as read-only.
type Conversation struct {
	ID      string
	Created time.Time

	members []string

	// OrchestratorOnly is set while the orchestrator answers on its own.
	OrchestratorOnly bool
	// AckHistory holds the last acknowledgement lines shown to the user.
	AckHistory *Ring
	// UsedTemplates holds recently rendered acknowledgement and prompt texts.
	UsedTemplates *BoundedSet
	// AckRotation is the next template index per topic category.
	AckRotation map[string]int
	// LastConsulted lists the roles consulted by the latest completed turn.
	LastConsulted []string
	// PendingContinuation is the id of the continuation question awaiting an
	// answer, zero when none.
	PendingContinuation int64
	// LastOptions are the options of the latest "list N options" answer.
	LastOptions []string
	// LastCategory is the topic category of the latest consulted request.
	LastCategory string

	recent  map[string]*Ring
	anchors map[string]Anchor

	sem chan struct{}
}

// New creates an empty conversation.
func New(id string, now time.Time) *Conversation {
	return &Conversation{
		ID:            id,
		Created:       now,
		AckHistory:    NewRing(AckHistoryLimit),
		UsedTemplates: NewBoundedSet(UsedTemplatesLimit),
		AckRotation:   make(map[string]int),
		recent:        make(map[string]*Ring),
		anchors:       make(map[string]Anchor),
		sem:           make(chan struct{}, 1),
	}
}

// Add appends roleID to the members unless already present. It reports
// whether the role was added.
func (c *Conversation) Add(roleID string) bool {
	if slices.Contains(c.members, roleID) {
		return false
	}
	c.members = append(c.members, roleID)
	return true
}

// Members returns the members in insertion order.
func (c *Conversation) Members() []string {
	return slices.Clone(c.members)
}

// IsMember reports whether roleID is a member.
func (c *Conversation) IsMember(roleID string) bool {
	return slices.Contains(c.members, roleID)
}

// Anchor returns the anchor of a role.
func (c *Conversation) Anchor(roleID string) (Anchor, bool) {
	a, ok := c.anchors[roleID]
	return a, ok
}

// SetAnchor records the anchor of a role unless one already exists. It
// reports whether the anchor was stored.
func (c *Conversation) SetAnchor(roleID string, a Anchor) bool {
	if _, ok := c.anchors[roleID]; ok {
		return false
	}
	c.anchors[roleID] = a
	return true
}

// Remember records text in the bounded recent-text history of a lane.
func (c *Conversation) Remember(lane, text string) {
	r, ok := c.recent[lane]
	if !ok {
		r = NewRing(RecentTextsLimit)
		c.recent[lane] = r
	}
	r.Push(text)
}

// Recent returns the recent texts of a lane, oldest first.
func (c *Conversation) Recent(lane string) []string {
	if r, ok := c.recent[lane]; ok {
		return r.Items()
	}
	return nil
}
