package transcript

import (
	"strings"
	"time"
)

// Authors other than role ids.
const (
	AuthorUser         = "user"
	AuthorOrchestrator = "orchestrator"
)

// LaneMain is the shared user/orchestrator lane.
const LaneMain = "main"

const consultPrefix = "consult:"

// Event is one immutable transcript entry. The JSON field names match the
// feed consumed by the web and terminal clients.
type Event struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conv_id"`
	Author         string    `json:"role"`
	Text           string    `json:"text"`
	Timestamp      time.Time `json:"ts"`
	Lane           string    `json:"lane"`
}

// ConsultLane returns the private lane of a role.
func ConsultLane(roleID string) string {
	return consultPrefix + roleID
}

// LaneRole returns the role id of a consult lane.
func LaneRole(lane string) (string, bool) {
	return strings.CutPrefix(lane, consultPrefix)
}

// IsMain reports whether the event belongs to the main lane.
func (e Event) IsMain() bool {
	return e.Lane == LaneMain
}
