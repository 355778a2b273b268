// Package roles holds the descriptors of the consultable expert roles and
// the registries that serve them to the orchestrator.
package roles

import "slices"

// OrchestratorID is the id of the orchestrator persona.
const OrchestratorID = "orchestrator"

// Role describes one consultable expert. Roles are immutable once loaded.
type Role struct {
	ID           string `yaml:"id" json:"id"`
	Title        string `yaml:"title" json:"title"`
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt"`
	// Provider is a binding such as "openai:gpt-4o-mini"; empty uses the
	// configured default.
	Provider string `yaml:"provider,omitempty" json:"provider,omitempty"`
	// Aliases are extra names the role answers to in messages.
	Aliases []string `yaml:"aliases,omitempty" json:"aliases,omitempty"`
	// Requires lists roles whose input this role depends on.
	Requires []string `yaml:"requires,omitempty" json:"requires,omitempty"`
	// Auxiliary roles join opinion requests only when named.
	Auxiliary bool `yaml:"auxiliary,omitempty" json:"auxiliary,omitempty"`
}

// Names returns every name the role can be mentioned by: its id, "@id",
// its title and its aliases.
func (r Role) Names() []string {
	names := []string{"@" + r.ID, r.ID}
	if r.Title != "" && r.Title != r.ID {
		names = append(names, r.Title)
	}
	return append(names, r.Aliases...)
}

// Label returns the title, or the id when the role has none.
func (r Role) Label() string {
	if r.Title != "" {
		return r.Title
	}
	return r.ID
}

// Registry serves role descriptors. Implementations must be safe for
// concurrent use and return values the caller may keep.
type Registry interface {
	ByID(id string) (Role, bool)
	AllIDs() []string
	Recommended() []string
	Orchestrator() Role
}

// MissingPrerequisites returns the declared prerequisites of role that are
// not in selected, in declaration order.
func MissingPrerequisites(role Role, selected []string) []string {
	var missing []string
	for _, req := range role.Requires {
		if !slices.Contains(selected, req) {
			missing = append(missing, req)
		}
	}
	return missing
}
