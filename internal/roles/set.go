package roles

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/council/internal/errors"
)

// Set is an immutable, validated collection of roles. It implements Registry.
type Set struct {
	roles        []Role
	byID         map[string]Role
	orchestrator Role
	recommended  []string
}

// NewSet validates roles and builds a Set. Recommended ids that are unknown
// are rejected; an empty recommended list uses the role order.
func NewSet(orchestrator Role, roles []Role, recommended []string) (*Set, error) {
	if orchestrator.ID == "" {
		orchestrator.ID = OrchestratorID
	}
	s := &Set{
		byID:         make(map[string]Role, len(roles)),
		orchestrator: orchestrator,
	}
	for i, r := range roles {
		r.ID = strings.TrimSpace(r.ID)
		if r.ID == "" {
			return nil, errors.NewValidationError(fmt.Sprintf("role #%d has no id", i+1)).WithField("roles.id")
		}
		if r.ID == orchestrator.ID {
			return nil, errors.NewValidationError("role id is reserved for the orchestrator").WithField("roles.id").WithValue(r.ID)
		}
		if _, dup := s.byID[r.ID]; dup {
			return nil, errors.NewValidationError("duplicate role id").WithField("roles.id").WithValue(r.ID)
		}
		s.byID[r.ID] = r
		s.roles = append(s.roles, r)
	}
	for _, r := range s.roles {
		for _, req := range r.Requires {
			if _, ok := s.byID[req]; !ok {
				return nil, errors.NewValidationError(fmt.Sprintf("role %q requires unknown role", r.ID)).WithField("roles.requires").WithValue(req)
			}
		}
	}
	for _, id := range recommended {
		if _, ok := s.byID[id]; !ok {
			return nil, errors.NewValidationError("recommended role is not defined").WithField("recommended").WithValue(id)
		}
	}
	if len(recommended) == 0 {
		recommended = s.AllIDs()
	}
	s.recommended = slices.Clone(recommended)
	return s, nil
}

// ByID returns the role with the given id.
func (s *Set) ByID(id string) (Role, bool) {
	r, ok := s.byID[id]
	return r, ok
}

// AllIDs returns the role ids in definition order.
func (s *Set) AllIDs() []string {
	ids := make([]string, len(s.roles))
	for i, r := range s.roles {
		ids[i] = r.ID
	}
	return ids
}

// Roles returns the roles in definition order.
func (s *Set) Roles() []Role {
	return slices.Clone(s.roles)
}

// Recommended returns the fixed recommended list.
func (s *Set) Recommended() []string {
	return slices.Clone(s.recommended)
}

// Orchestrator returns the orchestrator persona.
func (s *Set) Orchestrator() Role {
	return s.orchestrator
}

// Len returns the number of roles, excluding the orchestrator.
func (s *Set) Len() int {
	return len(s.roles)
}
