package roles

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/council/internal/errors"
)

// fileFormat is the on-disk YAML layout of a role definition file.
type fileFormat struct {
	Orchestrator *Role    `yaml:"orchestrator,omitempty"`
	Recommended  []string `yaml:"recommended,omitempty"`
	Roles        []Role   `yaml:"roles"`
}

// Parse decodes a YAML role definition file. A missing orchestrator uses
// DefaultOrchestrator. Unknown fields are rejected.
func Parse(data []byte) (*Set, error) {
	var f fileFormat
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, errors.NewRoleError("decode role file", fmt.Errorf("%w: %v", errors.ErrRoleFileInvalid, err))
	}
	if len(f.Roles) == 0 {
		return nil, errors.NewRoleError("role file defines no roles", errors.ErrRoleFileInvalid)
	}

	orchestrator := DefaultOrchestrator
	if f.Orchestrator != nil {
		orchestrator = *f.Orchestrator
	}
	set, err := NewSet(orchestrator, f.Roles, f.Recommended)
	if err != nil {
		return nil, errors.NewRoleError("validate role file", fmt.Errorf("%w: %v", errors.ErrRoleFileInvalid, err))
	}
	return set, nil
}

// LoadFile reads and parses a role definition file.
func LoadFile(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewRoleError("read role file", err).WithPath(path)
	}
	set, err := Parse(data)
	if err != nil {
		var roleErr *errors.RoleError
		if errors.As(err, &roleErr) {
			return nil, roleErr.WithPath(path)
		}
		return nil, err
	}
	return set, nil
}

// Marshal encodes a set in the role file format.
func Marshal(s *Set) ([]byte, error) {
	orch := s.Orchestrator()
	f := fileFormat{
		Orchestrator: &orch,
		Recommended:  s.Recommended(),
		Roles:        s.Roles(),
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(f); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
