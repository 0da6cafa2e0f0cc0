package importer

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/flagkeep/flagkeep/pkg/model"
)

// State is the desired state of an instance.
type State struct {
	Projects []ProjectState `yaml:"projects,omitempty"`
	Roles    []RoleState    `yaml:"roles,omitempty"`
	Groups   []GroupState   `yaml:"groups,omitempty"`
	Segments []SegmentState `yaml:"segments,omitempty"`
}

type ProjectState struct {
	ID                string      `yaml:"id"`
	Name              string      `yaml:"name"`
	Description       string      `yaml:"description,omitempty"`
	Mode              *model.Mode `yaml:"mode,omitempty"`
	DefaultStickiness string      `yaml:"defaultStickiness,omitempty"`
}

type RoleState struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description,omitempty"`
	Type        string            `yaml:"type"`
	Permissions []PermissionState `yaml:"permissions,omitempty"`
}

type PermissionState struct {
	Name        string  `yaml:"name"`
	Environment *string `yaml:"environment,omitempty"`
}

// GroupState references its root role by name.
type GroupState struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	MappingsSSO []string `yaml:"mappingsSSO,omitempty"`
	RootRole    string   `yaml:"rootRole,omitempty"`
}

type SegmentState struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description,omitempty"`
	Project     string             `yaml:"project,omitempty"`
	Constraints []model.Constraint `yaml:"constraints,omitempty"`
}

// Parse reads a state document. Unknown keys are rejected.
func Parse(r io.Reader) (*State, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var state State
	if err := dec.Decode(&state); err != nil {
		if err == io.EOF {
			return &state, nil
		}
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}
	if err := state.check(); err != nil {
		return nil, err
	}
	return &state, nil
}

// check rejects documents naming the same entity twice.
func (s *State) check() error {
	seen := map[string]bool{}
	dup := func(kind, key string) error {
		k := kind + ":" + key
		if seen[k] {
			return fmt.Errorf("%s %q is listed more than once", kind, key)
		}
		seen[k] = true
		return nil
	}

	for _, p := range s.Projects {
		if err := dup("project", p.ID); err != nil {
			return err
		}
	}
	for _, r := range s.Roles {
		if err := dup("role", r.Name); err != nil {
			return err
		}
	}
	for _, g := range s.Groups {
		if err := dup("group", g.Name); err != nil {
			return err
		}
	}
	for _, seg := range s.Segments {
		if err := dup("segment", seg.Name); err != nil {
			return err
		}
	}
	return nil
}

// Marshal renders the state as YAML.
func (s *State) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
