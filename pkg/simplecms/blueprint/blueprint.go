// Package blueprint parses YAML blueprints and finds them in the site
// folder, in plugins or among the core block blueprints.
package blueprint

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrNotFound indicates no blueprint exists under the requested name.
var ErrNotFound = errors.New("blueprint not found")

// Blueprint is the parsed form of a blueprint file. Only the keys needed to
// build content are interpreted, everything else stays in Raw.
type Blueprint struct {
	Name    string         `json:"name"`
	Title   string         `json:"title"`
	Icon    string         `json:"icon,omitempty"`
	Preview string         `json:"preview,omitempty"`
	Fields  []Field        `json:"fields"`
	Raw     map[string]any `json:"raw"`
}

// Field is one entry of a blueprint's fields, in file order.
type Field struct {
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Label     string         `json:"label,omitempty"`
	Default   any            `json:"default,omitempty"`
	Fieldsets []string       `json:"fieldsets,omitempty"`
	Raw       map[string]any `json:"raw,omitempty"`
}

// Field returns the field called name.
func (b *Blueprint) Field(name string) (Field, bool) {
	for _, f := range b.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Defaults returns the default value of every field that declares one.
func (b *Blueprint) Defaults() map[string]any {
	defaults := make(map[string]any)
	for _, f := range b.Fields {
		if f.Default != nil {
			defaults[f.Name] = f.Default
		}
	}
	return defaults
}

type document struct {
	Title   string    `yaml:"title"`
	Name    string    `yaml:"name"`
	Icon    string    `yaml:"icon"`
	Preview string    `yaml:"preview"`
	Fields  yaml.Node `yaml:"fields"`
}

type fieldDocument struct {
	Type      string    `yaml:"type"`
	Label     string    `yaml:"label"`
	Default   any       `yaml:"default"`
	Fieldsets yaml.Node `yaml:"fieldsets"`
}

// Parse parses the blueprint called name from data.
func Parse(name string, data []byte) (*Blueprint, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("blueprint %s: %w", name, err)
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("blueprint %s: %w", name, err)
	}

	bp := &Blueprint{
		Name:    name,
		Title:   doc.Title,
		Icon:    doc.Icon,
		Preview: doc.Preview,
		Raw:     raw,
	}
	if bp.Title == "" {
		bp.Title = doc.Name
	}

	fields, err := parseFields(doc.Fields)
	if err != nil {
		return nil, fmt.Errorf("blueprint %s: %w", name, err)
	}
	bp.Fields = fields
	return bp, nil
}

func parseFields(node yaml.Node) ([]Field, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: fields must be a mapping", node.Line)
	}

	fields := make([]Field, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		f := Field{Name: key.Value}

		// "fieldname: true" declares a field with all defaults
		if value.Kind == yaml.MappingNode {
			var fd fieldDocument
			if err := value.Decode(&fd); err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			if err := value.Decode(&f.Raw); err != nil {
				return nil, fmt.Errorf("field %s: %w", f.Name, err)
			}
			f.Type = fd.Type
			f.Label = fd.Label
			f.Default = fd.Default
			f.Fieldsets = fieldsetNames(fd.Fieldsets)
		}
		if f.Type == "" {
			f.Type = f.Name
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// fieldsetNames accepts both the list and the keyed mapping form.
func fieldsetNames(node yaml.Node) []string {
	var names []string
	switch node.Kind {
	case yaml.SequenceNode:
		for _, n := range node.Content {
			if n.Kind == yaml.ScalarNode {
				names = append(names, n.Value)
			}
		}
	case yaml.MappingNode:
		for i := 0; i < len(node.Content); i += 2 {
			names = append(names, node.Content[i].Value)
		}
	}
	return names
}
