package block

import (
	"errors"
	"fmt"

	"github.com/tendant/simple-cms/pkg/simplecms/blueprint"
)

// ErrInvalidGroup indicates a malformed fieldset group.
var ErrInvalidGroup = errors.New("invalid fieldset group")

// GroupType is the only group type understood by the editor.
const GroupType = "group"

// Group offers a labelled set of block types to editors.
type Group struct {
	Name      string   `json:"name" yaml:"-"`
	Label     string   `json:"label" yaml:"label"`
	Type      string   `json:"type" yaml:"type"`
	Fieldsets []string `json:"fieldsets" yaml:"fieldsets"`
}

// DefaultGroups returns the custom and kirby groups of a stock site.
func DefaultGroups() []Group {
	return []Group{
		{
			Name:      "custom",
			Label:     "Custom blocks",
			Type:      GroupType,
			Fieldsets: []string{"faq"},
		},
		{
			Name:      "kirby",
			Label:     "Kirby blocks",
			Type:      GroupType,
			Fieldsets: []string{"heading", "text", "list", "quote", "image", "video", "code", "markdown"},
		},
	}
}

// Loader finds blueprints by name.
type Loader interface {
	Load(name string) (*blueprint.Blueprint, error)
}

// Fieldset is a block type with its blueprint. Nested lists the block types
// offered by the blueprint's own blocks fields.
type Fieldset struct {
	Type      string                `json:"type"`
	Name      string                `json:"name"`
	Icon      string                `json:"icon,omitempty"`
	Blueprint *blueprint.Blueprint  `json:"blueprint"`
	Nested    map[string][]Fieldset `json:"nested,omitempty"`
}

// ResolvedGroup is a Group whose fieldsets have been looked up.
type ResolvedGroup struct {
	Name      string     `json:"name"`
	Label     string     `json:"label"`
	Type      string     `json:"type"`
	Fieldsets []Fieldset `json:"fieldsets"`
}

// Validate checks the group's shape without loading blueprints.
func (g Group) Validate() error {
	if g.Type != GroupType {
		return fmt.Errorf("%w: %s has type %q, want %q", ErrInvalidGroup, g.Name, g.Type, GroupType)
	}
	if len(g.Fieldsets) == 0 {
		return fmt.Errorf("%w: %s has no fieldsets", ErrInvalidGroup, g.Name)
	}
	return nil
}

// Resolve loads the blueprint blocks/<type> of every fieldset in groups,
// keeping group and fieldset order.
func Resolve(groups []Group, loader Loader) ([]ResolvedGroup, error) {
	resolved := make([]ResolvedGroup, 0, len(groups))
	for _, g := range groups {
		if err := g.Validate(); err != nil {
			return nil, err
		}

		rg := ResolvedGroup{Name: g.Name, Label: g.Label, Type: g.Type}
		for _, typ := range g.Fieldsets {
			fs, err := resolveFieldset(typ, loader, map[string]bool{})
			if err != nil {
				return nil, fmt.Errorf("group %s: %w", g.Name, err)
			}
			rg.Fieldsets = append(rg.Fieldsets, fs)
		}
		resolved = append(resolved, rg)
	}
	return resolved, nil
}

func resolveFieldset(typ string, loader Loader, seen map[string]bool) (Fieldset, error) {
	bp, err := loader.Load("blocks/" + typ)
	if err != nil {
		return Fieldset{}, fmt.Errorf("fieldset %s: %w", typ, err)
	}

	fs := Fieldset{Type: typ, Name: bp.Title, Icon: bp.Icon, Blueprint: bp}
	if fs.Name == "" {
		fs.Name = typ
	}

	seen[typ] = true
	defer delete(seen, typ)

	for _, field := range bp.Fields {
		if field.Type != "blocks" || len(field.Fieldsets) == 0 {
			continue
		}
		for _, nestedType := range field.Fieldsets {
			if seen[nestedType] {
				continue
			}
			nested, err := resolveFieldset(nestedType, loader, seen)
			if err != nil {
				return Fieldset{}, fmt.Errorf("fieldset %s: field %s: %w", typ, field.Name, err)
			}
			if fs.Nested == nil {
				fs.Nested = make(map[string][]Fieldset)
			}
			fs.Nested[field.Name] = append(fs.Nested[field.Name], nested)
		}
	}
	return fs, nil
}
