package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
	"github.com/tendant/simple-cms/pkg/simplecms/block"
	"gopkg.in/yaml.v3"
)

// SiteConfig holds the site options read from <site>/config.yml.
type SiteConfig struct {
	Debug  bool          `yaml:"debug"`
	Blocks BlocksOptions `yaml:"blocks"`
}

// BlocksOptions configures the blocks field.
type BlocksOptions struct {
	// Fieldsets keeps the order of the groups in the file.
	Fieldsets []block.Group
}

// UnmarshalYAML decodes the fieldsets mapping in document order.
func (o *BlocksOptions) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: blocks must be a mapping", node.Line)
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if key.Value != "fieldsets" {
			continue
		}
		if value.Kind != yaml.MappingNode {
			return fmt.Errorf("line %d: blocks.fieldsets must be a mapping of groups", value.Line)
		}

		groups := make([]block.Group, 0, len(value.Content)/2)
		for j := 0; j+1 < len(value.Content); j += 2 {
			var g block.Group
			if err := value.Content[j+1].Decode(&g); err != nil {
				return fmt.Errorf("fieldset group %s: %w", value.Content[j].Value, err)
			}
			g.Name = value.Content[j].Value
			groups = append(groups, g)
		}
		o.Fieldsets = groups
	}
	return nil
}

// MarshalYAML writes the fieldsets back as an ordered mapping.
func (o BlocksOptions) MarshalYAML() (any, error) {
	fieldsets := &yaml.Node{Kind: yaml.MappingNode}
	for _, g := range o.Fieldsets {
		var value yaml.Node
		if err := value.Encode(g); err != nil {
			return nil, err
		}
		fieldsets.Content = append(fieldsets.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: g.Name}, &value)
	}
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "fieldsets"},
			fieldsets,
		},
	}, nil
}

// DefaultSite returns the options of a stock site.
func DefaultSite() *SiteConfig {
	return &SiteConfig{
		Blocks: BlocksOptions{Fieldsets: block.DefaultGroups()},
	}
}

// LoadSite reads site options from path on fsys. A missing file, or one
// without fieldsets, yields the default groups.
func LoadSite(fsys afero.Fs, path string) (*SiteConfig, error) {
	if path == "" {
		return DefaultSite(), nil
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return DefaultSite(), nil
		}
		return nil, fmt.Errorf("failed to read site config: %w", err)
	}

	var site SiteConfig
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("failed to parse site config %s: %w", path, err)
	}
	if site.Blocks.Fieldsets == nil {
		site.Blocks.Fieldsets = block.DefaultGroups()
	}

	for _, g := range site.Blocks.Fieldsets {
		if err := g.Validate(); err != nil {
			return nil, fmt.Errorf("site config %s: %w", path, err)
		}
	}
	return &site, nil
}
