// Package faqblock provides the FAQ block: a headline, an introduction and a
// list of question and answer items edited in place.
package faqblock

import (
	"embed"

	"github.com/spf13/afero"
	"github.com/tendant/simple-cms/pkg/simplecms/plugin"
)

// Name is the plugin's registration name.
const Name = "your-project/faq-block"

// Block types contributed by the plugin.
const (
	BlockFAQ  = "faq"
	BlockItem = "faqItem"
)

//go:embed blueprints snippets index.js
var files embed.FS

// Plugin returns the plugin registration backed by the embedded files.
func Plugin() plugin.Plugin {
	return plugin.Plugin{
		Name: Name,
		Fs:   afero.FromIOFS{FS: files},
		Blueprints: map[string]string{
			"blocks/faq":     "blueprints/blocks/faq.yml",
			"blocks/faqItem": "blueprints/blocks/faqItem.yml",
		},
		Snippets: map[string]string{
			"blocks/faq":     "snippets/blocks/faq.html",
			"blocks/faqItem": "snippets/blocks/faqItem.html",
		},
		PanelScript: "index.js",
	}
}
