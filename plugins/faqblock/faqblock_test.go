package faqblock

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-cms/pkg/simplecms/block"
	"github.com/tendant/simple-cms/pkg/simplecms/blueprint"
	"github.com/tendant/simple-cms/pkg/simplecms/plugin"
)

func registry(t *testing.T) *plugin.Registry {
	t.Helper()
	r := plugin.NewRegistry()
	require.NoError(t, r.Register(Plugin()))
	return r
}

func TestPlugin_Files(t *testing.T) {
	r := registry(t)

	for _, name := range []string{"blocks/faq", "blocks/faqItem"} {
		bp, ok := r.Blueprint(name)
		require.True(t, ok, name)
		_, err := bp.Read()
		require.NoError(t, err, name)

		snippet, ok := r.Snippet(name)
		require.True(t, ok, name)
		_, err = snippet.Read()
		require.NoError(t, err, name)
	}

	js, err := r.PanelScripts()
	require.NoError(t, err)
	assert.Contains(t, string(js), `panel.plugin("your-project/faq-block"`)
	assert.Contains(t, string(js), "update({ question: $event })")
	assert.Contains(t, string(js), "update({ answer: $event })")
}

func TestPlugin_Blueprints(t *testing.T) {
	loader := blueprint.NewLoader(afero.NewMemMapFs(), "", registry(t), nil)

	faq, err := loader.Load("blocks/faq")
	require.NoError(t, err)
	assert.Equal(t, "FAQ", faq.Title)
	items, ok := faq.Field("blocks")
	require.True(t, ok)
	assert.Equal(t, []string{BlockItem}, items.Fieldsets)

	item, err := loader.Load("blocks/faqItem")
	require.NoError(t, err)
	question, ok := item.Field("question")
	require.True(t, ok)
	assert.Equal(t, "text", question.Type)
	answer, ok := item.Field("answer")
	require.True(t, ok)
	assert.Equal(t, "writer", answer.Type)
}

func TestPlugin_DefaultFieldsetsResolve(t *testing.T) {
	loader := blueprint.NewLoader(afero.NewMemMapFs(), "", registry(t), nil)

	groups, err := block.Resolve(block.DefaultGroups(), loader)
	require.NoError(t, err)

	faq := groups[0].Fieldsets[0]
	assert.Equal(t, BlockFAQ, faq.Type)
	require.Len(t, faq.Nested["blocks"], 1)
	assert.Equal(t, "Question", faq.Nested["blocks"][0].Name)
}

func TestPlugin_EditorPatches(t *testing.T) {
	item := block.New(BlockItem, nil)
	item.Update(map[string]any{"question": "What is Kirby?"})
	item.Update(map[string]any{"answer": "<p>A file based CMS.</p>"})

	faq := block.New(BlockFAQ, map[string]any{"headline": "FAQ", "blocks": block.Blocks{item}})
	children, err := faq.Children("blocks")
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "What is Kirby?", children[0].String("question"))
	assert.Equal(t, "<p>A file based CMS.</p>", children[0].String("answer"))
}
