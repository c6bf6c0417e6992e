// Package block models block editor content and the fieldset groups that
// offer block types to editors.
package block

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"github.com/tendant/simple-cms/pkg/simplecms/blueprint"
)

// Block is one entry of a blocks field.
type Block struct {
	ID       uuid.UUID      `json:"id"`
	Type     string         `json:"type"`
	Content  map[string]any `json:"content"`
	IsHidden bool           `json:"isHidden"`
}

// Blocks is an ordered list of blocks as stored in a blocks field.
type Blocks []*Block

// New creates a block of the given type with a fresh ID.
func New(typ string, content map[string]any) *Block {
	if content == nil {
		content = make(map[string]any)
	}
	return &Block{ID: uuid.New(), Type: typ, Content: content}
}

// NewFromBlueprint creates a block whose content holds the blueprint's defaults.
func NewFromBlueprint(typ string, bp *blueprint.Blueprint) *Block {
	b := New(typ, nil)
	if bp != nil {
		maps.Copy(b.Content, bp.Defaults())
	}
	return b
}

// Update applies a partial content patch as sent by the editor. Keys in
// patch are set, keys with a nil value are removed.
func (b *Block) Update(patch map[string]any) {
	if b.Content == nil {
		b.Content = make(map[string]any)
	}
	for k, v := range patch {
		if v == nil {
			delete(b.Content, k)
			continue
		}
		b.Content[k] = v
	}
}

// String returns the string value of a content field, or "".
func (b *Block) String(field string) string {
	s, _ := b.Content[field].(string)
	return s
}

// Children decodes the nested blocks stored in field. The value may be a
// decoded JSON array, a Blocks value or a JSON string.
func (b *Block) Children(field string) (Blocks, error) {
	switch v := b.Content[field].(type) {
	case nil:
		return nil, nil
	case Blocks:
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		return Parse([]byte(v))
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("block %s: encode %s: %w", b.ID, field, err)
		}
		return Parse(data)
	}
}

// Visible returns the blocks that are not hidden.
func (bs Blocks) Visible() Blocks {
	out := make(Blocks, 0, len(bs))
	for _, b := range bs {
		if !b.IsHidden {
			out = append(out, b)
		}
	}
	return out
}

// Parse decodes a JSON array of blocks. Blocks without an ID get a new one.
func Parse(data []byte) (Blocks, error) {
	var blocks Blocks
	if err := json.Unmarshal(data, &blocks); err != nil {
		return nil, fmt.Errorf("parse blocks: %w", err)
	}
	for i, b := range blocks {
		if b == nil || b.Type == "" {
			return nil, fmt.Errorf("parse blocks: block %d has no type", i)
		}
		if b.ID == uuid.Nil {
			b.ID = uuid.New()
		}
		if b.Content == nil {
			b.Content = make(map[string]any)
		}
	}
	return blocks, nil
}

// Marshal encodes blocks as a JSON array.
func Marshal(blocks Blocks) ([]byte, error) {
	if blocks == nil {
		blocks = Blocks{}
	}
	return json.Marshal(blocks)
}
