// Package content holds the document model shared by the public pages and
// the admin editor: ordered content blocks, collections of items, slugs and
// the rule deciding which items a viewer may see.
package content

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind identifies how a block payload is interpreted.
type Kind string

const (
	Text  Kind = "text"
	Image Kind = "image"
	Video Kind = "video"
	GIF   Kind = "gif"
)

// Kinds lists every block kind in editor order.
var Kinds = []Kind{Text, Image, Video, GIF}

// ErrUnknownKind is returned when a block kind outside Kinds is parsed.
var ErrUnknownKind = errors.New("unknown block kind")

// ParseKind converts s to a Kind, rejecting anything outside the closed set.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Text, Image, Video, GIF:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, err := ParseKind(string(k))
	return err == nil
}

// UnmarshalText lets JSON and YAML decoding reject unknown kinds.
func (k *Kind) UnmarshalText(b []byte) error {
	parsed, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Label is the human name shown in the editor.
func (k Kind) Label() string {
	switch k {
	case Text:
		return "Text"
	case Image:
		return "Image URL"
	case Video:
		return "Video URL"
	case GIF:
		return "GIF URL"
	}
	return string(k)
}

// Block is one typed unit of an item body.
type Block struct {
	ID      string `json:"id" yaml:"id"`
	Kind    Kind   `json:"type" yaml:"type"`
	Payload string `json:"content" yaml:"content"`
}

// Direction is the way Move shifts a block.
type Direction int

const (
	Up Direction = iota
	Down
)

// newID is swapped in tests that need predictable block ids.
var newID = uuid.NewString

// Append returns blocks with a new block of kind holding payload at the end.
// A whitespace-only payload or an unknown kind leaves blocks unchanged.
func Append(blocks []Block, kind Kind, payload string) []Block {
	if strings.TrimSpace(payload) == "" || !kind.Valid() {
		return blocks
	}
	out := make([]Block, len(blocks), len(blocks)+1)
	copy(out, blocks)
	return append(out, Block{ID: newID(), Kind: kind, Payload: payload})
}

// Remove returns blocks without the block whose id matches.
func Remove(blocks []Block, id string) []Block {
	idx := indexOf(blocks, id)
	if idx < 0 {
		return blocks
	}
	out := make([]Block, 0, len(blocks)-1)
	out = append(out, blocks[:idx]...)
	return append(out, blocks[idx+1:]...)
}

// Move swaps the block whose id matches with its neighbour in dir.
// Moving past either end, or an unknown id, leaves blocks unchanged.
func Move(blocks []Block, id string, dir Direction) []Block {
	idx := indexOf(blocks, id)
	if idx < 0 {
		return blocks
	}
	target := idx + 1
	if dir == Up {
		target = idx - 1
	}
	if target < 0 || target >= len(blocks) {
		return blocks
	}
	out := make([]Block, len(blocks))
	copy(out, blocks)
	out[idx], out[target] = out[target], out[idx]
	return out
}

func indexOf(blocks []Block, id string) int {
	for i, b := range blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}
