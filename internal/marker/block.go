package marker

import "strings"

// Line is one numbered line of document text.
type Line struct {
	Number int
	Text   string
}

// Block is a parsed span between a marker pair, or the single line of a
// self-contained marker.
type Block struct {
	Kind       Kind
	Name       string
	Attributes Attributes
	StartLine  int
	EndLine    int
	// Depth is zero for top-level blocks.
	Depth int
	// Path is the slash-joined chain of keys from the root, e.g. "id:login/paragraph".
	Path     string
	Content  []Line
	Children []*Block
	Open     *Marker
	Close    *Marker
}

// Key returns the (kind, name) pair used for pairing and matching.
func (b *Block) Key() Key {
	return Key{Kind: b.Kind, Name: b.Name}
}

// RawContent is the text strictly between the markers, nested markers included.
func (b *Block) RawContent() string {
	if b == nil || len(b.Content) == 0 {
		return ""
	}
	parts := make([]string, len(b.Content))
	for i, line := range b.Content {
		parts[i] = line.Text
	}
	return strings.Join(parts, "\n")
}

// OwnLines returns content lines that are not covered by any child block.
func (b *Block) OwnLines() []Line {
	if b == nil {
		return nil
	}
	if len(b.Children) == 0 {
		return b.Content
	}
	out := make([]Line, 0, len(b.Content))
	for _, line := range b.Content {
		if b.coveredByChild(line.Number) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// OwnText joins OwnLines with newlines.
func (b *Block) OwnText() string {
	lines := b.OwnLines()
	parts := make([]string, len(lines))
	for i, line := range lines {
		parts[i] = line.Text
	}
	return strings.Join(parts, "\n")
}

func (b *Block) coveredByChild(line int) bool {
	for _, child := range b.Children {
		if line >= child.StartLine && line <= child.EndLine {
			return true
		}
	}
	return false
}

// Contains reports whether other lies strictly inside b's line range.
func (b *Block) Contains(other *Block) bool {
	return other.StartLine > b.StartLine && other.EndLine < b.EndLine
}

// Walk visits blocks depth-first in document order. Returning false from fn
// skips the block's children.
func Walk(blocks []*Block, fn func(*Block) bool) {
	for _, block := range blocks {
		if block == nil {
			continue
		}
		if fn(block) {
			Walk(block.Children, fn)
		}
	}
}

// Collect returns every block, at any depth, for which keep returns true.
func Collect(blocks []*Block, keep func(*Block) bool) []*Block {
	var out []*Block
	Walk(blocks, func(b *Block) bool {
		if keep(b) {
			out = append(out, b)
		}
		return true
	})
	return out
}

func joinPath(parent string, key Key) string {
	if parent == "" {
		return key.String()
	}
	return parent + "/" + key.String()
}
