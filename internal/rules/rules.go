// Package rules holds one content validator per block kind. Validators read
// a block and return issues; they never mutate it.
package rules

import (
	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/marker"
)

// Input is what a validator sees for one matched block.
type Input struct {
	Block *marker.Block
	// Template is the matched template block, nil for unmatched blocks.
	Template *marker.Block
	// Attributes are the effective attributes of the pair.
	Attributes marker.Attributes
}

// Func validates the content of one block.
type Func func(Input) []diagnostics.Issue

var validators = map[marker.Kind]Func{
	marker.KindParagraph:    validateParagraph,
	marker.KindFree:         validateFree,
	marker.KindList:         validateBulletList,
	marker.KindNumberedList: validateNumberedList,
	marker.KindTaskList:     validateTaskList,
	marker.KindTable:        validateTable,
	marker.KindHeading:      validateHeading,
	marker.KindCode:         validateCode,
	marker.KindInstructions: validateInstructions,
	marker.KindIDDefinition: validateDefinition,
	marker.KindIDLine:       validateDefinition,
	marker.KindIDReference:  validateReference,
	marker.KindRefLine:      validateReference,
}

// Lookup returns the validator registered for kind.
func Lookup(kind marker.Kind) (Func, bool) {
	fn, ok := validators[kind]
	return fn, ok
}

// Validate dispatches on the block kind.
func Validate(in Input) []diagnostics.Issue {
	if in.Block == nil {
		return nil
	}
	fn, ok := validators[in.Block.Kind]
	if !ok {
		return nil
	}
	return fn(in)
}

func contentError(b *marker.Block, line int, format string, args ...any) diagnostics.Issue {
	if line == 0 {
		line = b.StartLine
	}
	return diagnostics.Errorf(diagnostics.CodeContent, line, b.Path, format, args...)
}

// nonBlank returns the block's own lines that carry text.
func nonBlank(b *marker.Block) []marker.Line {
	lines := b.OwnLines()
	out := make([]marker.Line, 0, len(lines))
	for _, line := range lines {
		if isBlank(line.Text) {
			continue
		}
		out = append(out, line)
	}
	return out
}
