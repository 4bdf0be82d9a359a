package marker

import (
	"github.com/goliatone/go-docmark/internal/diagnostics"
)

// Document is the result of parsing one text.
type Document struct {
	Blocks []*Block
	Issues []diagnostics.Issue
	Stream *Stream
}

// Parse tokenizes text and builds the block tree with an explicit stack.
// Unbalanced or unclosed markers are fatal and return a *ParseError; the
// line-level issues collected so far are still returned.
func Parse(text string, opts Options) (*Document, error) {
	stream := Tokenize(text, opts)
	blocks, err := Build(stream)
	if err != nil {
		return &Document{Issues: stream.Issues, Stream: stream}, err
	}
	return &Document{
		Blocks: blocks,
		Issues: stream.Issues,
		Stream: stream,
	}, nil
}

// Build consumes the marker stream. Children are appended in opening order,
// which is document order.
func Build(stream *Stream) ([]*Block, error) {
	var (
		roots []*Block
		stack []*Block
	)

	attach := func(block *Block) {
		if len(stack) == 0 {
			block.Path = joinPath("", block.Key())
			roots = append(roots, block)
			return
		}
		parent := stack[len(stack)-1]
		block.Depth = parent.Depth + 1
		block.Path = joinPath(parent.Path, block.Key())
		parent.Children = append(parent.Children, block)
	}

	for i := range stream.Markers {
		m := stream.Markers[i]

		if m.Role == RoleSelf {
			open := m
			block := &Block{
				Kind:       m.Kind,
				Name:       m.Name,
				Attributes: m.Attributes.Clone(),
				StartLine:  m.Line,
				EndLine:    m.Line,
				Open:       &open,
			}
			if m.Content != "" {
				block.Content = []Line{{Number: m.Line, Text: m.Content}}
			}
			attach(block)
			continue
		}

		if n := len(stack); n > 0 && stack[n-1].Key() == m.Key() {
			top := stack[n-1]
			closing := m
			closing.Closing = true
			top.Close = &closing
			top.EndLine = m.Line
			top.Content = contentBetween(stream, top.StartLine, top.EndLine)
			stack = stack[:n-1]
			continue
		}

		if inStack(stack, m.Key()) {
			return nil, unbalancedError(*stack[len(stack)-1].Open, m)
		}

		open := m
		block := &Block{
			Kind:       m.Kind,
			Name:       m.Name,
			Attributes: m.Attributes.Clone(),
			StartLine:  m.Line,
			Open:       &open,
		}
		attach(block)
		stack = append(stack, block)
	}

	if len(stack) > 0 {
		open := make([]Marker, 0, len(stack))
		for _, block := range stack {
			open = append(open, *block.Open)
		}
		return nil, unclosedError(open)
	}
	return roots, nil
}

func inStack(stack []*Block, key Key) bool {
	for _, block := range stack {
		if block.Key() == key {
			return true
		}
	}
	return false
}

func contentBetween(stream *Stream, start, end int) []Line {
	if end-start <= 1 {
		return nil
	}
	lines := make([]Line, 0, end-start-1)
	for n := start + 1; n < end; n++ {
		lines = append(lines, Line{Number: n, Text: stream.Text(n)})
	}
	return lines
}
