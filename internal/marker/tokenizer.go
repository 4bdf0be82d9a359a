package marker

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-docmark/internal/diagnostics"
)

var (
	// <!-- prefix:kind[:name] [key="value" ...] -->
	fullLinePattern = regexp.MustCompile(`^\s*<!--\s*([A-Za-z][A-Za-z0-9_]*):([A-Za-z][A-Za-z0-9-]*)(?::([A-Za-z0-9_.\-]+))?((?:\s+[A-Za-z_][A-Za-z0-9_]*="[^"]*")*)\s*-->\s*$`)
	// content <!-- prefix:kind[:name] [...] -->
	trailingPattern = regexp.MustCompile(`^(.*\S)\s*<!--\s*([A-Za-z][A-Za-z0-9_]*):([A-Za-z][A-Za-z0-9-]*)(?::([A-Za-z0-9_.\-]+))?((?:\s+[A-Za-z_][A-Za-z0-9_]*="[^"]*")*)\s*-->\s*$`)
	attributePattern = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)="([^"]*)"`)
	// a comment that starts like a marker, used to report near misses
	loosePattern = regexp.MustCompile(`^\s*<!--\s*([A-Za-z][A-Za-z0-9_]*):[A-Za-z]`)
)

// Role tells the parser how a marker participates in block construction.
type Role uint8

const (
	// RolePaired markers come in identical open/close pairs.
	RolePaired Role = iota
	// RoleSelf markers produce a single-line block on their own.
	RoleSelf
)

// Key identifies a block for pairing and matching.
type Key struct {
	Kind Kind
	Name string
}

func (k Key) String() string {
	if k.Name == "" {
		return string(k.Kind)
	}
	return string(k.Kind) + ":" + k.Name
}

// Marker is one recognised marker occurrence.
type Marker struct {
	Prefix     string
	Kind       Kind
	Name       string
	Attributes Attributes
	Role       Role
	Line       int
	Raw        string
	// Content is the text preceding a trailing self-contained marker.
	Content string
	// Closing is set by the parser on the second marker of a pair.
	Closing bool
}

// Key returns the (kind, name) pair of the marker.
func (m Marker) Key() Key {
	return Key{Kind: m.Kind, Name: m.Name}
}

// IsOpening reports whether the marker opens a paired block.
func (m Marker) IsOpening() bool {
	return m.Role == RolePaired && !m.Closing
}

// IsClosing reports whether the marker closes a paired block.
func (m Marker) IsClosing() bool {
	return m.Role == RolePaired && m.Closing
}

// Options tune tokenization.
type Options struct {
	// Prefix restricts markers to a single namespace ("cpt" in
	// <!-- cpt:id -->). Empty accepts any prefix.
	Prefix string
	// LineOffset is added to every reported line number.
	LineOffset int
}

// Stream is the tokenizer output: every line of the input plus the markers
// found on them and any line-level issues.
type Stream struct {
	Lines   []string
	Offset  int
	Markers []Marker
	Issues  []diagnostics.Issue
}

// LineNumber converts a zero-based index into a reported line number.
func (s *Stream) LineNumber(index int) int {
	return index + 1 + s.Offset
}

// Text returns the text of a reported line number.
func (s *Stream) Text(line int) string {
	idx := line - 1 - s.Offset
	if idx < 0 || idx >= len(s.Lines) {
		return ""
	}
	return s.Lines[idx]
}

// SplitLines splits text on \n and drops a trailing \r per line. A final
// newline does not produce an extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// Tokenize scans text line by line. Malformed markers are reported and then
// treated as plain content; tokenization never stops early.
func Tokenize(text string, opts Options) *Stream {
	stream := &Stream{
		Lines:  SplitLines(text),
		Offset: opts.LineOffset,
	}
	for idx, line := range stream.Lines {
		lineNo := stream.LineNumber(idx)
		if m := fullLinePattern.FindStringSubmatch(line); m != nil {
			if !prefixAccepted(opts.Prefix, m[1]) {
				continue
			}
			marker, ok := stream.build(lineNo, line, m[1], m[2], m[3], m[4])
			if !ok {
				continue
			}
			if marker.Role == RoleSelf {
				stream.Issues = append(stream.Issues, diagnostics.Warnf(diagnostics.CodeMarkerPlacement, lineNo, "",
					"self-contained marker %s has no content before it on the line", marker.Key()))
			}
			stream.Markers = append(stream.Markers, marker)
			continue
		}
		if m := trailingPattern.FindStringSubmatch(line); m != nil {
			if !prefixAccepted(opts.Prefix, m[2]) {
				continue
			}
			kind := Kind(m[3])
			if kind.Valid() && !kind.SelfContained() {
				stream.Issues = append(stream.Issues, diagnostics.Warnf(diagnostics.CodeMarkerPlacement, lineNo, "",
					"paired marker %s must be on its own line; treated as content", kind))
				continue
			}
			marker, ok := stream.build(lineNo, line, m[2], m[3], m[4], m[5])
			if !ok {
				continue
			}
			marker.Content = strings.TrimSpace(m[1])
			stream.Markers = append(stream.Markers, marker)
			continue
		}
		if m := loosePattern.FindStringSubmatch(line); m != nil && prefixAccepted(opts.Prefix, m[1]) {
			stream.Issues = append(stream.Issues, diagnostics.Errorf(diagnostics.CodeMarkerMalformed, lineNo, "",
				"malformed marker %q; line treated as content", strings.TrimSpace(line)))
		}
	}
	return stream
}

func (s *Stream) build(lineNo int, raw, prefix, kind, name, rawAttrs string) (Marker, bool) {
	k := Kind(kind)
	if !k.Valid() {
		s.Issues = append(s.Issues, diagnostics.Errorf(diagnostics.CodeMarkerUnknownKind, lineNo, "",
			"unrecognized marker kind %q; line treated as content", kind))
		return Marker{}, false
	}

	attrs, attrErrs := parseAttributes(splitAttributes(rawAttrs))
	for _, attrErr := range attrErrs {
		s.Issues = append(s.Issues, diagnostics.Warnf(diagnostics.CodeMarkerAttribute, lineNo, "",
			"marker %s: %s", Key{Kind: k, Name: name}, attrErr.Error()))
	}

	role := RolePaired
	if k.SelfContained() {
		role = RoleSelf
	}
	return Marker{
		Prefix:     prefix,
		Kind:       k,
		Name:       name,
		Attributes: attrs,
		Role:       role,
		Line:       lineNo,
		Raw:        raw,
	}, true
}

func splitAttributes(raw string) [][2]string {
	matches := attributePattern.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([][2]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, [2]string{m[1], m[2]})
	}
	return out
}

func prefixAccepted(want, got string) bool {
	return want == "" || want == got
}

// FormatMarker renders the canonical comment for a key, the inverse of
// Tokenize for markers without attributes.
func FormatMarker(prefix string, key Key) string {
	return fmt.Sprintf("<!-- %s:%s -->", prefix, key)
}
