package identifiers

import (
	"fmt"

	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/marker"
)

// Definition is one identifier declared by an id or id-line block.
type Definition struct {
	ID           string
	Parsed       ID
	Block        *marker.Block
	Line         int
	Priority     *int
	TaskComplete *bool
	Artifact     string
	// Covers lists downstream template kinds expected to reference this ID.
	Covers []string
	ToCode bool
}

// Reference is one identifier cited by an id-ref or ref-line block.
type Reference struct {
	ID           string
	Parsed       ID
	Block        *marker.Block
	Line         int
	Artifact     string
	TaskComplete *bool
}

// Extraction is the per-artifact identifier inventory.
type Extraction struct {
	Definitions []Definition
	References  []Reference
	Issues      []diagnostics.Issue
}

// AttributeSource resolves the effective attributes of an artifact block,
// usually by merging the matched template block.
type AttributeSource func(*marker.Block) marker.Attributes

// Options configure Extract.
type Options struct {
	Artifact   string
	Attributes AttributeSource
}

// Extract walks blocks in document order. Each definition block yields at
// most one Definition; each reference token yields one Reference. A second
// definition of the same ID in the artifact is an error on its own line.
func Extract(blocks []*marker.Block, opts Options) Extraction {
	attrsOf := opts.Attributes
	if attrsOf == nil {
		attrsOf = func(b *marker.Block) marker.Attributes { return b.Attributes }
	}

	var out Extraction
	seen := make(map[string]int)

	marker.Walk(blocks, func(b *marker.Block) bool {
		switch {
		case b.Kind.DefinesIdentifier():
			def, ok := definitionOf(b, opts.Artifact, &out.Issues)
			if !ok {
				return true
			}
			attrs := attrsOf(b)
			def.Covers = append([]string(nil), attrs.Covers...)
			def.ToCode = attrs.ToCode
			if first, dup := seen[def.ID]; dup {
				out.Issues = append(out.Issues, diagnostics.Errorf(diagnostics.CodeIdentifierDuplicate, def.Line, b.Path,
					"duplicate identifier %q (first defined at line %d)", def.ID, first))
				return true
			}
			seen[def.ID] = def.Line
			out.Definitions = append(out.Definitions, def)
		case b.Kind.ReferencesIdentifiers():
			out.References = append(out.References, referencesOf(b, opts.Artifact, &out.Issues)...)
		}
		return true
	})
	return out
}

func definitionOf(b *marker.Block, artifact string, issues *[]diagnostics.Issue) (Definition, bool) {
	for _, line := range b.OwnLines() {
		info := ScanLine(line.Text)
		if info.Definition == "" {
			continue
		}
		parsed, err := Parse(info.Definition)
		if err != nil {
			*issues = append(*issues, malformed(info.Definition, line.Number, b.Path))
			return Definition{}, false
		}
		def := Definition{
			ID:       parsed.Raw,
			Parsed:   parsed,
			Block:    b,
			Line:     line.Number,
			Priority: info.Priority,
			Artifact: artifact,
		}
		if info.Checkbox {
			done := info.TaskComplete
			def.TaskComplete = &done
		}
		return def, true
	}
	return Definition{}, false
}

func referencesOf(b *marker.Block, artifact string, issues *[]diagnostics.Issue) []Reference {
	var refs []Reference
	for _, line := range b.OwnLines() {
		info := ScanLine(line.Text)
		for _, token := range info.Tokens {
			parsed, err := Parse(token)
			if err != nil {
				*issues = append(*issues, malformed(token, line.Number, b.Path))
				continue
			}
			ref := Reference{
				ID:       parsed.Raw,
				Parsed:   parsed,
				Block:    b,
				Line:     line.Number,
				Artifact: artifact,
			}
			if info.Checkbox {
				done := info.TaskComplete
				ref.TaskComplete = &done
			}
			refs = append(refs, ref)
		}
	}
	return refs
}

func malformed(token string, line int, path string) diagnostics.Issue {
	msg := fmt.Sprintf("malformed identifier %q; expected {system}-{kind}-{slug}[-v{n}]", token)
	if suggestion := Suggest(token); suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
	}
	return diagnostics.Issue{
		Severity: diagnostics.SeverityError,
		Code:     diagnostics.CodeIdentifierMalformed,
		Message:  msg,
		Line:     line,
		Path:     path,
	}
}
