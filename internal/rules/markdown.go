package rules

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/marker"
)

// markdown only parses; nothing is rendered. goldmark parsers are safe for
// concurrent use once built.
var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

var (
	atxHeading   = regexp.MustCompile(`^ {0,3}(#{1,6})(?:[ \t]+|$)`)
	fenceOpening = regexp.MustCompile("^ {0,3}(`{3,}|~{3,})")
)

// outline is the subset of the goldmark tree the validators care about.
type outline struct {
	headings []int
	fenced   int
	tables   int
}

func scanMarkdown(src string) outline {
	source := []byte(src)
	doc := markdown.Parser().Parse(text.NewReader(source))

	var out outline
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			out.headings = append(out.headings, node.Level)
		case *ast.FencedCodeBlock:
			out.fenced++
		case *east.Table:
			out.tables++
		}
		return ast.WalkContinue, nil
	})
	return out
}

func validateHeading(in Input) []diagnostics.Issue {
	b := in.Block
	lines := nonBlank(b)
	md := scanMarkdown(b.OwnText())
	if len(md.headings) != 1 || len(lines) != 1 {
		return []diagnostics.Issue{contentError(b, 0, "heading %s must contain exactly one heading line, found %d", b.Key(), len(md.headings))}
	}
	m := atxHeading.FindStringSubmatch(lines[0].Text)
	if m == nil {
		return []diagnostics.Issue{contentError(b, lines[0].Number, "heading %s must use # through ###### syntax", b.Key())}
	}
	level := md.headings[0]
	if want := in.Attributes.Level; want > 0 && level != want {
		return []diagnostics.Issue{contentError(b, lines[0].Number, "heading %s has level %d, expected %d", b.Key(), level, want)}
	}
	return nil
}

func validateCode(in Input) []diagnostics.Issue {
	b := in.Block
	lines := b.OwnLines()
	if scanMarkdown(b.OwnText()).fenced == 0 {
		return []diagnostics.Issue{contentError(b, 0, "code %s has no fenced code region", b.Key())}
	}
	if open, ok := unclosedFence(lines); !ok {
		return []diagnostics.Issue{contentError(b, open, "code fence opened at line %d is not closed", open)}
	}
	return nil
}

// unclosedFence reports the opening line of the first fence without a
// matching closing fence. A closing fence uses the same character at least
// as many times as the opener.
func unclosedFence(lines []marker.Line) (int, bool) {
	for i := 0; i < len(lines); i++ {
		m := fenceOpening.FindStringSubmatch(lines[i].Text)
		if m == nil {
			continue
		}
		fence := m[1]
		closed := false
		for j := i + 1; j < len(lines); j++ {
			if isClosingFence(lines[j].Text, fence) {
				closed = true
				i = j
				break
			}
		}
		if !closed {
			return lines[i].Number, false
		}
	}
	return 0, true
}

func isClosingFence(line, fence string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	trimmed = strings.TrimRight(trimmed, " \t")
	if len(trimmed) < len(fence) {
		return false
	}
	return strings.Trim(trimmed, fence[:1]) == ""
}
