package rules

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/marker"
)

// N. [ |x] - `pN` - description - `inst-id`
var instructionLine = regexp.MustCompile("^(\\d+)\\. \\[( |x)\\] - `(p\\d+)` - (.+) - `(inst-[a-z0-9]+(?:-[a-z0-9]+)*)`$")

// Instruction is one parsed step line.
type Instruction struct {
	Line        int
	Depth       int
	Number      int
	Done        bool
	Phase       string
	Description string
	ID          string
}

type instructionLevel struct {
	indent int
	next   int
}

// ParseInstructions parses the block's own lines into steps. Nesting follows
// indentation: a deeper indent opens a sub-step level, returning to a
// shallower indent must land on a level that is already open.
func ParseInstructions(b *marker.Block) ([]Instruction, []diagnostics.Issue) {
	var (
		steps  []Instruction
		issues []diagnostics.Issue
		levels []instructionLevel
	)
	seen := make(map[string]int)

	for _, line := range nonBlank(b) {
		raw := expandTabs(line.Text)
		indent := len(raw) - len(strings.TrimLeft(raw, " "))
		body := strings.TrimSpace(raw)

		m := instructionLine.FindStringSubmatch(body)
		if m == nil {
			issues = append(issues, contentError(b, line.Number,
				"instruction must match `N. [ ] - `pN` - description - `inst-id``, got %q", body))
			continue
		}

		switch {
		case len(levels) == 0 || indent > levels[len(levels)-1].indent:
			levels = append(levels, instructionLevel{indent: indent, next: 1})
		default:
			for len(levels) > 0 && indent < levels[len(levels)-1].indent {
				levels = levels[:len(levels)-1]
			}
			if len(levels) == 0 || levels[len(levels)-1].indent != indent {
				issues = append(issues, contentError(b, line.Number, "instruction indentation does not match any open step level"))
				levels = append(levels, instructionLevel{indent: indent, next: 1})
			}
		}

		level := &levels[len(levels)-1]
		number, _ := strconv.Atoi(m[1])
		if number != level.next {
			issues = append(issues, diagnostics.Warnf(diagnostics.CodeContent, line.Number, b.Path,
				"instruction step %d out of sequence, expected %d", number, level.next))
		}
		level.next = number + 1

		id := m[5]
		if first, dup := seen[id]; dup {
			issues = append(issues, contentError(b, line.Number, "instruction id %q already used at line %d", id, first))
		} else {
			seen[id] = line.Number
		}

		steps = append(steps, Instruction{
			Line:        line.Number,
			Depth:       len(levels) - 1,
			Number:      number,
			Done:        m[2] == "x",
			Phase:       m[3],
			Description: strings.TrimSpace(m[4]),
			ID:          id,
		})
	}
	return steps, issues
}

func validateInstructions(in Input) []diagnostics.Issue {
	steps, issues := ParseInstructions(in.Block)
	if len(steps) == 0 && len(issues) == 0 {
		issues = append(issues, contentError(in.Block, 0, "instructions %s has no steps", in.Block.Key()))
	}
	return issues
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", "    ")
}
