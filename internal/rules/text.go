package rules

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/marker"
)

var (
	bulletItem   = regexp.MustCompile(`^\s*[-*+]\s+\S`)
	numberedItem = regexp.MustCompile(`^\s*\d+\.\s+\S`)
	taskItem     = regexp.MustCompile(`^\s*[-*+]\s+\[[ xX]\]\s+\S`)
)

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func validateParagraph(in Input) []diagnostics.Issue {
	if strings.TrimSpace(in.Block.OwnText()) == "" {
		return []diagnostics.Issue{contentError(in.Block, 0, "paragraph %s is empty", in.Block.Key())}
	}
	return nil
}

func validateFree(Input) []diagnostics.Issue {
	return nil
}

func validateBulletList(in Input) []diagnostics.Issue {
	return validateListLines(in.Block, bulletItem, "bullet item (- text)")
}

func validateNumberedList(in Input) []diagnostics.Issue {
	return validateListLines(in.Block, numberedItem, "numbered item (1. text)")
}

func validateTaskList(in Input) []diagnostics.Issue {
	return validateListLines(in.Block, taskItem, "task item (- [ ] text)")
}

func validateListLines(b *marker.Block, pattern *regexp.Regexp, expected string) []diagnostics.Issue {
	lines := nonBlank(b)
	if len(lines) == 0 {
		return []diagnostics.Issue{contentError(b, 0, "%s has no items", b.Key())}
	}
	var issues []diagnostics.Issue
	for _, line := range lines {
		if !pattern.MatchString(line.Text) {
			issues = append(issues, contentError(b, line.Number, "expected a %s, got %q", expected, strings.TrimSpace(line.Text)))
		}
	}
	return issues
}
