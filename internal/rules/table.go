package rules

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-docmark/internal/diagnostics"
)

var separatorCell = regexp.MustCompile(`^:?-+:?$`)

func validateTable(in Input) []diagnostics.Issue {
	b := in.Block
	rows := nonBlank(b)
	if len(rows) < 3 {
		return []diagnostics.Issue{contentError(b, 0, "table %s needs a header row, a separator row and at least one data row", b.Key())}
	}

	var issues []diagnostics.Issue
	header := splitRow(rows[0].Text)
	if len(header) == 0 {
		issues = append(issues, contentError(b, rows[0].Number, "table header row has no columns"))
	}
	separator := splitRow(rows[1].Text)
	if !isSeparatorRow(separator) {
		issues = append(issues, contentError(b, rows[1].Number, "table separator row must look like | --- | --- |"))
	}
	for _, row := range rows[1:] {
		if cells := splitRow(row.Text); len(cells) != len(header) {
			issues = append(issues, contentError(b, row.Number, "table row has %d columns, header has %d", len(cells), len(header)))
		}
	}
	if len(issues) == 0 && scanMarkdown(b.OwnText()).tables == 0 {
		issues = append(issues, contentError(b, 0, "table %s is not a valid pipe table", b.Key()))
	}
	return issues
}

// splitRow splits a pipe row into trimmed cells. Escaped pipes stay in the cell.
func splitRow(line string) []string {
	line = strings.TrimSpace(line)
	if !strings.Contains(line, "|") {
		return nil
	}
	line = strings.TrimPrefix(line, "|")
	if strings.HasSuffix(line, "|") && !strings.HasSuffix(line, `\|`) {
		line = strings.TrimSuffix(line, "|")
	}

	var (
		cells []string
		cell  strings.Builder
	)
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '\\' && i+1 < len(line) && line[i+1] == '|':
			cell.WriteString(`\|`)
			i++
		case line[i] == '|':
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteByte(line[i])
		}
	}
	return append(cells, strings.TrimSpace(cell.String()))
}

func isSeparatorRow(cells []string) bool {
	if len(cells) == 0 {
		return false
	}
	for _, cell := range cells {
		if !separatorCell.MatchString(cell) {
			return false
		}
	}
	return true
}
