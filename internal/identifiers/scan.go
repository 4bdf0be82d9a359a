package identifiers

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	definitionPattern = regexp.MustCompile("\\*\\*ID\\*\\*:\\s*`([^`]*)`")
	tokenPattern      = regexp.MustCompile("`([^`]+)`")
	priorityPattern   = regexp.MustCompile(`^p(\d+)$`)
	checkboxPattern   = regexp.MustCompile(`\[( |x|X)\](?:[^(\[]|$)`)
	listCheckbox      = regexp.MustCompile(`^\s*(?:[-*+]|\d+\.)\s+\[( |x|X)\]`)
)

// LineInfo is what a single content line says about identifiers.
type LineInfo struct {
	// Definition is the token after **ID**:, empty when the line has none.
	Definition string
	// Tokens are the backtick tokens that are not priority tokens.
	Tokens   []string
	Priority *int
	// Checkbox is set when the line carries a [ ] or [x] box.
	Checkbox     bool
	TaskComplete bool
	// InListItem is set when the checkbox opens a list item.
	InListItem bool
}

// ScanLine inspects one line of block content.
func ScanLine(line string) LineInfo {
	var info LineInfo
	if m := definitionPattern.FindStringSubmatch(line); m != nil {
		info.Definition = strings.TrimSpace(m[1])
	}
	for _, m := range tokenPattern.FindAllStringSubmatch(line, -1) {
		token := strings.TrimSpace(m[1])
		if p := priorityPattern.FindStringSubmatch(token); p != nil {
			if info.Priority == nil {
				if n, err := strconv.Atoi(p[1]); err == nil {
					info.Priority = &n
				}
			}
			continue
		}
		info.Tokens = append(info.Tokens, token)
	}
	if m := listCheckbox.FindStringSubmatch(line); m != nil {
		info.Checkbox = true
		info.InListItem = true
		info.TaskComplete = m[1] != " "
		return info
	}
	if m := checkboxPattern.FindStringSubmatch(stripCode(line)); m != nil {
		info.Checkbox = true
		info.TaskComplete = m[1] != " "
	}
	return info
}

// IsPriorityToken reports whether token is a `p<N>` priority tag.
func IsPriorityToken(token string) bool {
	return priorityPattern.MatchString(token)
}

// stripCode removes backtick spans so boxes inside code are not counted.
func stripCode(line string) string {
	return tokenPattern.ReplaceAllString(line, "")
}
