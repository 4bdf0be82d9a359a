package templates

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/validation"
)

var (
	// ErrHeaderMissing is returned when a template has no metadata header.
	ErrHeaderMissing = errors.New("template: metadata header missing")
	// ErrHeaderInvalid is returned when the metadata header cannot be decoded or fails the schema.
	ErrHeaderInvalid = errors.New("template: metadata header invalid")
)

// Policy governs how the matcher treats artifact blocks absent from the template.
type Policy string

const (
	PolicyIgnore Policy = "ignore"
	PolicyWarn   Policy = "warn"
	PolicyError  Policy = "error"
)

// ParsePolicy accepts ignore, warn (or warning) and error.
func ParsePolicy(value string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "ignore":
		return PolicyIgnore, nil
	case "warn", "warning":
		return PolicyWarn, nil
	case "error":
		return PolicyError, nil
	default:
		return "", fmt.Errorf("unknown section policy %q", value)
	}
}

// Version is a major.minor template version. Major bumps are breaking,
// minor bumps are additive.
type Version struct {
	Major int
	Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compatible reports whether a template at v satisfies an artifact written
// for required: same major, equal or newer minor.
func (v Version) Compatible(required Version) bool {
	return v.Major == required.Major && v.Minor >= required.Minor
}

// ParseVersion parses "1" or "1.2".
func ParseVersion(value string) (Version, error) {
	value = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(value), "v"))
	if value == "" {
		return Version{}, errors.New("empty version")
	}
	majorPart, minorPart, hasMinor := strings.Cut(value, ".")
	major, err := strconv.Atoi(majorPart)
	if err != nil || major < 0 {
		return Version{}, fmt.Errorf("invalid major version %q", majorPart)
	}
	minor := 0
	if hasMinor {
		minor, err = strconv.Atoi(minorPart)
		if err != nil || minor < 0 {
			return Version{}, fmt.Errorf("invalid minor version %q", minorPart)
		}
	}
	return Version{Major: major, Minor: minor}, nil
}

// Header is the decoded template metadata.
type Header struct {
	Kind        string
	Version     Version
	Policy      Policy
	Description string
}

var knownHeaderFields = map[string]struct{}{
	"kind":             {},
	"version":          {},
	"unknown_sections": {},
	"description":      {},
}

var headerSchema = validation.MustCompile(map[string]any{
	"type": "object",
	"properties": map[string]any{
		"kind": map[string]any{"type": "string", "minLength": 1},
		"version": map[string]any{
			"oneOf": []any{
				map[string]any{"type": "string", "pattern": `^v?\d+(\.\d+)?$`},
				map[string]any{"type": "number", "minimum": 0},
				map[string]any{
					"type": "object",
					"properties": map[string]any{
						"major": map[string]any{"type": "integer", "minimum": 0},
						"minor": map[string]any{"type": "integer", "minimum": 0},
					},
					"required":             []any{"major"},
					"additionalProperties": false,
				},
			},
		},
		"unknown_sections": map[string]any{"enum": []any{"ignore", "warn", "warning", "error"}},
		"description":      map[string]any{"type": "string"},
	},
	"required": []any{"kind", "version"},
})

// splitHeader separates the YAML header from the body. It returns the raw
// header map, the body text and the number of lines the header occupied.
func splitHeader(text string) (map[string]any, string, int, error) {
	var raw map[string]any
	body, err := frontmatter.MustParse(strings.NewReader(text), &raw)
	if err != nil {
		if errors.Is(err, frontmatter.ErrNotFound) {
			return nil, "", 0, ErrHeaderMissing
		}
		return nil, "", 0, fmt.Errorf("%w: %v", ErrHeaderInvalid, err)
	}
	if len(raw) == 0 {
		return nil, "", 0, ErrHeaderMissing
	}
	if literal, ok := versionLiteral(text); ok {
		raw["version"] = literal
	}
	return raw, string(body), headerLineCount(text, body), nil
}

// versionLiteral returns the version scalar exactly as written. A plain
// `version: 1.10` decodes as the float 1.1 otherwise.
func versionLiteral(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return "", false
	}
	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			end = i
			break
		}
	}
	if end < 0 {
		return "", false
	}
	var header struct {
		Version yaml.Node `yaml:"version"`
	}
	if err := yaml.Unmarshal([]byte(strings.Join(lines[1:end], "\n")), &header); err != nil {
		return "", false
	}
	node := header.Version
	if node.Kind != yaml.ScalarNode || (node.Tag != "!!float" && node.Tag != "!!int") {
		return "", false
	}
	return node.Value, true
}

func headerLineCount(text string, body []byte) int {
	if bytes.HasSuffix([]byte(text), body) {
		return strings.Count(text[:len(text)-len(body)], "\n")
	}
	lines := strings.Split(text, "\n")
	seen := 0
	for i, line := range lines {
		if strings.TrimSpace(line) == "---" {
			seen++
			if seen == 2 {
				return i + 1
			}
		}
	}
	return 0
}

// decodeHeader validates the raw header and converts it. Schema failures are
// fatal; unrecognised fields become warnings.
func decodeHeader(raw map[string]any, headerLines int) (Header, []diagnostics.Issue, error) {
	raw = validation.NormalizeYAML(raw).(map[string]any)

	if err := headerSchema.Validate(raw); err != nil {
		return Header{}, nil, fmt.Errorf("%w: %v", ErrHeaderInvalid, err)
	}

	var issues []diagnostics.Issue
	unknown := make([]string, 0)
	for key := range raw {
		if _, ok := knownHeaderFields[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		issues = append(issues, diagnostics.Warnf(diagnostics.CodeHeaderField, headerLineOf(headerLines), "",
			"unrecognized metadata field %q ignored", key))
	}

	header := Header{
		Kind:   strings.TrimSpace(fmt.Sprint(raw["kind"])),
		Policy: PolicyWarn,
	}
	if desc, ok := raw["description"].(string); ok {
		header.Description = strings.TrimSpace(desc)
	}

	version, err := versionFromHeader(raw["version"])
	if err != nil {
		return Header{}, nil, fmt.Errorf("%w: version: %v", ErrHeaderInvalid, err)
	}
	header.Version = version

	if value, ok := raw["unknown_sections"].(string); ok {
		policy, err := ParsePolicy(value)
		if err != nil {
			return Header{}, nil, fmt.Errorf("%w: %v", ErrHeaderInvalid, err)
		}
		header.Policy = policy
	}
	return header, issues, nil
}

func versionFromHeader(value any) (Version, error) {
	switch v := value.(type) {
	case string:
		return ParseVersion(v)
	case int:
		return Version{Major: v}, nil
	case float64:
		return ParseVersion(strconv.FormatFloat(v, 'f', -1, 64))
	case map[string]any:
		major, err := toInt(v["major"])
		if err != nil {
			return Version{}, fmt.Errorf("major: %w", err)
		}
		minor := 0
		if raw, ok := v["minor"]; ok {
			if minor, err = toInt(raw); err != nil {
				return Version{}, fmt.Errorf("minor: %w", err)
			}
		}
		return Version{Major: major, Minor: minor}, nil
	default:
		return Version{}, fmt.Errorf("unsupported version value %v", value)
	}
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	default:
		return 0, fmt.Errorf("expected an integer, got %T", value)
	}
}

// headerLineOf points header-level issues at the opening delimiter.
func headerLineOf(headerLines int) int {
	if headerLines == 0 {
		return 0
	}
	return 1
}
