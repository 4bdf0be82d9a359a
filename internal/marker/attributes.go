package marker

import (
	"fmt"
	"strconv"
	"strings"
)

// Repeat describes how many artifact blocks a template block accepts.
type Repeat string

const (
	RepeatOne  Repeat = "one"
	RepeatMany Repeat = "many"
)

// Attributes is the closed attribute vocabulary a marker may carry. Pointer
// fields stay nil when the attribute is absent so callers can tell an
// explicit value from the default.
type Attributes struct {
	Required *bool
	Repeat   Repeat
	Covers   []string
	ToCode   bool
	Priority bool
	Level    int
}

// IsRequired defaults to true when the attribute is absent.
func (a Attributes) IsRequired() bool {
	if a.Required == nil {
		return true
	}
	return *a.Required
}

// IsRepeatable reports repeat="many".
func (a Attributes) IsRepeatable() bool {
	return a.Repeat == RepeatMany
}

// Clone returns a copy that shares no slices or pointers with a.
func (a Attributes) Clone() Attributes {
	out := a
	if a.Required != nil {
		v := *a.Required
		out.Required = &v
	}
	if a.Covers != nil {
		out.Covers = append([]string(nil), a.Covers...)
	}
	return out
}

// AttributeError describes one rejected key="value" pair.
type AttributeError struct {
	Key     string
	Value   string
	Message string
}

func (e AttributeError) Error() string {
	return fmt.Sprintf("attribute %s=%q: %s", e.Key, e.Value, e.Message)
}

// parseAttributes decodes raw key/value pairs into the closed struct. Bad
// entries are returned as errors and otherwise skipped.
func parseAttributes(pairs [][2]string) (Attributes, []AttributeError) {
	var (
		attrs Attributes
		errs  []AttributeError
	)
	for _, pair := range pairs {
		key, value := pair[0], pair[1]
		switch key {
		case "required":
			b, err := parseBool(value)
			if err != nil {
				errs = append(errs, AttributeError{Key: key, Value: value, Message: "expected true or false"})
				continue
			}
			attrs.Required = &b
		case "repeat":
			switch Repeat(strings.ToLower(strings.TrimSpace(value))) {
			case RepeatOne:
				attrs.Repeat = RepeatOne
			case RepeatMany:
				attrs.Repeat = RepeatMany
			default:
				errs = append(errs, AttributeError{Key: key, Value: value, Message: "expected one or many"})
			}
		case "covers":
			attrs.Covers = splitList(value)
		case "to_code":
			b, err := parseBool(value)
			if err != nil {
				errs = append(errs, AttributeError{Key: key, Value: value, Message: "expected true or false"})
				continue
			}
			attrs.ToCode = b
		case "priority":
			b, err := parseBool(value)
			if err != nil {
				errs = append(errs, AttributeError{Key: key, Value: value, Message: "expected true or false"})
				continue
			}
			attrs.Priority = b
		case "level":
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil || n < 1 || n > 6 {
				errs = append(errs, AttributeError{Key: key, Value: value, Message: "expected a heading level between 1 and 6"})
				continue
			}
			attrs.Level = n
		default:
			errs = append(errs, AttributeError{Key: key, Value: value, Message: "unknown attribute"})
		}
	}
	return attrs, errs
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean %q", value)
	}
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
