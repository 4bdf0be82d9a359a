// Package identifiers parses the {system}-{kind}-{slug}[-v{n}] identifier
// grammar and extracts definitions and references from parsed blocks.
package identifiers

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goliatone/go-slug"
)

// ErrMalformed is returned by Parse for tokens outside the identifier grammar.
var ErrMalformed = errors.New("malformed identifier")

var idPattern = regexp.MustCompile(`^([a-z][a-z0-9]*)-([a-z][a-z0-9]*)-([a-z0-9]+(?:-[a-z0-9]+)*?)(?:-v(\d+))?$`)

// ID is a parsed identifier.
type ID struct {
	Raw     string
	System  string
	Kind    string
	Slug    string
	Version int
	// Versioned is set when the token carries a -v{n} suffix.
	Versioned bool
}

// Parse splits raw into its segments.
func Parse(raw string) (ID, error) {
	m := idPattern.FindStringSubmatch(raw)
	if m == nil {
		return ID{}, fmt.Errorf("%w: %q", ErrMalformed, raw)
	}
	id := ID{Raw: raw, System: m[1], Kind: m[2], Slug: m[3]}
	if m[4] != "" {
		v, err := strconv.Atoi(m[4])
		if err != nil {
			return ID{}, fmt.Errorf("%w: %q: version: %v", ErrMalformed, raw, err)
		}
		id.Version = v
		id.Versioned = true
	}
	return id, nil
}

// Valid reports whether raw matches the grammar.
func Valid(raw string) bool {
	return idPattern.MatchString(raw)
}

func (id ID) String() string {
	return id.Raw
}

// Base is the identifier without its version suffix.
func (id ID) Base() string {
	return id.System + "-" + id.Kind + "-" + id.Slug
}

// Suggest returns a normalised candidate for a malformed token, or "" when
// normalisation does not produce a valid identifier.
func Suggest(raw string) string {
	normalized, err := slug.Normalize(raw)
	if err != nil || normalized == "" || normalized == raw {
		return ""
	}
	if !Valid(normalized) {
		return ""
	}
	return normalized
}
