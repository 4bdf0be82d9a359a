// Package templates loads templates (a YAML metadata header followed by a
// marker body) and artifacts (a marker body validated against a template).
// Both are immutable once parsed.
package templates
