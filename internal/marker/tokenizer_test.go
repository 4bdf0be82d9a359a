package marker

import (
	"testing"

	"github.com/goliatone/go-docmark/internal/diagnostics"
)

func TestTokenizeRecognisesPairedAndSelfContainedMarkers(t *testing.T) {
	text := "<!-- cpt:id:login required=\"false\" repeat=\"many\" -->\n" +
		"- [ ] **ID**: `app-fr-login`\n" +
		"<!-- cpt:id:login -->\n" +
		"- `app-fr-login` <!-- cpt:ref-line -->\n"

	stream := Tokenize(text, Options{Prefix: "cpt"})
	if len(stream.Issues) != 0 {
		t.Fatalf("unexpected issues: %v", stream.Issues)
	}
	if len(stream.Markers) != 3 {
		t.Fatalf("expected 3 markers, got %d", len(stream.Markers))
	}

	first := stream.Markers[0]
	if first.Kind != KindIDDefinition || first.Name != "login" || first.Line != 1 {
		t.Fatalf("unexpected first marker: %+v", first)
	}
	if first.Attributes.IsRequired() {
		t.Fatalf("expected required=false to be honoured")
	}
	if !first.Attributes.IsRepeatable() {
		t.Fatalf("expected repeat=many to be honoured")
	}

	self := stream.Markers[2]
	if self.Role != RoleSelf || self.Kind != KindRefLine {
		t.Fatalf("expected self-contained ref-line marker, got %+v", self)
	}
	if self.Content != "- `app-fr-login`" {
		t.Fatalf("unexpected self-contained content %q", self.Content)
	}
}

func TestTokenizeUnknownKindIsLineIssueAndContent(t *testing.T) {
	text := "<!-- cpt:bogus -->\n<!-- cpt:paragraph -->\ntext\n<!-- cpt:paragraph -->\n"

	stream := Tokenize(text, Options{})
	if len(stream.Markers) != 2 {
		t.Fatalf("expected the bogus marker to be skipped, got %d markers", len(stream.Markers))
	}
	if len(stream.Issues) != 1 {
		t.Fatalf("expected one issue, got %v", stream.Issues)
	}
	issue := stream.Issues[0]
	if issue.Code != diagnostics.CodeMarkerUnknownKind || issue.Line != 1 || issue.Severity != diagnostics.SeverityError {
		t.Fatalf("unexpected issue: %+v", issue)
	}
}

func TestTokenizeHonoursPrefix(t *testing.T) {
	text := "<!-- other:paragraph -->\n<!-- cpt:paragraph -->\n"

	stream := Tokenize(text, Options{Prefix: "cpt"})
	if len(stream.Markers) != 1 || stream.Markers[0].Line != 2 {
		t.Fatalf("expected only the cpt marker, got %+v", stream.Markers)
	}
}

func TestTokenizeAttributeProblemsAreWarnings(t *testing.T) {
	text := "<!-- cpt:heading level=\"9\" colour=\"red\" -->\n"

	stream := Tokenize(text, Options{})
	if len(stream.Markers) != 1 {
		t.Fatalf("expected marker to survive attribute errors")
	}
	if got := diagnostics.Count(stream.Issues, diagnostics.SeverityWarning); got != 2 {
		t.Fatalf("expected two attribute warnings, got %v", stream.Issues)
	}
}

func TestTokenizeLineOffset(t *testing.T) {
	stream := Tokenize("\n<!-- cpt:free -->\n", Options{LineOffset: 10})
	if stream.Markers[0].Line != 12 {
		t.Fatalf("expected offset line 12, got %d", stream.Markers[0].Line)
	}
	if stream.Text(12) != "<!-- cpt:free -->" {
		t.Fatalf("Text(12) = %q", stream.Text(12))
	}
}

func TestPairedMarkerInTrailingPositionIsRejected(t *testing.T) {
	stream := Tokenize("some text <!-- cpt:paragraph -->\n", Options{})
	if len(stream.Markers) != 0 {
		t.Fatalf("expected no markers, got %+v", stream.Markers)
	}
	if len(stream.Issues) != 1 || stream.Issues[0].Code != diagnostics.CodeMarkerPlacement {
		t.Fatalf("expected a placement warning, got %v", stream.Issues)
	}
}

func TestTokenizeReportsMalformedMarkers(t *testing.T) {
	text := "<!-- cpt:id:req repeat=many -->\n" +
		"<!-- cpt:id:req -- >\n" +
		"<!-- other:id:req repeat=many -->\n" +
		"<!-- note: not a marker -->\n"

	stream := Tokenize(text, Options{Prefix: "cpt"})
	if len(stream.Markers) != 0 {
		t.Fatalf("expected no markers, got %+v", stream.Markers)
	}
	if len(stream.Issues) != 2 {
		t.Fatalf("expected two malformed issues, got %v", stream.Issues)
	}
	for i, issue := range stream.Issues {
		if issue.Code != diagnostics.CodeMarkerMalformed || issue.Severity != diagnostics.SeverityError || issue.Line != i+1 {
			t.Fatalf("unexpected issue %d: %+v", i, issue)
		}
	}
}

func TestParseKeepsMalformedMarkerIssueWithFatalError(t *testing.T) {
	text := "<!-- x:id:req repeat=many -->\n- [ ] **ID**: `sys-kind-foo`\n<!-- x:id:req -->\n"

	doc, err := Parse(text, Options{Prefix: "x"})
	if err == nil {
		t.Fatalf("expected the dangling marker to be unclosed")
	}
	if len(doc.Issues) != 1 || doc.Issues[0].Line != 1 || doc.Issues[0].Code != diagnostics.CodeMarkerMalformed {
		t.Fatalf("expected a malformed marker issue on line 1, got %v", doc.Issues)
	}
}
