package templates

import (
	"errors"
	"testing"

	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/marker"
)

func TestLoadTemplateFixture(t *testing.T) {
	tpl, issues, err := LoadTemplate("testdata/prd.template.md", Options{Prefix: "cpt"})
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	if tpl.Kind != "PRD" {
		t.Fatalf("expected kind PRD, got %q", tpl.Kind)
	}
	if tpl.Version != (Version{Major: 1, Minor: 2}) {
		t.Fatalf("unexpected version %v", tpl.Version)
	}
	if tpl.UnknownSectionPolicy != PolicyError {
		t.Fatalf("unexpected policy %q", tpl.UnknownSectionPolicy)
	}
	if len(issues) != 1 || issues[0].Code != diagnostics.CodeHeaderField {
		t.Fatalf("expected a single unknown-field warning, got %v", issues)
	}
	if issues[0].Source != "testdata/prd.template.md" {
		t.Fatalf("issues should carry the template path, got %q", issues[0].Source)
	}

	blocks := tpl.Blocks()
	if len(blocks) != 3 {
		t.Fatalf("expected 3 top-level blocks, got %d", len(blocks))
	}
	if blocks[0].StartLine != 8 {
		t.Fatalf("body line numbers must account for the header, got %d", blocks[0].StartLine)
	}
	req := tpl.Find(marker.Key{Kind: marker.KindIDDefinition, Name: "requirement"})
	if req == nil || !req.Attributes.IsRepeatable() || !req.Attributes.Priority {
		t.Fatalf("unexpected requirement block: %+v", req)
	}
	if len(req.Attributes.Covers) != 1 || req.Attributes.Covers[0] != "DESIGN" {
		t.Fatalf("unexpected covers list %v", req.Attributes.Covers)
	}
}

func TestParseTemplateMissingHeaderIsFatal(t *testing.T) {
	tpl, _, err := ParseTemplate("<!-- cpt:free -->\n<!-- cpt:free -->\n", Options{})
	if !errors.Is(err, ErrHeaderMissing) {
		t.Fatalf("expected ErrHeaderMissing, got %v", err)
	}
	if tpl != nil {
		t.Fatalf("no template expected on fatal header error")
	}
}

func TestParseTemplateInvalidHeader(t *testing.T) {
	cases := map[string]string{
		"missing version": "---\nkind: PRD\n---\n",
		"bad policy":      "---\nkind: PRD\nversion: 1\nunknown_sections: explode\n---\n",
		"bad version":     "---\nkind: PRD\nversion: one\n---\n",
		"broken yaml":     "---\nkind: [PRD\n---\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, _, err := ParseTemplate(text, Options{})
			if !errors.Is(err, ErrHeaderInvalid) {
				t.Fatalf("expected ErrHeaderInvalid, got %v", err)
			}
		})
	}
}

func TestParseTemplateVersionForms(t *testing.T) {
	cases := map[string]Version{
		"---\nkind: A\nversion: 2\n---\n":                     {Major: 2},
		"---\nkind: A\nversion: \"3.4\"\n---\n":               {Major: 3, Minor: 4},
		"---\nkind: A\nversion: 1.10\n---\n":                  {Major: 1, Minor: 10},
		"---\nkind: A\nversion: 2.0\n---\n":                   {Major: 2},
		"---\nkind: A\nversion:\n  major: 1\n  minor: 5\n---\n": {Major: 1, Minor: 5},
	}
	for text, want := range cases {
		tpl, _, err := ParseTemplate(text, Options{})
		if err != nil {
			t.Fatalf("ParseTemplate(%q): %v", text, err)
		}
		if tpl.Version != want {
			t.Fatalf("ParseTemplate(%q) version = %v, want %v", text, tpl.Version, want)
		}
		if tpl.UnknownSectionPolicy != PolicyWarn {
			t.Fatalf("expected default policy warn, got %q", tpl.UnknownSectionPolicy)
		}
	}
}

func TestParseTemplateBodyErrorsAreFatal(t *testing.T) {
	_, _, err := ParseTemplate("---\nkind: A\nversion: 1\n---\n<!-- cpt:free -->\n", Options{})
	if !errors.Is(err, marker.ErrUnclosed) {
		t.Fatalf("expected ErrUnclosed, got %v", err)
	}
	var perr *marker.ParseError
	if !errors.As(err, &perr) || perr.Line != 5 {
		t.Fatalf("expected unclosed marker at file line 5, got %v", err)
	}
}

func TestVersionCompatible(t *testing.T) {
	v := Version{Major: 1, Minor: 3}
	if !v.Compatible(Version{Major: 1, Minor: 2}) {
		t.Fatalf("1.3 should satisfy 1.2")
	}
	if v.Compatible(Version{Major: 1, Minor: 4}) {
		t.Fatalf("1.3 should not satisfy 1.4")
	}
	if v.Compatible(Version{Major: 2}) {
		t.Fatalf("major mismatch must be incompatible")
	}
}

func TestParseArtifactUsesTemplatePrefix(t *testing.T) {
	tpl, _, err := LoadTemplate("testdata/prd.template.md", Options{Prefix: "cpt"})
	if err != nil {
		t.Fatalf("LoadTemplate: %v", err)
	}
	text := "---\nkind: PRD\n---\n<!-- other:free -->\n<!-- cpt:paragraph:summary -->\nText\n<!-- cpt:paragraph:summary -->\n"

	art, issues, err := ParseArtifact(text, tpl, Options{Path: "docs/prd.md"})
	if err != nil {
		t.Fatalf("ParseArtifact: %v", err)
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues %v", issues)
	}
	if len(art.Blocks()) != 1 || art.Blocks()[0].StartLine != 5 {
		t.Fatalf("unexpected artifact blocks %+v", art.Blocks())
	}
	if art.Line(6) != "Text" {
		t.Fatalf("Line(6) = %q", art.Line(6))
	}
	if DeclaredKind(text) != "PRD" {
		t.Fatalf("DeclaredKind = %q", DeclaredKind(text))
	}
}

func TestParseArtifactRequiresTemplate(t *testing.T) {
	if _, _, err := ParseArtifact("", nil, Options{}); !errors.Is(err, ErrTemplateRequired) {
		t.Fatalf("expected ErrTemplateRequired, got %v", err)
	}
}

func TestDeclaredKindWithoutFrontmatter(t *testing.T) {
	if got := DeclaredKind("# Just text\n"); got != "" {
		t.Fatalf("expected empty kind, got %q", got)
	}
}
