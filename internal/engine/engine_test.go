package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/marker"
	"github.com/goliatone/go-docmark/internal/templates"
)

func mustTemplate(t *testing.T, policy string, body string) *templates.Template {
	t.Helper()
	text := "---\nkind: PRD\nversion: \"1.0\"\nunknown_sections: " + policy + "\n---\n" + body
	tpl, _, err := templates.ParseTemplate(text, templates.Options{Prefix: "x"})
	require.NoError(t, err)
	return tpl
}

func mustArtifact(t *testing.T, tpl *templates.Template, text string) *templates.Artifact {
	t.Helper()
	art, _, err := templates.ParseArtifact(text, tpl, templates.Options{Path: "prd.md"})
	require.NoError(t, err)
	return art
}

func issueCodes(issues []diagnostics.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue.Code)
	}
	return out
}

const requirementsTemplate = `<!-- x:paragraph:summary -->
Summary.
<!-- x:paragraph:summary -->
<!-- x:id:req repeat="many" required="false" -->
- [ ] **ID**: ` + "`app-fr-example`" + `
<!-- x:id:req -->
`

func TestValidateDuplicateIdentifierFails(t *testing.T) {
	tpl := mustTemplate(t, "warn", requirementsTemplate)
	art := mustArtifact(t, tpl, "<!-- x:paragraph:summary -->\nA product.\n<!-- x:paragraph:summary -->\n"+
		"<!-- x:id:req -->\n- [ ] **ID**: `sys-kind-foo`\n<!-- x:id:req -->\n"+
		"<!-- x:id:req -->\n- [x] **ID**: `sys-kind-foo`\n<!-- x:id:req -->\n")

	res := Validate(art, Options{})

	assert.Equal(t, diagnostics.StatusFail, res.Status)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, diagnostics.CodeIdentifierDuplicate, res.Issues[0].Code)
	assert.Equal(t, 8, res.Issues[0].Line)
	assert.Equal(t, "prd.md", res.Issues[0].Source)
	assert.Len(t, res.Definitions, 1)
}

func TestValidateUnknownSectionPolicy(t *testing.T) {
	artifact := "<!-- x:paragraph:summary -->\nA product.\n<!-- x:paragraph:summary -->\n" +
		"<!-- x:list:extra -->\n- not in template\n<!-- x:list:extra -->\n"

	strict := mustTemplate(t, "error", requirementsTemplate)
	res := Validate(mustArtifact(t, strict, artifact), Options{})
	assert.Equal(t, diagnostics.StatusFail, res.Status)
	assert.Equal(t, []string{diagnostics.CodeUnknownBlock}, issueCodes(res.Issues))

	lenient := mustTemplate(t, "ignore", requirementsTemplate)
	res = Validate(mustArtifact(t, lenient, artifact), Options{})
	assert.Equal(t, diagnostics.StatusPass, res.Status)
	assert.Empty(t, res.Issues)
}

func TestValidateIssuesAreAdditive(t *testing.T) {
	tpl := mustTemplate(t, "warn", requirementsTemplate+"<!-- x:table:matrix -->\n| a |\n| - |\n| 1 |\n<!-- x:table:matrix -->\n")
	art := mustArtifact(t, tpl, "<!-- x:paragraph:summary -->\n\n<!-- x:paragraph:summary -->\n"+
		"<!-- x:id:req -->\n**ID**: `Bad_Id` [ ]\n<!-- x:id:req -->\n")

	res := Validate(art, Options{})

	assert.Equal(t, diagnostics.StatusFail, res.Status)
	assert.ElementsMatch(t, []string{
		diagnostics.CodeMissingRequired,
		diagnostics.CodeContent,
		diagnostics.CodeCheckboxOutsideList,
		diagnostics.CodeIdentifierMalformed,
	}, issueCodes(res.Issues))
	for i := 1; i < len(res.Issues); i++ {
		assert.LessOrEqual(t, res.Issues[i-1].Line, res.Issues[i].Line, "issues must be sorted by line")
	}
}

func TestValidateCarriesParseIssuesAndHeadingLevel(t *testing.T) {
	tpl := mustTemplate(t, "warn", "<!-- x:heading:title level=\"1\" -->\n# T\n<!-- x:heading:title -->\n")
	art := mustArtifact(t, tpl, "<!-- x:bogus -->\n<!-- x:heading:title -->\n## Too deep\n<!-- x:heading:title -->\n")

	res := Validate(art, Options{})

	assert.Equal(t, diagnostics.StatusFail, res.Status)
	assert.Equal(t, []string{diagnostics.CodeMarkerUnknownKind, diagnostics.CodeContent}, issueCodes(res.Issues))
}

func TestValidateFailOnWarnings(t *testing.T) {
	tpl := mustTemplate(t, "warn", requirementsTemplate)
	art := mustArtifact(t, tpl, "<!-- x:paragraph:summary -->\nA product.\n<!-- x:paragraph:summary -->\n<!-- x:free:extra -->\n<!-- x:free:extra -->\n")

	assert.Equal(t, diagnostics.StatusPass, Validate(art, Options{}).Status)
	assert.Equal(t, diagnostics.StatusFail, Validate(art, Options{FailOnWarnings: true}).Status)
}

func TestValidateWithoutTemplateFails(t *testing.T) {
	res := Validate(nil, Options{})
	assert.Equal(t, diagnostics.StatusFail, res.Status)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, diagnostics.CodeTemplateRequired, res.Issues[0].Code)
	assert.Equal(t, templates.ErrTemplateRequired.Error(), res.Issues[0].Message)

	res = Validate(&templates.Artifact{Path: "orphan.md"}, Options{})
	assert.Equal(t, diagnostics.StatusFail, res.Status)
	assert.Equal(t, "orphan.md", res.Path)
	assert.Equal(t, "orphan.md", res.Issues[0].Source)
}

func TestExtractUsesTemplateAttributes(t *testing.T) {
	tpl := mustTemplate(t, "warn", "<!-- x:id:req covers=\"DESIGN\" to_code=\"true\" -->\n**ID**: `a-b-c`\n<!-- x:id:req -->\n")
	art := mustArtifact(t, tpl, "<!-- x:id:req -->\n**ID**: `app-fr-login`\n<!-- x:id:req -->\n")

	got := Extract(art)

	require.Len(t, got.Definitions, 1)
	assert.Equal(t, []string{"DESIGN"}, got.Definitions[0].Covers)
	assert.True(t, got.Definitions[0].ToCode)
}

func TestValidateBatchKeepsOrderAndIsolatesFailures(t *testing.T) {
	tpl := mustTemplate(t, "warn", requirementsTemplate)
	good := "<!-- x:paragraph:summary -->\nA product.\n<!-- x:paragraph:summary -->\n"
	jobs := []Job{
		{Path: "a.md", Text: good, Template: tpl},
		{Path: "broken.md", Text: "<!-- x:id -->\ncontent\n", Template: tpl},
		{Path: "orphan.md", Text: good},
		{Path: "c.md", Text: good, Template: tpl},
	}

	outcomes, err := ValidateBatch(context.Background(), jobs, BatchOptions{Workers: 3})

	require.NoError(t, err)
	require.Len(t, outcomes, 4)
	for i, job := range jobs {
		assert.Equal(t, job.Path, outcomes[i].Path)
	}
	assert.NoError(t, outcomes[0].Err)
	assert.Equal(t, diagnostics.StatusPass, outcomes[0].Result.Status)

	var perr *marker.ParseError
	require.True(t, errors.As(outcomes[1].Err, &perr))
	assert.Equal(t, 1, perr.Line)
	assert.ErrorIs(t, outcomes[2].Err, templates.ErrTemplateRequired)
	assert.NoError(t, outcomes[3].Err)
}

func TestValidateBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := ValidateBatch(ctx, []Job{{Path: "a.md"}}, BatchOptions{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, outcomes[0].Err, context.Canceled)
}
