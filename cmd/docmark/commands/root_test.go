package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-docmark"
	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/engine"
	"github.com/goliatone/go-docmark/internal/history"
	"github.com/goliatone/go-docmark/internal/logging"
	"github.com/goliatone/go-docmark/internal/project"
	"github.com/goliatone/go-docmark/internal/templates"
	"github.com/goliatone/go-docmark/pkg/interfaces"
	"github.com/goliatone/go-docmark/pkg/testsupport"
)

const prdTemplate = "---\nkind: PRD\nversion: \"1.0\"\n---\n" +
	"<!-- x:id:req repeat=\"many\" -->\n- **ID**: `app-fr-login`\n<!-- x:id:req -->\n"

const designTemplate = "---\nkind: DESIGN\nversion: \"1.0\"\n---\n" +
	"<!-- x:id-ref:uses -->\n- `app-fr-login`\n<!-- x:id-ref:uses -->\n"

const prdArtifact = "---\nkind: PRD\n---\n" +
	"<!-- x:id:req -->\n- **ID**: `app-fr-login`\n<!-- x:id:req -->\n"

func designArtifact(refs string) string {
	return "---\nkind: DESIGN\n---\n<!-- x:id-ref:uses -->\n" + refs + "<!-- x:id-ref:uses -->\n"
}

func workspace(t *testing.T, refs string) string {
	t.Helper()
	return testsupport.WriteTree(t, map[string]string{
		"templates/prd.template.md":    prdTemplate,
		"templates/design.template.md": designTemplate,
		"prd.md":                       prdArtifact,
		"design.md":                    designArtifact(refs),
	})
}

func execute(args ...string) (int, string, string) {
	var out, errOut bytes.Buffer
	code := Execute(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestValidatePasses(t *testing.T) {
	dir := t.TempDir()
	tpl := testsupport.WriteFile(t, dir, "prd.template.md", prdTemplate)
	art := testsupport.WriteFile(t, dir, "prd.md", prdArtifact)

	code, out, _ := execute("validate", "--prefix", "x", "-t", tpl, art)

	assert.Equal(t, ExitPass, code)
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "1 definitions, 0 references")
}

func TestValidateFailsOnMissingBlock(t *testing.T) {
	dir := t.TempDir()
	tpl := testsupport.WriteFile(t, dir, "prd.template.md", prdTemplate)
	art := testsupport.WriteFile(t, dir, "prd.md", "# Empty\n")

	code, out, _ := execute("validate", "--prefix", "x", "--template", tpl, art)

	assert.Equal(t, ExitFail, code)
	assert.Contains(t, out, diagnostics.CodeMissingRequired)
	assert.Contains(t, out, "FAIL")
}

func TestValidateParseFailureExitsWithFail(t *testing.T) {
	dir := t.TempDir()
	tpl := testsupport.WriteFile(t, dir, "prd.template.md", prdTemplate)
	art := testsupport.WriteFile(t, dir, "prd.md", "<!-- x:id:req -->\nnever closed\n")

	code, _, errOut := execute("validate", "--prefix", "x", "-t", tpl, art)

	assert.Equal(t, ExitFail, code)
	assert.Contains(t, errOut, "Validation failed")
}

func TestValidateMissingFileIsUsageError(t *testing.T) {
	dir := t.TempDir()
	tpl := testsupport.WriteFile(t, dir, "prd.template.md", prdTemplate)

	code, _, errOut := execute("validate", "--prefix", "x", "-t", tpl, filepath.Join(dir, "missing.md"))

	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "docmark error")
}

func TestCheckWorkspace(t *testing.T) {
	code, out, _ := execute("check", "--prefix", "x", workspace(t, "- `app-fr-login`\n"))
	assert.Equal(t, ExitPass, code, out)
	assert.Contains(t, out, "coverage 100.0%")

	code, out, _ = execute("check", "--prefix", "x", workspace(t, "- `app-fr-gone`\n"))
	assert.Equal(t, ExitFail, code)
	assert.Contains(t, out, diagnostics.CodeOrphanedReference)

	code, _, _ = execute("check", "--prefix", "x", "--orphans", "warn", workspace(t, "- `app-fr-gone`\n"))
	assert.Equal(t, ExitPass, code)

	code, _, _ = execute("check", "--prefix", "x", "--external", "app", workspace(t, "- `app-fr-gone`\n"))
	assert.Equal(t, ExitPass, code)
}

func TestCheckJSON(t *testing.T) {
	code, out, _ := execute("check", "--prefix", "x", "--json", workspace(t, "- `app-fr-login`\n"))
	require.Equal(t, ExitPass, code)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "PASS", decoded["status"])
	assert.Len(t, decoded["artifacts"], 2)
}

func TestCheckRecordsHistory(t *testing.T) {
	root := workspace(t, "- `app-fr-login`\n")
	db := filepath.Join(t.TempDir(), "runs.db")

	code, _, _ := execute("check", "--prefix", "x", "--history-db", db, root)
	require.Equal(t, ExitPass, code)

	code, out, _ := execute("history", "--history-db", db, root)
	assert.Equal(t, ExitPass, code)
	assert.Contains(t, out, "PASS")
	assert.Contains(t, out, "2 artifacts")
}

func TestTemplateLint(t *testing.T) {
	dir := t.TempDir()
	good := testsupport.WriteFile(t, dir, "prd.template.md", prdTemplate)
	bad := testsupport.WriteFile(t, dir, "bad.template.md", "no header\n")

	code, out, _ := execute("template", "lint", "--prefix", "x", good)
	assert.Equal(t, ExitPass, code)
	assert.Contains(t, out, "PRD v1.0")

	code, _, _ = execute("template", "lint", "--prefix", "x", good, bad)
	assert.Equal(t, ExitFail, code)
}

func TestUsageErrors(t *testing.T) {
	code, _, _ := execute("unknown")
	assert.Equal(t, ExitUsage, code)

	code, _, _ = execute("validate", "artifact.md")
	assert.Equal(t, ExitUsage, code)

	code, _, errOut := execute("check", "--orphans", "fatal", t.TempDir())
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "orphan severity")

	code, _, _ = execute("--config", filepath.Join(t.TempDir(), "missing.yaml"), "check")
	assert.Equal(t, ExitUsage, code)
}

type stubService struct {
	cfg     docmark.Config
	history history.Repository
	closed  bool
}

func (s *stubService) ValidateFile(context.Context, string, string) (engine.Result, error) {
	return engine.Result{Status: diagnostics.StatusPass}, nil
}

func (s *stubService) ValidateProject(context.Context, string) (*project.Report, error) {
	return &project.Report{RunID: "stub"}, nil
}

func (s *stubService) LintTemplate(context.Context, string) (*templates.Template, []diagnostics.Issue, error) {
	return &templates.Template{Kind: "PRD"}, nil, nil
}

func (s *stubService) History() history.Repository { return s.history }

func (s *stubService) LoggerProvider() interfaces.LoggerProvider { return nopProvider{} }

func (s *stubService) Close() error {
	s.closed = true
	return nil
}

type nopProvider struct{}

func (nopProvider) GetLogger(string) interfaces.Logger { return logging.NoOp() }

func withStubService(t *testing.T) *stubService {
	t.Helper()
	stub := &stubService{}
	original := serviceBuilder
	serviceBuilder = func(cfg docmark.Config, _ ...docmark.Option) (service, error) {
		stub.cfg = cfg
		return stub, nil
	}
	t.Cleanup(func() { serviceBuilder = original })
	return stub
}

func TestFlagsOverrideConfig(t *testing.T) {
	stub := withStubService(t)
	cfgPath := testsupport.WriteFile(t, t.TempDir(), "docmark.yaml", "markers:\n  prefix: doc\nvalidation:\n  workers: 8\n")

	code, _, _ := execute("check", "--config", cfgPath, "--workers", "3", "--external", "vendor,ext", "--fail-on-warnings")

	require.Equal(t, ExitPass, code)
	assert.Equal(t, "doc", stub.cfg.Markers.Prefix)
	assert.Equal(t, 3, stub.cfg.Validation.Workers)
	assert.Equal(t, []string{"vendor", "ext"}, stub.cfg.Validation.ExternalNamespaces)
	assert.True(t, stub.cfg.Validation.FailOnWarnings)
	assert.Equal(t, "info", stub.cfg.Logging.Level)
	assert.True(t, stub.closed)
}

func TestHistoryRequiresStore(t *testing.T) {
	withStubService(t)

	code, _, errOut := execute("history")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "history is disabled")
}

func TestReadTraces(t *testing.T) {
	path := testsupport.WriteFile(t, t.TempDir(), "traces.txt", "// implements `app-fr-login`\nNot_an_id app-fr-logout-v2;\n")

	ids, err := readTraces(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"app-fr-login", "app-fr-logout-v2"}, ids)
}
