package docmark_test

import (
	"bytes"
	"context"
	"io/fs"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-docmark"
	"github.com/goliatone/go-docmark/internal/diagnostics"
	"github.com/goliatone/go-docmark/internal/history"
	"github.com/goliatone/go-docmark/internal/logging/console"
	"github.com/goliatone/go-docmark/pkg/testsupport"
)

func testConfig() docmark.Config {
	cfg := docmark.DefaultConfig()
	cfg.Markers.Prefix = "x"
	cfg.Validation.Workers = 2
	return cfg
}

func newService(t *testing.T, cfg docmark.Config, opts ...docmark.Option) (*docmark.Service, *bytes.Buffer) {
	t.Helper()
	logs := &bytes.Buffer{}
	opts = append([]docmark.Option{docmark.WithLoggerProvider(console.NewProvider(console.Options{Writer: logs}))}, opts...)
	svc, err := docmark.New(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, logs
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Validation.OrphanSeverity = "fatal"

	_, err := docmark.New(cfg)
	assert.ErrorIs(t, err, docmark.ErrOrphanSeverityInvalid)
}

func TestNewBuildsGoLoggerProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "json"

	svc, err := docmark.New(cfg)
	require.NoError(t, err)
	assert.NotNil(t, svc.LoggerProvider())
	assert.Nil(t, svc.History())
}

func TestNewOpensHistory(t *testing.T) {
	cfg := testConfig()
	cfg.History.Enabled = true

	svc, _ := newService(t, cfg)
	assert.IsType(t, &history.MemoryRepository{}, svc.History())
}

func TestValidateFile(t *testing.T) {
	dir := t.TempDir()
	tplPath := testsupport.WriteFile(t, dir, "prd.template.md", prdTemplate)
	artPath := testsupport.WriteFile(t, dir, "prd.md", prdArtifact)

	svc, logs := newService(t, testConfig())
	res, err := svc.ValidateFile(context.Background(), tplPath, artPath)
	require.NoError(t, err)

	assert.Equal(t, docmark.StatusPass, res.Status, "issues: %v", res.Issues)
	assert.Equal(t, artPath, res.Path)
	assert.Len(t, res.Definitions, 1)
	assert.Contains(t, logs.String(), "artifact.validated")
}

func TestValidateFileWarnsOnKindMismatch(t *testing.T) {
	dir := t.TempDir()
	tplPath := testsupport.WriteFile(t, dir, "prd.template.md", prdTemplate)
	artPath := testsupport.WriteFile(t, dir, "design.md", "---\nkind: DESIGN\n---\n<!-- x:id:req -->\n- **ID**: `app-fr-login`\n<!-- x:id:req -->\n")

	svc, _ := newService(t, testConfig())
	res, err := svc.ValidateFile(context.Background(), tplPath, artPath)
	require.NoError(t, err)

	require.NotEmpty(t, res.Issues)
	assert.Equal(t, diagnostics.CodeTemplateKindMismatched, res.Issues[0].Code)
	assert.Equal(t, docmark.StatusPass, res.Status)

	cfg := testConfig()
	cfg.Validation.FailOnWarnings = true
	strict, _ := newService(t, cfg)
	res, err = strict.ValidateFile(context.Background(), tplPath, artPath)
	require.NoError(t, err)
	assert.Equal(t, docmark.StatusFail, res.Status)
}

func TestValidateFileReturnsParseErrors(t *testing.T) {
	dir := t.TempDir()
	tplPath := testsupport.WriteFile(t, dir, "prd.template.md", prdTemplate)
	artPath := testsupport.WriteFile(t, dir, "prd.md", "<!-- x:id:req -->\nno close\n")

	svc, _ := newService(t, testConfig())
	_, err := svc.ValidateFile(context.Background(), tplPath, artPath)
	assert.ErrorIs(t, err, docmark.ErrUnclosed)

	_, err = svc.ValidateFile(context.Background(), filepath.Join(dir, "missing.md"), artPath)
	assert.ErrorIs(t, err, fs.ErrNotExist)
}

func TestValidateProjectOnDisk(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, dir, "templates/prd.template.md", prdTemplate)
	testsupport.WriteFile(t, dir, "templates/design.template.md", designTemplate)
	testsupport.WriteFile(t, dir, "prd.md", prdArtifact)
	testsupport.WriteFile(t, dir, "design.md", designArtifact("- `app-fr-login`\n"))

	repo := history.NewMemoryRepository()
	svc, _ := newService(t, testConfig(), docmark.WithHistory(repo))
	report, err := svc.ValidateProject(context.Background(), dir)
	require.NoError(t, err)

	assert.Equal(t, docmark.StatusPass, report.Status(), "issues: %v", report.AllIssues())
	assert.Len(t, report.Artifacts, 2)
	runs, err := repo.List(context.Background(), dir, 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestValidateProjectWithFSAndOrphanWarnings(t *testing.T) {
	fsys := fstest.MapFS{
		"templates/prd.template.md":    {Data: []byte(prdTemplate)},
		"templates/design.template.md": {Data: []byte(designTemplate)},
		"prd.md":                       {Data: []byte(prdArtifact)},
		"design.md":                    {Data: []byte(designArtifact("- `app-fr-gone`\n"))},
	}
	cfg := testConfig()
	cfg.Validation.OrphanSeverity = "warn"

	svc, _ := newService(t, cfg, docmark.WithFS(func(string) fs.FS { return fsys }))
	report, err := svc.ValidateProject(context.Background(), "virtual")
	require.NoError(t, err)

	assert.Equal(t, "virtual", report.Root)
	assert.Equal(t, docmark.StatusPass, report.Status())
	assert.Len(t, report.Crossref.Orphaned, 1)
}

func TestValidateProjectRejectsMissingRoot(t *testing.T) {
	svc, _ := newService(t, testConfig())

	_, err := svc.ValidateProject(context.Background(), filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, fs.ErrNotExist)

	file := testsupport.WriteFile(t, t.TempDir(), "file.md", "x")
	_, err = svc.ValidateProject(context.Background(), file)
	assert.ErrorIs(t, err, docmark.ErrNotDirectory)
}

func TestLintTemplate(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteFile(t, dir, "prd.template.md", prdTemplate)

	svc, _ := newService(t, testConfig())
	tpl, issues, err := svc.LintTemplate(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "PRD", tpl.Kind)
	assert.Empty(t, issues)

	bad := testsupport.WriteFile(t, dir, "bad.template.md", "no header here\n")
	_, _, err = svc.LintTemplate(context.Background(), bad)
	assert.ErrorIs(t, err, docmark.ErrHeaderMissing)
}
