package logging

import (
	"context"
	"testing"

	"github.com/goliatone/go-docmark/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	contexts []context.Context
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(string, ...any)  {}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(ctx context.Context) interfaces.Logger {
	r.contexts = append(r.contexts, ctx)
	return r
}

type stubProvider struct {
	requested []string
	logger    interfaces.Logger
}

func (s *stubProvider) GetLogger(name string) interfaces.Logger {
	s.requested = append(s.requested, name)
	return s.logger
}

func TestModuleLoggerFallsBackToNoOp(t *testing.T) {
	logger := ModuleLogger(nil, "docmark.test")
	if _, ok := logger.(noopLogger); !ok {
		t.Fatalf("expected noopLogger fallback, got %T", logger)
	}
	logger = logger.WithContext(context.Background())
	logger.Debug("noop")
}

func TestModuleLoggerUsesProviderAndAnnotatesFields(t *testing.T) {
	rec := &recordingLogger{}
	provider := &stubProvider{logger: rec}

	logger := CrossrefLogger(provider)

	if len(provider.requested) != 1 || provider.requested[0] != crossrefModule {
		t.Fatalf("expected module %s, got %v", crossrefModule, provider.requested)
	}
	if len(rec.fields) != 1 || rec.fields[0]["module"] != crossrefModule {
		t.Fatalf("expected module field %s, got %v", crossrefModule, rec.fields)
	}
	logger.Info("with provider")
}

func TestModuleLoggerDefaultsToRootModule(t *testing.T) {
	provider := &stubProvider{logger: &recordingLogger{}}
	_ = ModuleLogger(provider, "")
	if len(provider.requested) != 1 || provider.requested[0] != rootModule {
		t.Fatalf("expected default module %s, got %v", rootModule, provider.requested)
	}
}

func TestNamedModuleLoggers(t *testing.T) {
	cases := map[string]func(interfaces.LoggerProvider) interfaces.Logger{
		rootModule:      RootLogger,
		workspaceModule: WorkspaceLogger,
		historyModule:   HistoryLogger,
		commandsModule:  CommandsLogger,
	}
	for module, fn := range cases {
		provider := &stubProvider{logger: &recordingLogger{}}
		_ = fn(provider)
		if len(provider.requested) == 0 || provider.requested[0] != module {
			t.Fatalf("expected %s request, got %v", module, provider.requested)
		}
	}
}

func TestWithArtifactContextSkipsEmptyValues(t *testing.T) {
	rec := &recordingLogger{}
	_ = WithArtifactContext(rec, " docs/prd.md ", "")
	if len(rec.fields) != 1 {
		t.Fatalf("expected one WithFields call, got %d", len(rec.fields))
	}
	if rec.fields[0][fieldArtifact] != "docs/prd.md" {
		t.Fatalf("unexpected fields %v", rec.fields[0])
	}
	if _, ok := rec.fields[0][fieldTemplate]; ok {
		t.Fatalf("empty template kind should be skipped")
	}
}

func TestContextFieldsMerge(t *testing.T) {
	ctx := ContextWithFields(context.Background(), map[string]any{"a": 1})
	ctx = WithRunID(ctx, "run-1")
	fields := ContextFields(ctx)
	if fields["a"] != 1 || fields[fieldRunID] != "run-1" {
		t.Fatalf("unexpected context fields %v", fields)
	}
	fields["a"] = 2
	if ContextFields(ctx)["a"] != 1 {
		t.Fatalf("ContextFields must return a copy")
	}
}
