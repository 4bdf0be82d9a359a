package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-docmark/internal/logging"
	"github.com/goliatone/go-docmark/internal/logging/console"
)

func TestConsoleLoggerWritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2026, 3, 14, 15, 9, 26, 535897000, time.UTC)
	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("docmark.crossref")
	logger = logging.WithFields(logger, map[string]any{"module": "docmark.crossref"})
	logger = logger.WithContext(logging.WithRunID(context.Background(), "run-42"))

	logger.Info("crossref.run.completed",
		"orphaned", 1,
		"coverage", 0.5,
		"error", errors.New("two words"),
	)

	got := strings.TrimSpace(buf.String())
	want := `2026-03-14T15:09:26.535897Z INFO crossref.run.completed coverage=0.5 error="two words" logger=docmark.crossref module=docmark.crossref orphaned=1 run_id=run-42`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	logger := provider.GetLogger("docmark")
	logger.Debug("ignored.debug")
	logger.Warn("included.warn", "path", "a.md")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 || !strings.Contains(lines[0], "included.warn") {
		t.Fatalf("expected only the warning entry, got %q", buf.String())
	}
}

func TestConsoleLoggerPositionalArgs(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	provider.GetLogger("docmark").Info("event", 42, "value", "dangling")

	if !strings.Contains(buf.String(), "field_0=value") || !strings.Contains(buf.String(), "field_1=dangling") {
		t.Fatalf("expected positional fields, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	if level, ok := console.ParseLevel("warning"); !ok || level != console.LevelWarn {
		t.Fatalf("unexpected level %v %v", level, ok)
	}
	if _, ok := console.ParseLevel("loud"); ok {
		t.Fatalf("unknown level should not parse")
	}
}
