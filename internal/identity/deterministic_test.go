package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	a := ArtifactUUID("./docs", "prd/login.md")
	b := ArtifactUUID("docs", "prd//login.md")
	if a != b {
		t.Fatalf("equivalent paths should map to the same id: %s vs %s", a, b)
	}
	if a == ArtifactUUID("docs", "prd/logout.md") {
		t.Fatalf("different artifacts must not collide")
	}
}

func TestTemplateUUIDIgnoresCase(t *testing.T) {
	if TemplateUUID("prd", 1) != TemplateUUID(" PRD ", 1) {
		t.Fatalf("template kind should be case-insensitive")
	}
	if TemplateUUID("PRD", 1) == TemplateUUID("PRD", 2) {
		t.Fatalf("major versions must produce distinct ids")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if UUID("  ") != uuid.Nil {
		t.Fatalf("empty key should yield uuid.Nil")
	}
	if WorkspaceUUID("") == uuid.Nil {
		t.Fatalf("empty root defaults to the current directory")
	}
}
