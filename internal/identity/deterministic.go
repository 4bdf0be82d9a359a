// Package identity derives stable UUIDs for docmark entities so history
// records line up across runs.
package identity

import (
	"path"
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from key with go-hashid. Keys are
// namespaced by entity type to avoid collisions.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// ArtifactUUID identifies an artifact by its slash-cleaned path within a
// workspace root.
func ArtifactUUID(root, artifactPath string) uuid.UUID {
	return UUID("docmark:artifact:" + cleanRoot(root) + ":" + path.Clean(strings.TrimSpace(artifactPath)))
}

// TemplateUUID identifies a template by kind and major version; minor
// bumps keep the identity.
func TemplateUUID(kind string, major int) uuid.UUID {
	return UUID("docmark:template:" + strings.ToUpper(strings.TrimSpace(kind)) + ":v" + strconv.Itoa(major))
}

// WorkspaceUUID identifies a workspace root.
func WorkspaceUUID(root string) uuid.UUID {
	return UUID("docmark:workspace:" + cleanRoot(root))
}

func cleanRoot(root string) string {
	root = strings.TrimSpace(root)
	if root == "" {
		return "."
	}
	return path.Clean(strings.ReplaceAll(root, "\\", "/"))
}
