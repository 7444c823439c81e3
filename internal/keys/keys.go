package keys

import (
	"path/filepath"
	"strings"
)

// sanitizeKey replaces spaces with hyphens and lowercases the string.
func sanitizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "-"))
}

// ManualDataset returns the canonical object key for a manual dataset file.
// Only the base name of path is kept, so a local file and its uploaded copy
// map to the same key.
func ManualDataset(path string) string {
	return "manual/" + sanitizeKey(filepath.Base(path))
}

// SessionMessage is the Kafka message key for results of a session. Keeping
// the key per session preserves result order within a session.
func SessionMessage(sessionID string) []byte {
	return []byte("session/" + sanitizeKey(sessionID))
}
