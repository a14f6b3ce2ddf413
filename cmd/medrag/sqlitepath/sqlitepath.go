// Package sqlitepath resolves the database file used by the sqlite snapshot
// provider.
package sqlitepath

import (
	"os"
	"path/filepath"
	"strings"
)

const dbName = "medrag.db"

// ResolveSQLitePath picks the snapshot database: the override, then
// MEDRAG_SQLITE, then the first existing candidate file. With none found it
// falls back to medrag.db inside fallbackDir so a first ingest can create it.
func ResolveSQLitePath(override, fallbackDir string) string {
	if override != "" {
		return override
	}

	if envPath := strings.TrimSpace(os.Getenv("MEDRAG_SQLITE")); envPath != "" {
		return envPath
	}

	for _, candidate := range sqliteCandidates() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return filepath.Join(fallbackDir, dbName)
}

func sqliteCandidates() []string {
	candidates := []string{
		dbName,
		filepath.Join(".medrag", dbName),
	}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".medrag", dbName))
	}

	if xdgHome := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); xdgHome != "" {
		candidates = append(candidates, filepath.Join(xdgHome, "medrag", dbName))
	}

	return candidates
}
