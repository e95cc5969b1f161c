package storage

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/daybook/internal/storage/sqlite"
)

// SQLiteStore is the default local Provider, backed by a single database file.
type SQLiteStore struct {
	*sqlite.Store
}

var _ Provider = (*SQLiteStore)(nil)

// NewSQLiteStore creates a SQLite-backed Provider at the given path.
// A leading "~/" is expanded to the user's home directory.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{Store: sqlite.NewStore(ExpandPath(path))}
}

// ExpandPath expands a leading "~/" to the current user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
