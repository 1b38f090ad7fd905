package kb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Load opens a knowledge base from either layout: a directory holding kb.yaml
// plus frontier CSVs, or a single SQLite file (.db or .sqlite).
func Load(ctx context.Context, path string) (*Snapshot, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("locating knowledge base: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	switch filepath.Ext(path) {
	case ".db", ".sqlite":
		return OpenSQLite(ctx, path)
	default:
		return nil, fmt.Errorf("unsupported knowledge base file %s (want directory, .db, or .sqlite)", path)
	}
}
