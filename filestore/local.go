package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore serves a directory on the local filesystem. Used by the ops
// CLIs and tests; production firms point at GCS.
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) *LocalStore {
	return &LocalStore{Root: root}
}

func (s *LocalStore) abs(path string) string {
	return filepath.Join(s.Root, filepath.FromSlash(strings.Trim(path, "/")))
}

func (s *LocalStore) List(ctx context.Context, path string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dirEntries, err := os.ReadDir(s.abs(path))
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		e := Entry{Name: de.Name(), IsDir: de.IsDir(), Size: -1}
		if !de.IsDir() {
			if info, err := de.Info(); err == nil {
				e.Size = info.Size()
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (s *LocalStore) GetSize(ctx context.Context, path string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	info, err := os.Stat(s.abs(path))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}
