package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mmdatafocus/lexfiles_backend/filestore"
)

func TestLocalStoreListAndSize(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "Smith", "Pleadings"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "Smith", "intake.pdf"), []byte("12345"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store := filestore.NewLocalStore(root)
	ctx := context.Background()

	entries, err := store.List(ctx, "Smith")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var gotDir, gotFile bool
	for _, e := range entries {
		switch e.Name {
		case "Pleadings":
			if !e.IsDir {
				t.Fatalf("Pleadings should be a directory")
			}
			gotDir = true
		case "intake.pdf":
			if e.IsDir {
				t.Fatalf("intake.pdf should be a file")
			}
			if e.Size != 5 {
				t.Fatalf("expected listed size 5, got %d", e.Size)
			}
			gotFile = true
		}
	}
	if !gotDir || !gotFile {
		t.Fatalf("missing entries: %+v", entries)
	}

	size, err := store.GetSize(ctx, "Smith/intake.pdf")
	if err != nil {
		t.Fatalf("GetSize: %v", err)
	}
	if size != 5 {
		t.Fatalf("expected 5 bytes, got %d", size)
	}
}

func TestLocalStoreListMissingDir(t *testing.T) {
	store := filestore.NewLocalStore(t.TempDir())
	if _, err := store.List(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for missing directory")
	}
}

func TestJoin(t *testing.T) {
	cases := []struct {
		parts []string
		want  string
	}{
		{[]string{"", "a", "b"}, "a/b"},
		{[]string{"root", "", "c.pdf"}, "root/c.pdf"},
		{[]string{""}, ""},
	}
	for _, c := range cases {
		if got := filestore.Join(c.parts...); got != c.want {
			t.Fatalf("Join(%v) = %q; want %q", c.parts, got, c.want)
		}
	}
}
