package docsync

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/mmdatafocus/lexfiles_backend/filestore"
)

// fakeStore serves a fixed directory map; listed paths in failDirs error out.
type fakeStore struct {
	dirs     map[string][]filestore.Entry
	failDirs map[string]bool
}

func (s *fakeStore) List(ctx context.Context, path string) ([]filestore.Entry, error) {
	if s.failDirs[path] {
		return nil, errors.New("permission denied")
	}
	return s.dirs[path], nil
}

func (s *fakeStore) GetSize(ctx context.Context, path string) (int64, error) {
	return 0, errors.New("not found")
}

func file(name string, size int64) filestore.Entry {
	return filestore.Entry{Name: name, Size: size}
}

func dir(name string) filestore.Entry {
	return filestore.Entry{Name: name, IsDir: true, Size: -1}
}

func TestWalkRemoteYieldsAllLeaves(t *testing.T) {
	store := &fakeStore{
		dirs: map[string][]filestore.Entry{
			"":                {dir("Smith"), file("readme.txt", 10)},
			"Smith":           {dir("Pleadings"), file("intake.pdf", 20)},
			"Smith/Pleadings": {file("motion.pdf", 30)},
		},
	}
	job := newScanJob("firm-1", false, false)

	var got []string
	err := walkRemote(context.Background(), job, store, "", func(f remoteFile) error {
		got = append(got, f.Path)
		return nil
	})
	if err != nil {
		t.Fatalf("walkRemote: %v", err)
	}

	sort.Strings(got)
	want := []string{"Smith/Pleadings/motion.pdf", "Smith/intake.pdf", "readme.txt"}
	if len(got) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestWalkRemoteSkipsFailedSubtree(t *testing.T) {
	store := &fakeStore{
		dirs: map[string][]filestore.Entry{
			"":       {dir("broken"), dir("ok")},
			"ok":     {file("a.pdf", 1)},
			"broken": {file("never.pdf", 1)},
		},
		failDirs: map[string]bool{"broken": true},
	}
	job := newScanJob("firm-1", false, false)

	var got []string
	err := walkRemote(context.Background(), job, store, "", func(f remoteFile) error {
		got = append(got, f.Path)
		return nil
	})
	if err != nil {
		t.Fatalf("walkRemote must not fail on a skipped subtree: %v", err)
	}
	if len(got) != 1 || got[0] != "ok/a.pdf" {
		t.Fatalf("expected only ok/a.pdf, got %v", got)
	}
}

func TestWalkRemoteCancellationIsBounded(t *testing.T) {
	// A wide directory: cancellation observed at the file boundary must stop
	// the walk inside the same directory, never descend further.
	entries := []filestore.Entry{dir("deeper")}
	for i := 0; i < 100; i++ {
		entries = append(entries, file("f.pdf", 1))
	}
	store := &fakeStore{
		dirs: map[string][]filestore.Entry{
			"":       entries,
			"deeper": {file("x.pdf", 1)},
		},
	}
	job := newScanJob("firm-1", false, false)

	calls := 0
	err := walkRemote(context.Background(), job, store, "", func(f remoteFile) error {
		calls++
		if calls == 1 {
			job.Cancel()
		}
		return nil
	})
	if !errors.Is(err, errCancelled) {
		t.Fatalf("expected errCancelled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected no callbacks after cancellation, got %d", calls)
	}
}

func TestWalkRemotePropagatesCallbackError(t *testing.T) {
	store := &fakeStore{
		dirs: map[string][]filestore.Entry{
			"": {file("a.pdf", 1), file("b.pdf", 1)},
		},
	}
	job := newScanJob("firm-1", false, false)

	boom := errors.New("db write failed")
	err := walkRemote(context.Background(), job, store, "", func(f remoteFile) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error to propagate, got %v", err)
	}
}
