package filestore

import "context"

// Entry is one item of a directory listing.
// Size is -1 when the store's listing does not carry sizes; callers fall back
// to GetSize in that case.
type Entry struct {
	Name  string
	IsDir bool
	Size  int64
}

// RemoteStore is the external hierarchical file store the legacy documents
// were bulk-copied into. Paths are slash-separated and relative to the
// store's root; "" is the root itself.
type RemoteStore interface {
	List(ctx context.Context, path string) ([]Entry, error)
	GetSize(ctx context.Context, path string) (int64, error)
}

// Join concatenates slash-separated path segments, skipping empties.
func Join(parts ...string) string {
	out := ""
	for _, p := range parts {
		if p == "" {
			continue
		}
		if out == "" {
			out = p
		} else {
			out = out + "/" + p
		}
	}
	return out
}
