package docsync

import (
	"strings"

	"github.com/mmdatafocus/lexfiles_backend/models"
)

// MatterIndex holds the in-memory lookup structures the heuristic matcher
// probes for every folder segment. Matter counts are bounded per firm, so
// keeping all of them in memory is fine (unlike the enumerated files, which
// are not).
type MatterIndex struct {
	exact      map[string]*models.Matter // lowercase matter name
	composite  map[string]*models.Matter // lowercase "client - matter"
	byNumber   map[string]*models.Matter // lowercase matter number
	normalized map[string]*models.Matter // NormalizeName(matter name)
	all        []*models.Matter          // substring fallback, O(n) per probe
}

// NormalizeName strips the characters that get mangled when folder names
// cross filesystems (anything other than letters, digits, spaces and dashes)
// and collapses runs of whitespace. "Smith, John: Divorce?" and
// "Smith John Divorce" normalize to the same key.
func NormalizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '-':
			b.WriteRune(r)
		case r > 127:
			// Non-ASCII letters survive the copy; keep them.
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// BuildMatterIndex is called once per scan from the firm's current matters.
func BuildMatterIndex(matters []*models.Matter) *MatterIndex {
	idx := &MatterIndex{
		exact:      make(map[string]*models.Matter, len(matters)),
		composite:  make(map[string]*models.Matter, len(matters)),
		byNumber:   make(map[string]*models.Matter, len(matters)),
		normalized: make(map[string]*models.Matter, len(matters)),
		all:        matters,
	}
	for _, m := range matters {
		name := strings.ToLower(strings.TrimSpace(m.Name))
		if name == "" {
			continue
		}
		if _, ok := idx.exact[name]; !ok {
			idx.exact[name] = m
		}
		if client := strings.ToLower(strings.TrimSpace(m.ClientName)); client != "" {
			key := client + " - " + name
			if _, ok := idx.composite[key]; !ok {
				idx.composite[key] = m
			}
		}
		if number := strings.ToLower(strings.TrimSpace(m.MatterNumber)); number != "" {
			if _, ok := idx.byNumber[number]; !ok {
				idx.byNumber[number] = m
			}
		}
		if norm := NormalizeName(m.Name); norm != "" {
			if _, ok := idx.normalized[norm]; !ok {
				idx.normalized[norm] = m
			}
		}
	}
	return idx
}

// MatchSegment probes one folder segment through the lookup strategies in
// fixed precedence order, first hit wins:
// exact name, "Client - Matter" composite, matter number, normalized name,
// suffix after the last " - " (exact then normalized), and finally substring
// containment against matter names (the only approximate strategy).
func (idx *MatterIndex) MatchSegment(segment string) *models.Matter {
	seg := strings.ToLower(strings.TrimSpace(segment))
	if seg == "" {
		return nil
	}

	if m, ok := idx.exact[seg]; ok {
		return m
	}
	if m, ok := idx.composite[seg]; ok {
		return m
	}
	if m, ok := idx.byNumber[seg]; ok {
		return m
	}
	if norm := NormalizeName(segment); norm != "" {
		if m, ok := idx.normalized[norm]; ok {
			return m
		}
	}

	// Folder names of the form "<number> - <matter>" or "<client> - <matter>"
	// leave the matter name after the last separator.
	if i := strings.LastIndex(seg, " - "); i >= 0 {
		suffix := strings.TrimSpace(seg[i+3:])
		if suffix != "" {
			if m, ok := idx.exact[suffix]; ok {
				return m
			}
			if norm := NormalizeName(suffix); norm != "" {
				if m, ok := idx.normalized[norm]; ok {
					return m
				}
			}
		}
	}

	for _, m := range idx.all {
		name := strings.ToLower(strings.TrimSpace(m.Name))
		if len(name) >= 3 && strings.Contains(seg, name) {
			return m
		}
	}
	return nil
}

// MatchPath walks the folder path's segments from the deepest up (deeper
// folders are more matter-specific) and returns the first segment hit.
func (idx *MatterIndex) MatchPath(folderPath string) *models.Matter {
	segments := strings.Split(strings.Trim(folderPath, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		if m := idx.MatchSegment(segments[i]); m != nil {
			return m
		}
	}
	return nil
}
