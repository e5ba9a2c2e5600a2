package docsync_test

import (
	"testing"

	"github.com/mmdatafocus/lexfiles_backend/docsync"
	"github.com/mmdatafocus/lexfiles_backend/models"
)

func buildIndex(matters ...*models.Matter) *docsync.MatterIndex {
	return docsync.BuildMatterIndex(matters)
}

func TestNormalizeNameStripsMangledCharacters(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Smith, John: Divorce?", "smith john divorce"},
		{"Smith John Divorce", "smith john divorce"},
		{"  ACME   v.  Jones  ", "acme v jones"},
		{`<Estate|of*"Brown">`, "estateofbrown"},
		{"2024-018", "2024-018"},
	}
	for _, c := range cases {
		if got := docsync.NormalizeName(c.in); got != c.want {
			t.Fatalf("NormalizeName(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestMatchSegmentNormalizedFolderName(t *testing.T) {
	m := &models.Matter{ID: 1, Name: "Smith John Divorce"}
	idx := buildIndex(m)

	// Folder names were copied across filesystems; punctuation got mangled.
	got := idx.MatchSegment("Smith, John: Divorce?")
	if got == nil || got.ID != 1 {
		t.Fatalf("expected normalized match to matter 1, got %+v", got)
	}
}

func TestMatchSegmentPrecedence(t *testing.T) {
	exact := &models.Matter{ID: 1, Name: "Jones Estate"}
	// A matter whose name is a substring of the probe; must lose to exact.
	substr := &models.Matter{ID: 2, Name: "Jones"}
	idx := buildIndex(substr, exact)

	if got := idx.MatchSegment("Jones Estate"); got == nil || got.ID != 1 {
		t.Fatalf("exact name must win over substring containment, got %+v", got)
	}
	if got := idx.MatchSegment("Old Jones Archive"); got == nil || got.ID != 2 {
		t.Fatalf("expected substring fallback to matter 2, got %+v", got)
	}
}

func TestMatchSegmentComposite(t *testing.T) {
	m := &models.Matter{ID: 7, ClientName: "ACME Corp", Name: "Patent Filing"}
	idx := buildIndex(m)

	if got := idx.MatchSegment("ACME Corp - Patent Filing"); got == nil || got.ID != 7 {
		t.Fatalf("expected composite match, got %+v", got)
	}
}

func TestMatchSegmentMatterNumber(t *testing.T) {
	m := &models.Matter{ID: 3, Name: "Estate of Brown", MatterNumber: "2024-018"}
	idx := buildIndex(m)

	if got := idx.MatchSegment("2024-018"); got == nil || got.ID != 3 {
		t.Fatalf("expected matter-number match, got %+v", got)
	}
}

func TestMatchSegmentSuffixAfterSeparator(t *testing.T) {
	m := &models.Matter{ID: 4, Name: "Brown Probate"}
	idx := buildIndex(m)

	if got := idx.MatchSegment("00412 - Brown Probate"); got == nil || got.ID != 4 {
		t.Fatalf("expected suffix match after ' - ', got %+v", got)
	}
	// Mangled suffix still matches through normalization.
	if got := idx.MatchSegment("00412 - Brown: Probate"); got == nil || got.ID != 4 {
		t.Fatalf("expected normalized suffix match, got %+v", got)
	}
}

func TestMatchPathPrefersDeeperSegments(t *testing.T) {
	client := &models.Matter{ID: 1, Name: "ACME"}
	specific := &models.Matter{ID: 2, Name: "ACME v Jones"}
	idx := buildIndex(client, specific)

	if got := idx.MatchPath("ACME/ACME v Jones/Pleadings"); got == nil || got.ID != 2 {
		t.Fatalf("expected deepest matching segment to win, got %+v", got)
	}
}

func TestMatchPathNoHit(t *testing.T) {
	idx := buildIndex(&models.Matter{ID: 1, Name: "Smith John Divorce"})
	if got := idx.MatchPath("Archive/Misc/2019"); got != nil {
		t.Fatalf("expected no match, got %+v", got)
	}
}
