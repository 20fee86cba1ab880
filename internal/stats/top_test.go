package stats

import (
	"testing"

	"github.com/verte-zerg/cvsheet/internal/model"
)

func TestTopEntries(t *testing.T) {
	var h model.Histogram
	for _, l := range []string{"b", "b", "b", "a", "a", "c", "d", "d"} {
		h.Add(l)
	}
	top := TopEntries(h, 3)
	if len(top) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(top))
	}
	if top[0].Label != "b" || top[1].Label != "a" || top[2].Label != "d" {
		t.Fatalf("unexpected order: %v", top)
	}
	if len(TopEntries(h, 0)) != 4 {
		t.Fatalf("expected all entries for n <= 0")
	}
	if TopEntries(model.Histogram{}, 2) != nil {
		t.Fatalf("expected nil for empty histogram")
	}
}
