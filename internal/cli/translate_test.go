package cli

import (
	"testing"

	"github.com/autodub/autodub/internal/timeline"
)

func TestApplyOverlay(t *testing.T) {
	tl := &timeline.Timeline{Segments: []timeline.Segment{
		{Index: 1, StartMS: 0, EndMS: 1000, Text: "Hallo Welt"},
		{Index: 2, StartMS: 1500, EndMS: 2500, Text: ""},
		{Index: 3, StartMS: 3000, EndMS: 4000, Text: "Tokyo"},
	}}
	originals := []string{"Hello world", "", "Tokyo"}

	applyOverlay(tl, originals)

	if got, want := tl.Segments[0].Text, "Hallo Welt\nHello world"; got != want {
		t.Errorf("segment 1 text = %q, want %q", got, want)
	}
	if got := tl.Segments[1].Text; got != "" {
		t.Errorf("segment 2 text = %q, want empty", got)
	}
	// an identical translation is not doubled
	if got, want := tl.Segments[2].Text, "Tokyo"; got != want {
		t.Errorf("segment 3 text = %q, want %q", got, want)
	}
}
