package cli

import (
	"testing"
	"time"

	"github.com/autodub/autodub/internal/timeline"
)

func TestTimelineEnd(t *testing.T) {
	tl := &timeline.Timeline{Segments: []timeline.Segment{
		{Index: 1, StartMS: 0, EndMS: 2000},
		{Index: 2, StartMS: 2500, EndMS: 9300},
	}}
	if got, want := timelineEnd(tl), 9300*time.Millisecond; got != want {
		t.Errorf("timelineEnd = %v, want %v", got, want)
	}

	if got := timelineEnd(timeline.New()); got != 0 {
		t.Errorf("timelineEnd of empty timeline = %v, want 0", got)
	}
}
