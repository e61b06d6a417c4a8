// Package timeline holds the subtitle timeline model: an ordered
// sequence of timed text segments with SubRip serialization, a
// grouping algorithm that turns word-level transcription output into
// phrase-level segments, and the edit operations a subtitle editor
// needs. Every operation is a plain transformation of the timeline
// value it is called on; the package keeps no hidden state and never
// starts goroutines, so a timeline is safe to use from any one
// goroutine at a time.
package timeline

// Segment is a single timed caption unit.
type Segment struct {
	Index   int
	StartMS int64
	EndMS   int64
	Text    string
}

// DurationMS returns the segment length in milliseconds.
func (s Segment) DurationMS() int64 {
	return s.EndMS - s.StartMS
}

// TimedToken is one word-level unit of a transcription result, as
// handed over by a transcription provider.
type TimedToken struct {
	Kind  string  `json:"kind"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// KindSpeech marks a token carrying spoken content. Tokens of any
// other kind (punctuation, audio events) are discarded by Group.
const KindSpeech = "speech"

// Timeline is the ordered sequence of segments for one media item.
// Segments are kept ascending by start time and indices are rewritten
// to 1..N after every mutating operation, so a segment's Index always
// matches its 1-based position. The zero value is an empty, usable
// timeline.
type Timeline struct {
	Segments []Segment
}

// New returns an empty timeline.
func New() *Timeline {
	return &Timeline{}
}

// Len returns the number of segments.
func (t *Timeline) Len() int {
	return len(t.Segments)
}

// Renumber rewrites segment indices to match 1-based position.
// Idempotent; called by every mutating operation.
func (t *Timeline) Renumber() {
	for i := range t.Segments {
		t.Segments[i].Index = i + 1
	}
}

// SegmentAt returns the first segment whose span contains ms,
// inclusive on both ends. Segments are checked in timeline order, so
// the earliest one wins when spans overlap.
func (t *Timeline) SegmentAt(ms int64) (*Segment, bool) {
	for i := range t.Segments {
		if t.Segments[i].StartMS <= ms && ms <= t.Segments[i].EndMS {
			return &t.Segments[i], true
		}
	}
	return nil, false
}

// find maps a 1-based segment index to its slice position.
func (t *Timeline) find(index int) (int, error) {
	if index < 1 || index > len(t.Segments) {
		return 0, &NotFoundError{Index: index}
	}
	return index - 1, nil
}
