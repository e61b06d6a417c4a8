package timeline

import (
	"fmt"
	"sort"
	"strings"
)

// Edge names a segment boundary for Crop.
type Edge string

const (
	EdgeStart Edge = "start"
	EdgeEnd   Edge = "end"
)

// DefaultInsertDurationMS is the span given to segments created by
// InsertAfter until the user retimes them.
const DefaultInsertDurationMS int64 = 5000

// Crop moves one boundary of the addressed segment to ms. A move to a
// negative time or one that would put the start after the end is
// rejected with *ValidationError, leaving the timeline unchanged.
func (t *Timeline) Crop(index int, edge Edge, ms int64) error {
	pos, err := t.find(index)
	if err != nil {
		return err
	}
	if ms < 0 {
		return &ValidationError{Msg: fmt.Sprintf("crop to negative time %d", ms)}
	}

	seg := &t.Segments[pos]
	switch edge {
	case EdgeStart:
		if ms > seg.EndMS {
			return &ValidationError{Msg: fmt.Sprintf(
				"start %d would pass end %d", ms, seg.EndMS)}
		}
		seg.StartMS = ms
	case EdgeEnd:
		if ms < seg.StartMS {
			return &ValidationError{Msg: fmt.Sprintf(
				"end %d would pass start %d", ms, seg.StartMS)}
		}
		seg.EndMS = ms
	default:
		return &ValidationError{Msg: fmt.Sprintf("unknown edge %q", edge)}
	}

	t.Renumber()
	return nil
}

// Retime sets both boundaries of the addressed segment. An inverted
// or negative span is rejected with *ValidationError.
func (t *Timeline) Retime(index int, startMS, endMS int64) error {
	pos, err := t.find(index)
	if err != nil {
		return err
	}
	if startMS < 0 || endMS < startMS {
		return &ValidationError{Msg: fmt.Sprintf("invalid span %d..%d", startMS, endMS)}
	}

	t.Segments[pos].StartMS = startMS
	t.Segments[pos].EndMS = endMS
	t.Renumber()
	return nil
}

// Merge combines the addressed segments into the earliest one.
// Indices that do not resolve are ignored; at least two must remain
// or the merge is rejected with *ValidationError. The retained
// segment spans the earliest start to the latest end and joins the
// texts with single spaces in index order. Merge returns the merged
// segment and the removed indices as numbered before the merge.
func (t *Timeline) Merge(indices []int) (Segment, []int, error) {
	valid := make([]int, 0, len(indices))
	seen := make(map[int]bool)
	for _, index := range indices {
		if index < 1 || index > len(t.Segments) || seen[index] {
			continue
		}
		seen[index] = true
		valid = append(valid, index)
	}
	if len(valid) < 2 {
		return Segment{}, nil, &ValidationError{Msg: "merge needs at least two segments"}
	}
	sort.Ints(valid)

	startMS := t.Segments[valid[0]-1].StartMS
	endMS := t.Segments[valid[0]-1].EndMS
	texts := make([]string, 0, len(valid))
	for _, index := range valid {
		seg := t.Segments[index-1]
		if seg.StartMS < startMS {
			startMS = seg.StartMS
		}
		if seg.EndMS > endMS {
			endMS = seg.EndMS
		}
		if seg.Text != "" {
			texts = append(texts, seg.Text)
		}
	}

	target := valid[0] - 1
	t.Segments[target].StartMS = startMS
	t.Segments[target].EndMS = endMS
	t.Segments[target].Text = strings.Join(texts, " ")

	removed := append([]int(nil), valid[1:]...)
	// delete from the back so earlier positions stay valid
	for i := len(removed) - 1; i >= 0; i-- {
		pos := removed[i] - 1
		t.Segments = append(t.Segments[:pos], t.Segments[pos+1:]...)
	}

	t.Renumber()
	return t.Segments[target], removed, nil
}

// SplitAt divides the addressed segment at a playback position. Both
// halves keep the full text; the caller edits them afterwards. The
// position must fall within the segment's span.
func (t *Timeline) SplitAt(index int, ms int64) (Segment, Segment, error) {
	pos, err := t.find(index)
	if err != nil {
		return Segment{}, Segment{}, err
	}

	seg := t.Segments[pos]
	if ms < seg.StartMS || ms > seg.EndMS {
		return Segment{}, Segment{}, &ValidationError{Msg: fmt.Sprintf(
			"position %d outside segment span %d..%d", ms, seg.StartMS, seg.EndMS)}
	}

	first := seg
	first.EndMS = ms
	second := seg
	second.StartMS = ms

	t.replaceWithPair(pos, first, second)
	return t.Segments[pos], t.Segments[pos+1], nil
}

// SplitText divides the addressed segment at a cursor position in its
// text. The boundary lands at the proportional time offset and each
// half receives its side of the text, trimmed. A cursor at either end
// of the text, or one that would leave an empty half, is rejected
// with *ValidationError.
func (t *Timeline) SplitText(index int, cursor int) (Segment, Segment, error) {
	pos, err := t.find(index)
	if err != nil {
		return Segment{}, Segment{}, err
	}

	seg := t.Segments[pos]
	runes := []rune(seg.Text)
	if cursor <= 0 || cursor >= len(runes) {
		return Segment{}, Segment{}, &ValidationError{Msg: fmt.Sprintf(
			"cursor %d outside text of %d characters", cursor, len(runes))}
	}

	before := strings.TrimSpace(string(runes[:cursor]))
	after := strings.TrimSpace(string(runes[cursor:]))
	if before == "" || after == "" {
		return Segment{}, Segment{}, &ValidationError{Msg: "split would leave an empty half"}
	}

	splitMS := seg.StartMS + seg.DurationMS()*int64(cursor)/int64(len(runes))

	first := seg
	first.EndMS = splitMS
	first.Text = before
	second := seg
	second.StartMS = splitMS
	second.Text = after

	t.replaceWithPair(pos, first, second)
	return t.Segments[pos], t.Segments[pos+1], nil
}

// InsertAfter creates an empty placeholder segment after the
// addressed one, or at the end of the timeline when index is 0. The
// new segment starts where its predecessor ends and runs for
// DefaultInsertDurationMS, clipped to the next segment's start when
// that would overlap. It returns the new segment.
func (t *Timeline) InsertAfter(index int) (Segment, error) {
	pos := len(t.Segments)
	if index != 0 {
		p, err := t.find(index)
		if err != nil {
			return Segment{}, err
		}
		pos = p + 1
	}

	var startMS int64
	if pos > 0 {
		startMS = t.Segments[pos-1].EndMS
	}
	endMS := startMS + DefaultInsertDurationMS
	if pos < len(t.Segments) && endMS > t.Segments[pos].StartMS {
		endMS = t.Segments[pos].StartMS
	}
	if endMS < startMS {
		endMS = startMS
	}

	t.Segments = append(t.Segments, Segment{})
	copy(t.Segments[pos+1:], t.Segments[pos:])
	t.Segments[pos] = Segment{StartMS: startMS, EndMS: endMS}

	t.Renumber()
	return t.Segments[pos], nil
}

// Delete removes the addressed segment.
func (t *Timeline) Delete(index int) error {
	pos, err := t.find(index)
	if err != nil {
		return err
	}

	t.Segments = append(t.Segments[:pos], t.Segments[pos+1:]...)
	t.Renumber()
	return nil
}

// replaceWithPair swaps the segment at pos for two segments.
func (t *Timeline) replaceWithPair(pos int, first, second Segment) {
	t.Segments[pos] = first
	t.Segments = append(t.Segments, Segment{})
	copy(t.Segments[pos+2:], t.Segments[pos+1:])
	t.Segments[pos+1] = second
	t.Renumber()
}
