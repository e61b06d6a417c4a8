package timeline

import (
	"errors"
	"testing"
)

func testTimeline(segs ...Segment) *Timeline {
	tl := &Timeline{Segments: segs}
	tl.Renumber()
	return tl
}

func threeSegments() *Timeline {
	return testTimeline(
		Segment{StartMS: 0, EndMS: 1000, Text: "one"},
		Segment{StartMS: 2000, EndMS: 3000, Text: "two"},
		Segment{StartMS: 4000, EndMS: 5000, Text: "three"},
	)
}

func checkIndices(t *testing.T, tl *Timeline) {
	t.Helper()
	for i, seg := range tl.Segments {
		if seg.Index != i+1 {
			t.Fatalf("segment at position %d has index %d", i, seg.Index)
		}
	}
}

func TestCrop(t *testing.T) {
	tl := threeSegments()

	if err := tl.Crop(1, EdgeEnd, 1500); err != nil {
		t.Fatalf("crop failed: %v", err)
	}
	if tl.Segments[0].EndMS != 1500 {
		t.Errorf("expected end 1500, got %d", tl.Segments[0].EndMS)
	}

	if err := tl.Crop(2, EdgeStart, 2500); err != nil {
		t.Fatalf("crop failed: %v", err)
	}
	if tl.Segments[1].StartMS != 2500 {
		t.Errorf("expected start 2500, got %d", tl.Segments[1].StartMS)
	}
	checkIndices(t, tl)
}

func TestCropRejected(t *testing.T) {
	tl := threeSegments()
	var validationErr *ValidationError

	// start moved past end
	if err := tl.Crop(2, EdgeStart, 3500); !errors.As(err, &validationErr) {
		t.Errorf("expected *ValidationError, got %v", err)
	}
	// end moved before start
	if err := tl.Crop(2, EdgeEnd, 1500); !errors.As(err, &validationErr) {
		t.Errorf("expected *ValidationError, got %v", err)
	}
	// negative time
	if err := tl.Crop(1, EdgeStart, -5); !errors.As(err, &validationErr) {
		t.Errorf("expected *ValidationError, got %v", err)
	}
	// unknown edge
	if err := tl.Crop(1, "middle", 500); !errors.As(err, &validationErr) {
		t.Errorf("expected *ValidationError, got %v", err)
	}

	if tl.Segments[1].StartMS != 2000 || tl.Segments[1].EndMS != 3000 {
		t.Errorf("timeline changed by rejected crop")
	}
}

func TestCropNotFound(t *testing.T) {
	tl := threeSegments()

	err := tl.Crop(9, EdgeEnd, 1500)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
	if notFound.Index != 9 {
		t.Errorf("expected index 9 in error, got %d", notFound.Index)
	}
}

func TestRetime(t *testing.T) {
	tl := threeSegments()

	if err := tl.Retime(2, 1800, 3200); err != nil {
		t.Fatalf("retime failed: %v", err)
	}
	if tl.Segments[1].StartMS != 1800 || tl.Segments[1].EndMS != 3200 {
		t.Errorf(
			"expected span 1800..3200, got %d..%d",
			tl.Segments[1].StartMS, tl.Segments[1].EndMS,
		)
	}

	err := tl.Retime(2, 4000, 3000)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if tl.Segments[1].StartMS != 1800 {
		t.Errorf("timeline changed by rejected retime")
	}
}

func TestMerge(t *testing.T) {
	tl := threeSegments()

	merged, removed, err := tl.Merge([]int{1, 2})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if tl.Len() != 2 {
		t.Fatalf("expected 2 segments, got %d", tl.Len())
	}
	want := Segment{Index: 1, StartMS: 0, EndMS: 3000, Text: "one two"}
	if merged != want {
		t.Errorf("expected %+v, got %+v", want, merged)
	}
	if len(removed) != 1 || removed[0] != 2 {
		t.Errorf("expected removed indices [2], got %v", removed)
	}
	if tl.Segments[1].Text != "three" || tl.Segments[1].Index != 2 {
		t.Errorf(
			"expected 'three' at index 2, got %q at %d",
			tl.Segments[1].Text, tl.Segments[1].Index,
		)
	}
}

func TestMergeRequiresTwoValid(t *testing.T) {
	tl := threeSegments()
	var validationErr *ValidationError

	if _, _, err := tl.Merge([]int{1}); !errors.As(err, &validationErr) {
		t.Errorf("expected *ValidationError, got %v", err)
	}
	if _, _, err := tl.Merge([]int{1, 99}); !errors.As(err, &validationErr) {
		t.Errorf("expected *ValidationError for one valid index, got %v", err)
	}
	if _, _, err := tl.Merge(nil); !errors.As(err, &validationErr) {
		t.Errorf("expected *ValidationError, got %v", err)
	}

	if tl.Len() != 3 {
		t.Errorf("timeline changed by rejected merge")
	}
}

func TestMergeIgnoresInvalidIndices(t *testing.T) {
	tl := threeSegments()

	merged, removed, err := tl.Merge([]int{2, 3, 99})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if merged.Text != "two three" {
		t.Errorf("expected 'two three', got %q", merged.Text)
	}
	if merged.StartMS != 2000 || merged.EndMS != 5000 {
		t.Errorf("expected span 2000..5000, got %d..%d", merged.StartMS, merged.EndMS)
	}
	if len(removed) != 1 || removed[0] != 3 {
		t.Errorf("expected removed indices [3], got %v", removed)
	}
	if tl.Len() != 2 {
		t.Errorf("expected 2 segments, got %d", tl.Len())
	}
}

func TestSplitAt(t *testing.T) {
	tl := testTimeline(Segment{StartMS: 1000, EndMS: 5000, Text: "hello world"})

	first, second, err := tl.SplitAt(1, 3000)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}

	if first.StartMS != 1000 || first.EndMS != 3000 {
		t.Errorf("first: expected span 1000..3000, got %d..%d", first.StartMS, first.EndMS)
	}
	if second.StartMS != 3000 || second.EndMS != 5000 {
		t.Errorf("second: expected span 3000..5000, got %d..%d", second.StartMS, second.EndMS)
	}
	if first.Text != "hello world" || second.Text != "hello world" {
		t.Errorf("time split should keep the full text on both halves")
	}
	if tl.Len() != 2 {
		t.Fatalf("expected 2 segments, got %d", tl.Len())
	}
	checkIndices(t, tl)
}

func TestSplitAtOutsideBounds(t *testing.T) {
	tl := testTimeline(Segment{StartMS: 1000, EndMS: 5000, Text: "hello"})

	_, _, err := tl.SplitAt(1, 6000)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if tl.Len() != 1 {
		t.Errorf("timeline changed by rejected split")
	}
}

func TestSplitText(t *testing.T) {
	tl := testTimeline(Segment{StartMS: 0, EndMS: 1000, Text: "hello world"})

	// 11 characters, cursor after "hello": boundary at 1000*5/11
	first, second, err := tl.SplitText(1, 5)
	if err != nil {
		t.Fatalf("split failed: %v", err)
	}

	if first.Text != "hello" || second.Text != "world" {
		t.Errorf("expected 'hello'/'world', got %q/%q", first.Text, second.Text)
	}
	if first.EndMS != 454 || second.StartMS != 454 {
		t.Errorf("expected boundary at 454, got %d and %d", first.EndMS, second.StartMS)
	}
	if first.StartMS != 0 || second.EndMS != 1000 {
		t.Errorf("outer bounds changed: %d..%d", first.StartMS, second.EndMS)
	}
	checkIndices(t, tl)
}

func TestSplitTextCursorOutOfRange(t *testing.T) {
	tl := testTimeline(Segment{StartMS: 0, EndMS: 1000, Text: "hello world"})
	var validationErr *ValidationError

	for _, cursor := range []int{-1, 0, 11, 20} {
		_, _, err := tl.SplitText(1, cursor)
		if !errors.As(err, &validationErr) {
			t.Errorf("cursor %d: expected *ValidationError, got %v", cursor, err)
		}
	}
	if tl.Len() != 1 {
		t.Errorf("timeline changed by rejected split")
	}
}

func TestSplitTextRejectsEmptyHalf(t *testing.T) {
	// hand-built segment with untrimmed text so a half can trim away
	tl := testTimeline(Segment{StartMS: 0, EndMS: 1000, Text: "  x"})

	_, _, err := tl.SplitText(1, 2)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestInsertAfter(t *testing.T) {
	tl := threeSegments()

	seg, err := tl.InsertAfter(1)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	// 5s default duration clipped to the next segment's start
	if seg.Index != 2 {
		t.Errorf("expected new segment at index 2, got %d", seg.Index)
	}
	if seg.StartMS != 1000 || seg.EndMS != 2000 {
		t.Errorf("expected span 1000..2000, got %d..%d", seg.StartMS, seg.EndMS)
	}
	if seg.Text != "" {
		t.Errorf("expected empty placeholder text, got %q", seg.Text)
	}
	if tl.Len() != 4 {
		t.Fatalf("expected 4 segments, got %d", tl.Len())
	}
	if tl.Segments[2].Text != "two" || tl.Segments[2].Index != 3 {
		t.Errorf(
			"expected 'two' pushed to index 3, got %q at %d",
			tl.Segments[2].Text, tl.Segments[2].Index,
		)
	}
	checkIndices(t, tl)
}

func TestInsertAfterAtEnd(t *testing.T) {
	tl := threeSegments()

	seg, err := tl.InsertAfter(0)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if seg.Index != 4 {
		t.Errorf("expected index 4, got %d", seg.Index)
	}
	if seg.StartMS != 5000 || seg.EndMS != 10000 {
		t.Errorf("expected span 5000..10000, got %d..%d", seg.StartMS, seg.EndMS)
	}
}

func TestInsertAfterEmptyTimeline(t *testing.T) {
	tl := New()

	seg, err := tl.InsertAfter(0)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	if seg.Index != 1 || seg.StartMS != 0 || seg.EndMS != 5000 {
		t.Errorf("expected sole segment 0..5000, got index %d span %d..%d",
			seg.Index, seg.StartMS, seg.EndMS)
	}
}

func TestInsertAfterOverlappingNext(t *testing.T) {
	tl := testTimeline(
		Segment{StartMS: 0, EndMS: 3000, Text: "a"},
		Segment{StartMS: 2000, EndMS: 4000, Text: "b"},
	)

	seg, err := tl.InsertAfter(1)
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	// next segment already starts before the new start; collapse to
	// zero length rather than inverting
	if seg.StartMS != 3000 || seg.EndMS != 3000 {
		t.Errorf("expected span 3000..3000, got %d..%d", seg.StartMS, seg.EndMS)
	}
}

func TestInsertAfterNotFound(t *testing.T) {
	tl := threeSegments()

	_, err := tl.InsertAfter(7)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	tl := threeSegments()

	if err := tl.Delete(2); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if tl.Len() != 2 {
		t.Fatalf("expected 2 segments, got %d", tl.Len())
	}
	if tl.Segments[1].Text != "three" || tl.Segments[1].Index != 2 {
		t.Errorf(
			"expected 'three' at index 2, got %q at %d",
			tl.Segments[1].Text, tl.Segments[1].Index,
		)
	}

	err := tl.Delete(5)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected *NotFoundError, got %v", err)
	}
}

func TestRenumberIdempotent(t *testing.T) {
	tl := threeSegments()
	tl.Segments[0].Index = 42
	tl.Segments[2].Index = 7

	tl.Renumber()
	snapshot := append([]Segment(nil), tl.Segments...)

	tl.Renumber()
	for i := range tl.Segments {
		if tl.Segments[i] != snapshot[i] {
			t.Errorf("second renumber changed segment %d", i+1)
		}
	}
	checkIndices(t, tl)
}

func TestIndicesAfterEditSequence(t *testing.T) {
	tl := threeSegments()

	if _, err := tl.InsertAfter(2); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	checkIndices(t, tl)

	if err := tl.Delete(1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	checkIndices(t, tl)

	if _, _, err := tl.SplitAt(1, tl.Segments[0].StartMS); err != nil {
		t.Fatalf("split failed: %v", err)
	}
	checkIndices(t, tl)

	if _, _, err := tl.Merge([]int{1, 2}); err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	checkIndices(t, tl)
}
