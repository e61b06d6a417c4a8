package timeline

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSRT(t *testing.T) {
	content := `1
00:00:01,000 --> 00:00:04,000
Hello, world!

2
00:00:05,500 --> 00:00:08,200
This is a test.
With multiple lines.

3
00:00:10,000 --> 00:00:12,500
Final subtitle.
`
	tl, err := ParseSRT(strings.NewReader(content))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tl.Len() != 3 {
		t.Fatalf("expected 3 segments, got %d", tl.Len())
	}

	first := tl.Segments[0]
	if first.Index != 1 || first.StartMS != 1000 || first.EndMS != 4000 {
		t.Errorf(
			"segment 1: expected index 1 span 1000..4000, got index %d span %d..%d",
			first.Index, first.StartMS, first.EndMS,
		)
	}
	if first.Text != "Hello, world!" {
		t.Errorf("segment 1: expected 'Hello, world!', got %q", first.Text)
	}

	expectedText := "This is a test.\nWith multiple lines."
	if tl.Segments[1].Text != expectedText {
		t.Errorf("segment 2: expected %q, got %q", expectedText, tl.Segments[1].Text)
	}
	if tl.Segments[1].StartMS != 5500 || tl.Segments[1].EndMS != 8200 {
		t.Errorf(
			"segment 2: expected span 5500..8200, got %d..%d",
			tl.Segments[1].StartMS, tl.Segments[1].EndMS,
		)
	}
}

func TestParseSRTRenumbers(t *testing.T) {
	content := `7
00:00:01,000 --> 00:00:02,000
one

12
00:00:03,000 --> 00:00:04,000
two
`
	tl, err := ParseSRT(strings.NewReader(content))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tl.Segments[0].Index != 1 || tl.Segments[1].Index != 2 {
		t.Errorf(
			"expected indices 1, 2, got %d, %d",
			tl.Segments[0].Index, tl.Segments[1].Index,
		)
	}
}

func TestParseSRTBOMAndCRLF(t *testing.T) {
	content := "\ufeff1\r\n00:00:01,000 --> 00:00:02,000\r\nHello\r\n\r\n"

	tl, err := ParseSRT(strings.NewReader(content))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tl.Len() != 1 {
		t.Fatalf("expected 1 segment, got %d", tl.Len())
	}
	if tl.Segments[0].Text != "Hello" {
		t.Errorf("expected 'Hello', got %q", tl.Segments[0].Text)
	}
}

func TestParseSRTEmpty(t *testing.T) {
	tl, err := ParseSRT(strings.NewReader(""))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if tl.Len() != 0 {
		t.Errorf("expected empty timeline, got %d segments", tl.Len())
	}
}

func TestParseSRTMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "non-integer index",
			content: "one\n00:00:01,000 --> 00:00:02,000\nHello\n",
		},
		{
			name:    "unparsable timestamp",
			content: "1\n00:00:01 --> 00:00:02\nHello\n",
		},
		{
			name:    "missing arrow separator",
			content: "1\n00:00:01,000 00:00:02,000\nHello\n",
		},
		{
			name:    "end before start",
			content: "1\n00:00:05,000 --> 00:00:01,000\nHello\n",
		},
		{
			name:    "document ends after index",
			content: "1\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSRT(strings.NewReader(tt.content))
			if err == nil {
				t.Fatal("expected parse error")
			}
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Errorf("expected *ParseError, got %T: %v", err, err)
			}
		})
	}
}

func TestSRTRoundTrip(t *testing.T) {
	original := &Timeline{Segments: []Segment{
		{StartMS: 0, EndMS: 700, Text: "hi there"},
		{StartMS: 2000, EndMS: 2300, Text: "bye"},
		{StartMS: 2300, EndMS: 2300, Text: "zero length"},
		{StartMS: 3661042, EndMS: 3700500, Text: "line one\nline two"},
	}}
	original.Renumber()

	parsed, err := ParseSRT(bytes.NewReader(original.MarshalSRT()))
	if err != nil {
		t.Fatalf("round trip parse failed: %v", err)
	}
	if parsed.Len() != original.Len() {
		t.Fatalf("expected %d segments, got %d", original.Len(), parsed.Len())
	}
	for i := range original.Segments {
		if parsed.Segments[i] != original.Segments[i] {
			t.Errorf(
				"segment %d: expected %+v, got %+v",
				i+1, original.Segments[i], parsed.Segments[i],
			)
		}
	}
}

func TestSRTRoundTripEmptyText(t *testing.T) {
	original := &Timeline{Segments: []Segment{
		{StartMS: 0, EndMS: 1000, Text: "before"},
		{StartMS: 1000, EndMS: 6000, Text: ""},
		{StartMS: 7000, EndMS: 8000, Text: "after"},
	}}
	original.Renumber()

	parsed, err := ParseSRT(bytes.NewReader(original.MarshalSRT()))
	if err != nil {
		t.Fatalf("round trip parse failed: %v", err)
	}
	if parsed.Len() != 3 {
		t.Fatalf("expected 3 segments, got %d", parsed.Len())
	}
	if parsed.Segments[1].Text != "" {
		t.Errorf("expected empty text, got %q", parsed.Segments[1].Text)
	}
}

func TestMarshalSRTFormat(t *testing.T) {
	tl := &Timeline{Segments: []Segment{
		{StartMS: 1000, EndMS: 135789, Text: "hello"},
	}}
	tl.Renumber()

	want := "1\n00:00:01,000 --> 00:02:15,789\nhello\n\n"
	if got := string(tl.MarshalSRT()); got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestReadWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "test.srt")

	tl := &Timeline{Segments: []Segment{
		{StartMS: 1000, EndMS: 2000, Text: "hello"},
	}}
	tl.Renumber()

	if err := tl.WriteFile(path); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	loaded, err := ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if loaded.Len() != 1 || loaded.Segments[0] != tl.Segments[0] {
		t.Errorf("expected %+v, got %+v", tl.Segments, loaded.Segments)
	}
}
