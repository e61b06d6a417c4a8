package timeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var srtTimingRegex = regexp.MustCompile(
	`^(\d{2,}):(\d{2}):(\d{2}),(\d{3})\s*-->\s*(\d{2,}):(\d{2}):(\d{2}),(\d{3})$`,
)

// ParseSRT reads a SubRip document: blocks of index line, timing
// line, zero or more text lines, blank separator. The whole document
// must be well formed; a malformed block fails the parse with
// *ParseError rather than returning a partial timeline. Indices found
// in the file are ignored and re-derived, so the returned timeline is
// numbered 1..N in document order.
func ParseSRT(r io.Reader) (*Timeline, error) {
	const (
		wantIndex = iota
		wantTiming
		wantText
	)

	t := New()
	scanner := bufio.NewScanner(r)
	state := wantIndex
	lineNum := 0

	var current Segment
	var textLines []string

	flush := func() {
		current.Text = strings.TrimSpace(strings.Join(textLines, "\n"))
		t.Segments = append(t.Segments, current)
		current = Segment{}
		textLines = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		lineNum++

		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		switch state {
		case wantIndex:
			if strings.TrimSpace(line) == "" {
				continue
			}
			if _, err := strconv.Atoi(strings.TrimSpace(line)); err != nil {
				return nil, &ParseError{
					Line: lineNum,
					Msg:  fmt.Sprintf("want segment index, got %q", line),
				}
			}
			state = wantTiming

		case wantTiming:
			matches := srtTimingRegex.FindStringSubmatch(strings.TrimSpace(line))
			if matches == nil {
				return nil, &ParseError{
					Line: lineNum,
					Msg:  fmt.Sprintf("want timing line, got %q", line),
				}
			}
			current.StartMS = srtFieldsToMS(matches[1], matches[2], matches[3], matches[4])
			current.EndMS = srtFieldsToMS(matches[5], matches[6], matches[7], matches[8])
			if current.EndMS < current.StartMS {
				return nil, &ParseError{
					Line: lineNum,
					Msg:  fmt.Sprintf("segment ends at %d before it starts at %d", current.EndMS, current.StartMS),
				}
			}
			state = wantText

		case wantText:
			if strings.TrimSpace(line) == "" {
				flush()
				state = wantIndex
				continue
			}
			textLines = append(textLines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading subtitle input: %w", err)
	}

	switch state {
	case wantTiming:
		return nil, &ParseError{Line: lineNum, Msg: "document ends before timing line"}
	case wantText:
		flush()
	}

	t.Renumber()
	return t, nil
}

// srtFieldsToMS converts regex-captured timing fields. The capture
// groups guarantee digits, so conversion cannot fail.
func srtFieldsToMS(hh, mm, ss, mmm string) int64 {
	h, _ := strconv.Atoi(hh)
	m, _ := strconv.Atoi(mm)
	s, _ := strconv.Atoi(ss)
	ms, _ := strconv.Atoi(mmm)

	return int64(h)*3600000 + int64(m)*60000 + int64(s)*1000 + int64(ms)
}

// MarshalSRT renders the canonical SubRip form: sequential 1-based
// indices, comma millisecond separator, blank line after each block.
func (t *Timeline) MarshalSRT() []byte {
	var sb strings.Builder
	for i, seg := range t.Segments {
		sb.WriteString(strconv.Itoa(i + 1))
		sb.WriteByte('\n')
		sb.WriteString(formatSRTTime(seg.StartMS))
		sb.WriteString(" --> ")
		sb.WriteString(formatSRTTime(seg.EndMS))
		sb.WriteByte('\n')
		sb.WriteString(seg.Text)
		sb.WriteString("\n\n")
	}
	return []byte(sb.String())
}

// WriteSRT emits t in canonical SubRip form.
func WriteSRT(w io.Writer, t *Timeline) error {
	_, err := w.Write(t.MarshalSRT())
	return err
}

// ReadFile parses the SubRip document at path.
func ReadFile(path string) (*Timeline, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitle file: %w", err)
	}
	defer file.Close()

	return ParseSRT(file)
}

// WriteFile writes t to path in SubRip form, creating parent
// directories as needed.
func (t *Timeline) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, t.MarshalSRT(), 0644)
}

func formatSRTTime(ms int64) string {
	hours := ms / 3600000
	minutes := (ms / 60000) % 60
	seconds := (ms / 1000) % 60
	millis := ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}
