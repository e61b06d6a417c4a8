package timeline

import (
	"math"
	"strings"
	"time"
)

// DefaultGap is the silence length that closes a segment during
// grouping. Anything shorter is treated as a pause within one phrase.
const DefaultGap = 500 * time.Millisecond

// Group converts a transcription token stream into a timeline. A
// speech token starting closer than gap to the running segment's end
// extends it, joined with a single space; a larger gap closes the
// segment and opens a new one from the token. Non-speech tokens are
// discarded and never split a segment. With gap 0 every speech token
// becomes its own segment.
//
// Tokens must already be ordered by start time. Group never re-sorts:
// transcription providers emit tokens in order, and sorting here
// could regroup phrases across an intended boundary.
func Group(tokens []TimedToken, gap time.Duration) *Timeline {
	t := New()
	gapSeconds := gap.Seconds()

	open := false
	var startSec, endSec float64
	var text strings.Builder

	flush := func() {
		t.Segments = append(t.Segments, Segment{
			StartMS: secondsToMS(startSec),
			EndMS:   secondsToMS(endSec),
			Text:    strings.TrimSpace(text.String()),
		})
		text.Reset()
	}

	for _, tok := range tokens {
		if tok.Kind != KindSpeech {
			continue
		}

		if open && tok.Start-endSec < gapSeconds {
			text.WriteByte(' ')
			text.WriteString(tok.Text)
			endSec = tok.End
			continue
		}

		if open {
			flush()
		}
		open = true
		startSec = tok.Start
		endSec = tok.End
		text.WriteString(tok.Text)
	}
	if open {
		flush()
	}

	t.Renumber()
	return t
}

func secondsToMS(seconds float64) int64 {
	return int64(math.Round(seconds * 1000))
}
