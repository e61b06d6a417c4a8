package timeline

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTimestamp renders a millisecond position as HH:MM:SS.mmm for
// display. The SubRip comma form is used only when serializing files.
func FormatTimestamp(ms int64) string {
	hours := ms / 3600000
	minutes := (ms / 60000) % 60
	seconds := (ms / 1000) % 60
	millis := ms % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}

// ParseTimestamp reads a HH:MM:SS.mmm string back into milliseconds.
// A comma before the fractional part is accepted, the fractional part
// is optional, and short or long fractions are padded or truncated to
// three digits. Anything that is not three colon-delimited numeric
// fields fails with *FormatError.
func ParseTimestamp(s string) (int64, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	parts := strings.Split(normalized, ":")
	if len(parts) != 3 {
		return 0, &FormatError{Input: s, Msg: "want HH:MM:SS.mmm"}
	}

	hours, err := parseTimeField(parts[0])
	if err != nil {
		return 0, &FormatError{Input: s, Msg: "bad hours field"}
	}
	minutes, err := parseTimeField(parts[1])
	if err != nil {
		return 0, &FormatError{Input: s, Msg: "bad minutes field"}
	}

	secField := parts[2]
	fraction := ""
	if i := strings.Index(secField, "."); i >= 0 {
		fraction = secField[i+1:]
		secField = secField[:i]
	}
	seconds, err := parseTimeField(secField)
	if err != nil {
		return 0, &FormatError{Input: s, Msg: "bad seconds field"}
	}

	// pad or truncate the fraction to exactly three digits
	for len(fraction) < 3 {
		fraction += "0"
	}
	fraction = fraction[:3]
	millis, err := parseTimeField(fraction)
	if err != nil {
		return 0, &FormatError{Input: s, Msg: "bad millisecond field"}
	}

	return int64(hours)*3600000 +
		int64(minutes)*60000 +
		int64(seconds)*1000 +
		int64(millis), nil
}

func parseTimeField(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}
