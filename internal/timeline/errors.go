package timeline

import "fmt"

// ParseError reports a malformed subtitle document. The whole parse
// fails; no partial timeline is returned.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at line %d: %s", e.Line, e.Msg)
}

// FormatError reports a timestamp string that cannot be read.
type FormatError struct {
	Input string
	Msg   string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid timestamp %q: %s", e.Input, e.Msg)
}

// NotFoundError reports a segment index that does not resolve.
type NotFoundError struct {
	Index int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no segment with index %d", e.Index)
}

// ValidationError reports an edit whose preconditions are not met.
// The timeline is left unchanged.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}
