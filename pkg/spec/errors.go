package spec

import "fmt"

// ParseError is malformed spec syntax. Fatal: it aborts the whole spec
// rather than guessing at the author's intent.
type ParseError struct {
	Row     int
	Col     int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("spec parse error at row %d, column %d: %s", e.Row, e.Col, e.Message)
}

// UnknownRowCodeError means a first-column value is neither a special row
// code nor a station code known to the schedule.
type UnknownRowCodeError struct {
	Row  int
	Code string
}

func (e *UnknownRowCodeError) Error() string {
	return fmt.Sprintf("unknown row code %q at row %d", e.Code, e.Row)
}

// UnknownColumnCodeError means a header value is neither a special column
// code nor a parseable train spec.
type UnknownColumnCodeError struct {
	Col  int
	Code string
}

func (e *UnknownColumnCodeError) Error() string {
	return fmt.Sprintf("unknown column code %q at column %d", e.Code, e.Col)
}
