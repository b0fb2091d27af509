package parser

import (
	"errors"
	"fmt"
)

var (
	ErrMissingStructOpening = errors.New("section marker not followed by typedef struct")
	ErrUnterminatedSection  = errors.New("section body not terminated before end of input")
	ErrFieldSyntax          = errors.New("invalid field declaration")
)

// LineError locates a structural or field syntax failure in the header.
type LineError struct {
	Section Section
	Line    int
	Text    string
	Err     error
}

func (e *LineError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("%s section, line %d: %v", e.Section, e.Line, e.Err)
	}
	return fmt.Sprintf("%s section, line %d: %v: %q", e.Section, e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
