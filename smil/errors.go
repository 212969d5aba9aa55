package smil

import (
	"errors"
	"fmt"
)

// ErrMissingBody reports a timing document without a body element.
var ErrMissingBody = errors.New("missing body element")

// ParseError reports a timing document that cannot be used. It indicates
// corrupt book data and is not recovered from.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse media overlay %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
