package main

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrInputNotFound   = errors.New("input not found")
	ErrInputUnreadable = errors.New("input unreadable")
	ErrDecodeEncoding  = errors.New("decoded data is not valid UTF-16LE")
	ErrOutputWrite     = errors.New("output write failed")
	ErrBadKey          = errors.New("invalid key")
)

// pathError ties a failure on a file to one of the error kinds above.
// errors.Is matches both the kind and the underlying cause.
type pathError struct {
	kind error
	path string
	err  error
}

func (e *pathError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.kind, e.path, e.err)
}

func (e *pathError) Unwrap() error { return e.err }

func (e *pathError) Is(target error) bool { return target == e.kind }

func newPathError(kind error, path string, err error) error {
	return errors.WithStack(&pathError{kind: kind, path: path, err: err})
}
