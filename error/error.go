package error

import (
	"context"
	"errors"
	"fmt"

	"github.com/hashicorp/go-multierror"
)

var (
	// ErrUnsupportedProtocol indicates an unknown transport tag.
	ErrUnsupportedProtocol = errors.New("unsupported protocol")

	// ErrConnection indicates the server could not be reached or refused the
	// connection.
	ErrConnection = errors.New("connection failed")

	// ErrAuthentication indicates the server rejected the credentials.
	ErrAuthentication = errors.New("authentication failed")

	// ErrListing indicates a directory could not be listed.
	ErrListing = errors.New("listing failed")

	// ErrIO indicates an open, read, write or delete failure on one file.
	ErrIO = errors.New("i/o failed")

	// ErrAmbiguousTarget indicates several files would be written to the
	// same destination.
	ErrAmbiguousTarget = errors.New("ambiguous target")
)

// Error is the type that implements error interface.
type Error struct {
	// Op is the operation being performed, usually the name of the method
	// being invoked (connect, list, open, etc.)
	Op string
	// Src is the source argument
	Src string
	// Dst is the destination argument
	Dst string
	// Kind is one of the sentinel errors of this package.
	Kind error
	// The underlying error if any
	Err error
}

// New returns an *Error of given kind.
func New(kind error, op string, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// FullCommand returns the command string that occurred at.
func (e *Error) FullCommand() string {
	switch {
	case e.Src != "" && e.Dst != "":
		return fmt.Sprintf("%v %v %v", e.Op, e.Src, e.Dst)
	case e.Src != "":
		return fmt.Sprintf("%v %v", e.Op, e.Src)
	default:
		return e.Op
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Kind == nil:
		return e.Err.Error()
	case e.Err == nil:
		return e.Kind.Error()
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

// Unwrap unwraps the error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

// IsFatal reports whether err aborts a whole batch. Only per-file I/O
// failures let a batch go on.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, ErrIO)
}

// IsCancelation reports whether if given error is a cancelation error.
func IsCancelation(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return true
	}

	merr, ok := err.(*multierror.Error)
	if !ok {
		return false
	}

	for _, err := range merr.Errors {
		if IsCancelation(err) {
			return true
		}
	}

	return false
}
