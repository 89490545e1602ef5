package transfer

import (
	"errors"

	errorpkg "github.com/peak/remotecp/error"
)

// ReturnError attaches the operation and its arguments to err. Errors
// without a kind are per-file i/o failures.
func ReturnError(err error, op string, src, dst string) error {
	if err == nil {
		return nil
	}

	var e *errorpkg.Error
	if errors.As(err, &e) {
		return &errorpkg.Error{
			Op:   op,
			Src:  src,
			Dst:  dst,
			Kind: e.Kind,
			Err:  e.Err,
		}
	}

	return &errorpkg.Error{
		Op:   op,
		Src:  src,
		Dst:  dst,
		Kind: errorpkg.ErrIO,
		Err:  err,
	}
}
