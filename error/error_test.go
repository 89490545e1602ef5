package error

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/hashicorp/go-multierror"
	"gotest.tools/v3/assert"
)

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("permission denied")
	err := &Error{Op: "open", Src: "/remote/a.csv", Kind: ErrIO, Err: cause}

	assert.Assert(t, errors.Is(err, ErrIO))
	assert.Assert(t, !errors.Is(err, ErrConnection))
	assert.Assert(t, errors.Is(err, cause))
	assert.Equal(t, err.Error(), "i/o failed: permission denied")
	assert.Equal(t, err.FullCommand(), "open /remote/a.csv")

	wrapped := fmt.Errorf("batch: %w", err)
	assert.Assert(t, errors.Is(wrapped, ErrIO))
}

func TestIsFatal(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "io", err: New(ErrIO, "create", errors.New("x")), want: false},
		{name: "connection", err: New(ErrConnection, "connect", errors.New("x")), want: true},
		{name: "authentication", err: New(ErrAuthentication, "login", errors.New("x")), want: true},
		{name: "listing", err: New(ErrListing, "list", errors.New("x")), want: true},
		{name: "protocol", err: New(ErrUnsupportedProtocol, "connect", nil), want: true},
		{name: "ambiguous_target", err: New(ErrAmbiguousTarget, "put", nil), want: true},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, IsFatal(tc.err), tc.want)
		})
	}
}

func TestIsCancelation(t *testing.T) {
	t.Parallel()

	assert.Assert(t, IsCancelation(context.Canceled))
	assert.Assert(t, IsCancelation(multierror.Append(errors.New("x"), context.Canceled)))
	assert.Assert(t, !IsCancelation(errors.New("x")))
	assert.Assert(t, !IsCancelation(nil))
}
