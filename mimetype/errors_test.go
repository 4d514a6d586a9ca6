package mimetype

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessages(t *testing.T) {
	require.Contains(t, (&MalformedDatabaseError{Reason: "bad glob"}).Error(), "bad glob")
	require.Contains(t, (&InvalidCacheError{Reason: "short read"}).Error(), "short read")
	require.Contains(t, (&UnknownMimeTypeError{Name: "x/y"}).Error(), "x/y")
	require.Contains(t, (&UnsupportedMimeTypeError{Name: "x/y"}).Error(), "x/y")
}

func TestIoFailureErrorUnwraps(t *testing.T) {
	inner := errors.New("disk exploded")
	wrapped := &IoFailureError{Op: "read cache", Err: inner}
	require.ErrorIs(t, wrapped, inner)
	require.Contains(t, wrapped.Error(), "read cache")
}
