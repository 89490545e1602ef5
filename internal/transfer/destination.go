package transfer

import (
	"fmt"
	"path"
	"strings"

	errorpkg "github.com/peak/remotecp/error"
	"github.com/peak/remotecp/storage/url"
)

// localDestination returns the local path of a downloaded file. The
// directory is used as given and is expected to end with a separator.
func localDestination(dir, name, extension string) string {
	return dir + renameExtension(name, extension)
}

// renameExtension replaces the trailing extension of name. A name without
// extension gets one appended.
//
// Example:
//
//	report.csv + txt -> report.txt
//	report     + txt -> report.txt
func renameExtension(name, extension string) string {
	if extension == "" {
		return name
	}
	return strings.TrimSuffix(name, path.Ext(name)) + "." + extension
}

// remoteDestination returns the remote path of an uploaded file. A
// directory target gets the basename appended, anything else is the
// destination itself.
func remoteDestination(dst *url.URL, directoryTarget bool, name string) string {
	if directoryTarget {
		return dst.String() + name
	}
	return dst.String()
}

func ambiguousTargetError(src, dst string, n int) error {
	return &errorpkg.Error{
		Op:   "put",
		Src:  src,
		Dst:  dst,
		Kind: errorpkg.ErrAmbiguousTarget,
		Err:  fmt.Errorf("%d files match and the target is not a directory, end it with %q", n, "/"),
	}
}
