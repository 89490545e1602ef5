// Package url implements the path patterns used to select files on either
// side of a transfer.
package url

import (
	"path"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/peak/remotecp/strutil"
)

// remoteSeparator is the path separator for remote paths
const remoteSeparator = "/"

type urlType int

const (
	localObject urlType = iota
	remoteObject
)

// URL is the canonical representation of a path pattern, either on local or
// remote storage. It is split once at its last separator into a directory
// and a basename mask.
type URL struct {
	Type urlType
	Path string
	Dir  string
	Mask string

	filterRegex *regexp.Regexp
}

type Option func(u *URL)

// WithRemote marks the URL as a path on the remote server.
func WithRemote() Option {
	return func(u *URL) {
		u.Type = remoteObject
	}
}

// New creates a new URL from given path string.
func New(s string, opts ...Option) (*URL, error) {
	url := &URL{
		Type: localObject,
		Path: s,
	}

	for _, opt := range opts {
		opt(url)
	}

	url.splitDirAndMask()
	if err := url.setFilter(); err != nil {
		return nil, err
	}
	return url, nil
}

// IsRemote reports whether the object is stored on a remote storage system.
func (u *URL) IsRemote() bool {
	return u.Type == remoteObject
}

// IsDirectoryTarget reports whether the path ends with a separator and
// therefore names a directory that files are put into.
func (u *URL) IsDirectoryTarget() bool {
	if strings.HasSuffix(u.Path, remoteSeparator) {
		return true
	}
	return !u.IsRemote() && runtime.GOOS == "windows" && strings.HasSuffix(u.Path, `\`)
}

// Match reports whether the basename of name matches the mask. The
// directory part of name is never looked at.
func (u *URL) Match(name string) bool {
	return u.filterRegex.MatchString(u.base(name))
}

// Join returns the path of name inside the directory of u.
func (u *URL) Join(name string) string {
	if u.IsRemote() {
		return path.Join(u.Dir, name)
	}
	return filepath.Join(u.Dir, name)
}

func (u *URL) base(s string) string {
	if u.IsRemote() {
		return path.Base(s)
	}
	return filepath.Base(s)
}

// String is the fmt.Stringer implementation of URL.
func (u *URL) String() string {
	return u.Path
}

// splitDirAndMask divides the path at its last separator.
//
// Example:
//
//	path: /remote/data/file_*.csv
//	dir:  /remote/data
//	mask: file_*.csv
//
// A path without separator lives in the current directory and a path whose
// only separator is the leading one lives in the root.
func (u *URL) splitDirAndMask() {
	separators := remoteSeparator
	if !u.IsRemote() && runtime.GOOS == "windows" {
		separators += `\`
	}

	loc := strings.LastIndexAny(u.Path, separators)
	switch {
	case loc < 0:
		u.Dir = "."
	case loc == 0:
		u.Dir = u.Path[:1]
	default:
		u.Dir = u.Path[:loc]
	}
	u.Mask = u.Path[loc+1:]
}

// setFilter converts the mask to an anchored regex and pre-compiles it for
// later usage.
func (u *URL) setFilter() error {
	regex := strutil.WildCardToRegexp(u.Mask)
	regex = strutil.MatchFromStartToEnd(regex)
	regex = strutil.AddNewLineFlag(regex)

	r, err := regexp.Compile(regex)
	if err != nil {
		return err
	}
	u.filterRegex = r
	return nil
}
