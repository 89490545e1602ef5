package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/karrick/godirwalk"
)

// Filesystem is the Storage implementation of a local filesystem.
type Filesystem struct{}

// NewLocalClient returns a Storage for the local filesystem.
func NewLocalClient() *Filesystem {
	return &Filesystem{}
}

// List returns the entries of given directory in directory order. Symbolic
// links are reported as the type they point to.
func (f *Filesystem) List(ctx context.Context, dir string) ([]*Object, error) {
	dirents, err := godirwalk.ReadDirents(dir, nil)
	if err != nil {
		return nil, listingError(dir, err)
	}

	objects := make([]*Object, 0, len(dirents))
	for _, dirent := range dirents {
		obj := &Object{Name: dirent.Name(), Type: TypeOther}

		if dirent.IsRegular() || dirent.IsSymlink() {
			st, err := os.Stat(filepath.Join(dir, dirent.Name()))
			if err == nil && st.Mode().IsRegular() {
				obj.Type = TypeFile
				obj.Size = st.Size()
			}
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// Open opens the given file for reading.
func (f *Filesystem) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := os.OpenFile(path, os.O_RDONLY, 0644)
	if err != nil {
		return nil, ioError("open", path, err)
	}

	return file, nil
}

// Create creates or truncates the given file. Missing parent directories
// are not created.
func (f *Filesystem) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, ioError("create", path, err)
	}

	return file, nil
}

// Delete deletes given file.
func (f *Filesystem) Delete(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil {
		return ioError("delete", path, err)
	}
	return nil
}

// Close is a no-op for the local filesystem.
func (f *Filesystem) Close() error {
	return nil
}
