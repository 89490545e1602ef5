package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"

	errorpkg "github.com/peak/remotecp/error"
)

func TestFilesystemList(t *testing.T) {
	t.Parallel()

	dir := fs.NewDir(t, "list",
		fs.WithFile("a.csv", "hello"),
		fs.WithDir("sub"),
		fs.WithSymlink("link.csv", "a.csv"),
		fs.WithSymlink("dangling", "missing"),
	)
	defer dir.Remove()

	objects, err := NewLocalClient().List(context.Background(), dir.Path())
	assert.NilError(t, err)

	got := map[string]ObjectType{}
	for _, obj := range objects {
		got[obj.Name] = obj.Type
		if obj.Name == "a.csv" {
			assert.Equal(t, obj.Size, int64(5))
		}
	}

	assert.DeepEqual(t, got, map[string]ObjectType{
		"a.csv":    TypeFile,
		"sub":      TypeOther,
		"link.csv": TypeFile,
		"dangling": TypeOther,
	})
}

func TestFilesystemListMissingDirectory(t *testing.T) {
	t.Parallel()

	dir := fs.NewDir(t, "list-missing")
	defer dir.Remove()

	_, err := NewLocalClient().List(context.Background(), dir.Join("nope"))
	assert.Assert(t, errors.Is(err, errorpkg.ErrListing))
}

func TestFilesystemOpenCreateDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := fs.NewDir(t, "ops", fs.WithFile("src.txt", "content"))
	defer dir.Remove()

	client := NewLocalClient()

	r, err := client.Open(ctx, dir.Join("src.txt"))
	assert.NilError(t, err)
	data, err := io.ReadAll(r)
	assert.NilError(t, err)
	assert.NilError(t, r.Close())
	assert.Equal(t, string(data), "content")

	w, err := client.Create(ctx, dir.Join("dst.txt"))
	assert.NilError(t, err)
	_, err = io.WriteString(w, "written")
	assert.NilError(t, err)
	assert.NilError(t, w.Close())

	assert.NilError(t, client.Delete(ctx, dir.Join("src.txt")))
	_, err = os.Stat(dir.Join("src.txt"))
	assert.Assert(t, os.IsNotExist(err))

	expected := fs.Expected(t, fs.WithFile("dst.txt", "written", fs.MatchAnyFileMode))
	assert.Assert(t, fs.Equal(dir.Path(), expected))
}

func TestFilesystemErrorsAreIOErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := fs.NewDir(t, "ioerr")
	defer dir.Remove()

	client := NewLocalClient()

	_, err := client.Open(ctx, dir.Join("missing"))
	assert.Assert(t, errors.Is(err, errorpkg.ErrIO))
	assert.Assert(t, errors.Is(err, os.ErrNotExist))

	_, err = client.Create(ctx, dir.Join("no", "such", "dir"))
	assert.Assert(t, errors.Is(err, errorpkg.ErrIO))

	err = client.Delete(ctx, dir.Join("missing"))
	assert.Assert(t, errors.Is(err, errorpkg.ErrIO))
}
