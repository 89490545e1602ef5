package transfer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"testing/iotest"

	errorpkg "github.com/peak/remotecp/error"
	"github.com/peak/remotecp/storage"
)

// memStorage is an in-memory Storage. Listing order is the order in which
// files were added.
type memStorage struct {
	order      []string
	files      map[string][]byte
	dirs       map[string]bool
	failOpen   map[string]bool
	failCreate map[string]bool
	failDelete map[string]bool
	// failRead files break after their content has been read
	failRead map[string]bool
	// lost files fail to open as if the connection was gone
	lost   map[string]bool
	closed int
}

func newMemStorage() *memStorage {
	return &memStorage{
		files:      map[string][]byte{},
		dirs:       map[string]bool{},
		failOpen:   map[string]bool{},
		failCreate: map[string]bool{},
		failDelete: map[string]bool{},
		failRead:   map[string]bool{},
		lost:       map[string]bool{},
	}
}

func (m *memStorage) add(path, content string) *memStorage {
	if _, ok := m.files[path]; !ok {
		m.order = append(m.order, path)
	}
	m.files[path] = []byte(content)
	return m
}

func (m *memStorage) addDir(path string) *memStorage {
	m.order = append(m.order, path)
	m.dirs[path] = true
	return m
}

func (m *memStorage) names() []string {
	var names []string
	for name := range m.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *memStorage) List(ctx context.Context, dir string) ([]*storage.Object, error) {
	objects := []*storage.Object{{Name: ".", Type: storage.TypeOther}, {Name: "..", Type: storage.TypeOther}}
	for _, p := range m.order {
		if m.dirs[p] {
			objects = append(objects, &storage.Object{Name: base(p), Type: storage.TypeOther})
			continue
		}
		content, ok := m.files[p]
		if !ok {
			continue
		}
		objects = append(objects, &storage.Object{Name: base(p), Type: storage.TypeFile, Size: int64(len(content))})
	}
	return objects, nil
}

func (m *memStorage) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if m.lost[path] {
		return nil, errorpkg.New(errorpkg.ErrConnection, "open", errors.New("connection lost"))
	}
	content, ok := m.files[path]
	if !ok || m.failOpen[path] {
		return nil, fmt.Errorf("open %v: %w", path, os.ErrNotExist)
	}
	if m.failRead[path] {
		r := io.MultiReader(bytes.NewReader(content), iotest.ErrReader(errors.New("disk read error")))
		return io.NopCloser(r), nil
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *memStorage) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	if m.failCreate[path] {
		return nil, fmt.Errorf("create %v: %w", path, os.ErrPermission)
	}
	return &memFile{storage: m, path: path}, nil
}

func (m *memStorage) Delete(ctx context.Context, path string) error {
	if m.failDelete[path] {
		return fmt.Errorf("delete %v: %w", path, os.ErrPermission)
	}
	if _, ok := m.files[path]; !ok {
		return fmt.Errorf("delete %v: %w", path, os.ErrNotExist)
	}
	delete(m.files, path)
	return nil
}

func (m *memStorage) Close() error {
	m.closed++
	return nil
}

type memFile struct {
	bytes.Buffer
	storage *memStorage
	path    string
}

func (f *memFile) Close() error {
	f.storage.add(f.path, f.String())
	return nil
}

func base(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[i+1:]
		}
	}
	return p
}

// memTransport dials the same memStorage every time.
type memTransport struct {
	storage  *memStorage
	lifetime storage.Lifetime
	dials    int
}

func (t *memTransport) Dial(ctx context.Context, spec storage.ConnectionSpec) (storage.Storage, error) {
	t.dials++
	return t.storage, nil
}

func (t *memTransport) Lifetime() storage.Lifetime {
	return t.lifetime
}

// recorder collects the events of a batch.
type recorder struct {
	events []Event
}

func (r *recorder) sink(e Event) {
	if _, ok := e.(EventProgress); ok {
		return
	}
	r.events = append(r.events, e)
}

func (r *recorder) last() Event {
	if len(r.events) == 0 {
		return nil
	}
	return r.events[len(r.events)-1]
}
