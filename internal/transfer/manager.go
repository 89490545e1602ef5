// Package transfer plans and executes batches of file transfers between the
// local filesystem and a remote server.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"os"

	errorpkg "github.com/peak/remotecp/error"
	"github.com/peak/remotecp/storage"
	"github.com/peak/remotecp/storage/url"
)

// Direction tells which side of a transfer is remote.
type Direction int

const (
	// Download copies remote files into a local directory.
	Download Direction = iota
	// Upload copies local files to the remote server.
	Upload
)

// String returns the string representation of Direction.
func (d Direction) String() string {
	if d == Upload {
		return "put"
	}
	return "get"
}

// Request describes one batch. Source is a wildcard pattern on the remote
// server for downloads and on the local filesystem for uploads.
type Request struct {
	Direction    Direction
	Connection   storage.ConnectionSpec
	Source       string
	Destination  string
	Extension    string
	DeleteSource bool
}

// Manager runs transfer batches.
type Manager struct {
	local        storage.Storage
	newTransport func(storage.Protocol) (storage.Transport, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLocal replaces the local filesystem.
func WithLocal(s storage.Storage) Option {
	return func(m *Manager) {
		m.local = s
	}
}

// WithTransport makes the Manager use t whatever protocol is requested.
func WithTransport(t storage.Transport) Option {
	return func(m *Manager) {
		m.newTransport = func(storage.Protocol) (storage.Transport, error) {
			return t, nil
		}
	}
}

// NewManager creates a Manager using the local filesystem and the builtin
// transports.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		local:        storage.NewLocalClient(),
		newTransport: storage.NewTransport,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run plans and executes the batch described by req. Events are sent to
// sink in order and the last one is either EventDone or EventAborted. The
// returned error is non-nil only for aborted batches; per-file failures are
// found in the report.
func (m *Manager) Run(ctx context.Context, req Request, sink Sink) (*Report, error) {
	if sink == nil {
		sink = func(Event) {}
	}

	report, err := m.run(ctx, req, sink)
	if err != nil {
		report.Status = StatusAborted
		report.fatal = err
		sink(EventAborted{Err: err})
		return report, err
	}

	transferred, failed := report.Transferred(), report.Failed()
	switch {
	case len(report.Results) == 0:
		report.Status = StatusNothingToTransfer
	case transferred > 0:
		report.Status = StatusTransferred
	default:
		report.Status = StatusFailed
	}

	sink(EventDone{
		Status:      report.Status,
		Transferred: transferred,
		Failed:      failed,
	})
	return report, nil
}

func (m *Manager) run(ctx context.Context, req Request, sink Sink) (*Report, error) {
	report := &Report{}

	transport, err := m.newTransport(req.Connection.Protocol)
	if err != nil {
		return report, err
	}

	sess := newSession(transport, req.Connection)
	defer sess.Close()

	var plan *Plan
	switch req.Direction {
	case Download:
		plan, err = m.planDownload(ctx, req, sess)
	case Upload:
		plan, err = m.planUpload(ctx, req)
	default:
		err = fmt.Errorf("unknown direction %d", req.Direction)
	}
	if err != nil {
		return report, err
	}

	if plan.IsEmpty() {
		return report, nil
	}

	err = m.execute(ctx, req, plan, sess, report, sink)
	return report, err
}

func (m *Manager) planDownload(ctx context.Context, req Request, sess *session) (*Plan, error) {
	src, err := url.New(req.Source, url.WithRemote())
	if err != nil {
		return nil, ReturnError(err, "list", req.Source, "")
	}

	conn, err := sess.acquire(ctx)
	if err != nil {
		return nil, err
	}

	objects, err := match(ctx, conn, src)
	sess.release(conn)
	if err != nil {
		return nil, err
	}

	return downloadPlan(src, objects, req.Destination, req.Extension), nil
}

// planUpload never connects: an upload of nothing does not reach the
// server. A missing local directory matches nothing.
func (m *Manager) planUpload(ctx context.Context, req Request) (*Plan, error) {
	src, err := url.New(req.Source)
	if err != nil {
		return nil, ReturnError(err, "list", req.Source, "")
	}

	dst, err := url.New(req.Destination, url.WithRemote())
	if err != nil {
		return nil, ReturnError(err, "put", req.Source, req.Destination)
	}

	objects, err := match(ctx, m.local, src)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	if len(objects) == 0 {
		return &Plan{DirectoryTarget: dst.IsDirectoryTarget()}, nil
	}
	return uploadPlan(src, objects, dst)
}

// execute transfers the pairs of plan one by one. A pair failing with an
// i/o error does not stop the batch, a failing connection does.
func (m *Manager) execute(ctx context.Context, req Request, plan *Plan, sess *session, report *Report, sink Sink) error {
	for i, pair := range plan.Pairs {
		if err := ctx.Err(); err != nil {
			report.skip(plan.Pairs[i:])
			return err
		}

		conn, err := sess.acquire(ctx)
		if err != nil {
			report.skip(plan.Pairs[i:])
			return err
		}

		src, dst := conn, m.local
		if req.Direction == Upload {
			src, dst = m.local, conn
		}

		result := transferOne(ctx, src, dst, pair, req.DeleteSource, sink)
		report.Results = append(report.Results, result)

		sess.release(conn)

		if errorpkg.IsFatal(result.Err) {
			report.skip(plan.Pairs[i+1:])
			return result.Err
		}
	}
	return nil
}

func (r *Report) skip(pairs []Pair) {
	for _, pair := range pairs {
		r.Results = append(r.Results, Result{
			Pair:   pair,
			Status: ResultSkipped,
		})
	}
}
