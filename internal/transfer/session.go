package transfer

import (
	"context"

	"github.com/peak/remotecp/storage"
)

// session hands out connections according to the lifetime of a transport.
// Per batch connections are dialled once and kept until Close, per file
// connections are closed as soon as they are released.
type session struct {
	transport storage.Transport
	spec      storage.ConnectionSpec

	conn storage.Storage
}

func newSession(transport storage.Transport, spec storage.ConnectionSpec) *session {
	return &session{
		transport: transport,
		spec:      spec,
	}
}

func (s *session) acquire(ctx context.Context) (storage.Storage, error) {
	if s.conn != nil {
		return s.conn, nil
	}

	conn, err := s.transport.Dial(ctx, s.spec)
	if err != nil {
		return nil, err
	}

	if s.transport.Lifetime() == storage.PerBatch {
		s.conn = conn
	}
	return conn, nil
}

func (s *session) release(conn storage.Storage) {
	if conn == s.conn {
		return
	}
	_ = conn.Close()
}

// Close closes the per batch connection, if any.
func (s *session) Close() {
	if s.conn == nil {
		return
	}
	_ = s.conn.Close()
	s.conn = nil
}
