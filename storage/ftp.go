package storage

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"path"

	"github.com/jlaffaye/ftp"

	errorpkg "github.com/peak/remotecp/error"
)

var _ Storage = (*FTP)(nil)

// ftpTransport dials plain ftp, or ftps with explicit TLS when secure is
// set.
type ftpTransport struct {
	secure bool
}

// Lifetime implements Transport. ftps sessions are not reused between
// files.
func (t ftpTransport) Lifetime() Lifetime {
	if t.secure {
		return PerFile
	}
	return PerBatch
}

// Dial connects and logs into an ftp server. EPSV is disabled so every data
// connection is negotiated in passive mode with PASV.
func (t ftpTransport) Dial(ctx context.Context, spec ConnectionSpec) (Storage, error) {
	options := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithDisabledEPSV(true),
	}

	if t.secure {
		tlsConfig := &tls.Config{
			ServerName:         spec.Host,
			InsecureSkipVerify: spec.Options.NoVerifySSL,
		}
		options = append(options, ftp.DialWithExplicitTLS(tlsConfig))
	}

	conn, err := ftp.Dial(spec.Address(), options...)
	if err != nil {
		return nil, errorpkg.New(errorpkg.ErrConnection, "connect", err)
	}

	if err := conn.Login(spec.User, spec.Password); err != nil {
		_ = conn.Quit()
		// the tls handshake of ftps happens with the first command
		if isNetworkError(err) {
			return nil, errorpkg.New(errorpkg.ErrConnection, "connect", err)
		}
		return nil, errorpkg.New(errorpkg.ErrAuthentication, "login", err)
	}

	return &FTP{conn: conn}, nil
}

// FTP is the Storage implementation of an ftp or ftps server.
type FTP struct {
	conn *ftp.ServerConn
}

// List returns the names found in given remote directory. ftp name lists
// carry no type information.
func (f *FTP) List(ctx context.Context, dir string) ([]*Object, error) {
	names, err := f.conn.NameList(dir)
	if err != nil {
		return nil, listingError(dir, err)
	}

	objects := make([]*Object, 0, len(names))
	for _, name := range names {
		// some servers answer with full paths
		objects = append(objects, &Object{
			Name: path.Base(name),
			Type: TypeUnknown,
		})
	}
	return objects, nil
}

// Open retrieves the given remote file. The data connection must be closed
// before the next command is sent.
func (f *FTP) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	resp, err := f.conn.Retr(path)
	if err != nil {
		return nil, ioError("open", path, err)
	}
	return resp, nil
}

// Create stores whatever is written to the returned writer into the given
// remote file. The upload completes when the writer is closed.
func (f *FTP) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	pr, pw := io.Pipe()
	w := &ftpWriter{
		path: path,
		pw:   pw,
		done: make(chan error, 1),
	}

	go func() {
		err := f.conn.Stor(path, pr)
		// unblock the writer if the server refused the upload
		pr.CloseWithError(err)
		w.done <- err
	}()

	return w, nil
}

// Delete removes the given remote file.
func (f *FTP) Delete(ctx context.Context, path string) error {
	if err := f.conn.Delete(path); err != nil {
		return ioError("delete", path, err)
	}
	return nil
}

// Close logs out and closes the control connection.
func (f *FTP) Close() error {
	return f.conn.Quit()
}

type ftpWriter struct {
	path string
	pw   *io.PipeWriter
	done chan error
	err  error
}

func (w *ftpWriter) Write(p []byte) (int, error) {
	n, err := w.pw.Write(p)
	if err != nil {
		return n, ioError("write", w.path, err)
	}
	return n, nil
}

// Close signals the end of data and waits for the server to acknowledge
// the upload.
func (w *ftpWriter) Close() error {
	if w.done == nil {
		return w.err
	}

	_ = w.pw.Close()
	if err := <-w.done; err != nil {
		w.err = ioError("create", w.path, err)
	}
	w.done = nil
	return w.err
}

func isNetworkError(err error) bool {
	var netErr net.Error
	var certErr *tls.CertificateVerificationError
	return errors.As(err, &netErr) ||
		errors.As(err, &certErr) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF)
}
