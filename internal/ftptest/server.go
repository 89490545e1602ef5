// Package ftptest runs an in-process ftp server over the local filesystem.
// It answers the subset of commands the ftp storage backend sends, in
// passive mode only, optionally behind explicit TLS. It exists for tests.
package ftptest

import (
	"bufio"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"io"
	"math/big"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// Server is a password protected ftp server listening on the loopback
// interface. Paths sent by clients are paths of the local filesystem.
type Server struct {
	Host     string
	Port     int
	User     string
	Password string

	listener  net.Listener
	tlsConfig *tls.Config
	logins    int64
}

// Option configures a Server.
type Option func(*Server)

// WithTLS makes the server accept AUTH TLS with a self signed certificate.
func WithTLS() Option {
	return func(s *Server) {
		s.tlsConfig = &tls.Config{}
	}
}

// NewServer starts a server accepting given credentials. It is stopped when
// the test finishes.
func NewServer(t testing.TB, user, password string, opts ...Option) *Server {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	host, port, err := net.SplitHostPort(listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}

	s := &Server{
		Host:     host,
		User:     user,
		Password: password,
		listener: listener,
	}
	s.Port, _ = strconv.Atoi(port)

	for _, opt := range opts {
		opt(s)
	}

	if s.tlsConfig != nil {
		cert, err := selfSignedCertificate(host)
		if err != nil {
			t.Fatal(err)
		}
		s.tlsConfig.Certificates = []tls.Certificate{cert}
	}

	go s.serve()
	t.Cleanup(s.Close)

	return s
}

// Logins returns the number of successful logins so far.
func (s *Server) Logins() int {
	return int(atomic.LoadInt64(&s.logins))
}

// Close stops accepting new connections.
func (s *Server) Close() {
	_ = s.listener.Close()
}

func (s *Server) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handle(conn)
	}
}

// session is the state of one control connection.
type session struct {
	server   *Server
	conn     net.Conn
	r        *bufio.Reader
	user     string
	loggedIn bool
	// protected data connections are wrapped in TLS
	protected bool
	pasv      net.Listener
}

func (s *Server) handle(conn net.Conn) {
	sess := &session{
		server: s,
		conn:   conn,
		r:      bufio.NewReader(conn),
	}
	defer sess.close()

	sess.reply(220, "ready")

	for {
		line, err := sess.r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")

		cmd, arg := line, ""
		if i := strings.IndexByte(line, ' '); i >= 0 {
			cmd, arg = line[:i], line[i+1:]
		}

		if !sess.dispatch(strings.ToUpper(cmd), arg) {
			return
		}
	}
}

// dispatch runs a command. It returns false once the session is over.
func (sess *session) dispatch(cmd, arg string) bool {
	switch cmd {
	case "AUTH":
		if sess.server.tlsConfig == nil {
			sess.reply(534, "tls not available")
			return true
		}
		sess.reply(234, "starting tls")
		conn := tls.Server(sess.conn, sess.server.tlsConfig)
		if err := conn.Handshake(); err != nil {
			return false
		}
		sess.conn = conn
		sess.r = bufio.NewReader(conn)
	case "USER":
		sess.user = arg
		sess.reply(331, "password required")
	case "PASS":
		if sess.user != sess.server.User || arg != sess.server.Password {
			sess.reply(530, "login incorrect")
			return true
		}
		sess.loggedIn = true
		atomic.AddInt64(&sess.server.logins, 1)
		sess.reply(230, "logged in")
	case "QUIT":
		sess.reply(221, "bye")
		return false
	case "FEAT":
		sess.reply(502, "no extensions")
	default:
		if !sess.loggedIn {
			sess.reply(530, "not logged in")
			return true
		}
		sess.dispatchLoggedIn(cmd, arg)
	}
	return true
}

func (sess *session) dispatchLoggedIn(cmd, arg string) {
	switch cmd {
	case "TYPE", "PBSZ":
		sess.reply(200, "ok")
	case "PROT":
		sess.protected = strings.EqualFold(arg, "P")
		sess.reply(200, "ok")
	case "PASV":
		sess.passive()
	case "NLST":
		sess.nameList(arg)
	case "RETR":
		sess.retrieve(arg)
	case "STOR":
		sess.store(arg)
	case "DELE":
		if err := os.Remove(arg); err != nil {
			sess.reply(550, err.Error())
			return
		}
		sess.reply(250, "deleted")
	default:
		sess.reply(502, "command not implemented")
	}
}

func (sess *session) passive() {
	if sess.pasv != nil {
		_ = sess.pasv.Close()
	}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		sess.reply(425, err.Error())
		return
	}
	sess.pasv = l

	port := l.Addr().(*net.TCPAddr).Port
	sess.reply(227, fmt.Sprintf("entering passive mode (127,0,0,1,%d,%d)", port/256, port%256))
}

func (sess *session) nameList(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		sess.abortData(550, err.Error())
		return
	}

	sess.transfer(func(conn net.Conn) error {
		for _, entry := range entries {
			// full paths, as many servers answer
			if _, err := fmt.Fprintf(conn, "%s\r\n", path.Join(dir, entry.Name())); err != nil {
				return err
			}
		}
		return nil
	})
}

func (sess *session) retrieve(name string) {
	f, err := os.Open(name)
	if err != nil {
		sess.abortData(550, err.Error())
		return
	}
	defer f.Close()

	sess.transfer(func(conn net.Conn) error {
		_, err := io.Copy(conn, f)
		return err
	})
}

func (sess *session) store(name string) {
	f, err := os.Create(name)
	if err != nil {
		sess.abortData(553, err.Error())
		return
	}
	defer f.Close()

	sess.transfer(func(conn net.Conn) error {
		_, err := io.Copy(f, conn)
		return err
	})
}

// transfer accepts the data connection of the current passive listener,
// runs fn over it and reports the outcome on the control connection.
func (sess *session) transfer(fn func(net.Conn) error) {
	if sess.pasv == nil {
		sess.reply(425, "use PASV first")
		return
	}
	l := sess.pasv
	sess.pasv = nil
	defer l.Close()

	sess.reply(150, "opening data connection")

	_ = l.(*net.TCPListener).SetDeadline(time.Now().Add(10 * time.Second))
	conn, err := l.Accept()
	if err != nil {
		sess.reply(425, err.Error())
		return
	}

	if sess.protected {
		tconn := tls.Server(conn, sess.server.tlsConfig)
		if err := tconn.Handshake(); err != nil {
			_ = conn.Close()
			sess.reply(425, err.Error())
			return
		}
		conn = tconn
	}

	err = fn(conn)
	_ = conn.Close()

	if err != nil {
		sess.reply(426, err.Error())
		return
	}
	sess.reply(226, "transfer complete")
}

// abortData refuses a data command and drops its passive listener.
func (sess *session) abortData(code int, msg string) {
	if sess.pasv != nil {
		_ = sess.pasv.Close()
		sess.pasv = nil
	}
	sess.reply(code, msg)
}

func (sess *session) reply(code int, msg string) {
	fmt.Fprintf(sess.conn, "%d %s\r\n", code, msg)
}

func (sess *session) close() {
	if sess.pasv != nil {
		_ = sess.pasv.Close()
	}
	_ = sess.conn.Close()
}

func selfSignedCertificate(host string) (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}

	template := x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{Organization: []string{"remotecp test"}},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IPAddresses:           []net.IP{net.ParseIP(host)},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}

	return tls.Certificate{
		Certificate: [][]byte{der},
		PrivateKey:  key,
	}, nil
}
