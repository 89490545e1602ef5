// Package sftptest runs an in-process ssh server offering the sftp
// subsystem over the local filesystem. It exists for tests.
package sftptest

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"net"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
)

// Server is a password protected sftp server listening on the loopback
// interface.
type Server struct {
	Host     string
	Port     int
	User     string
	Password string

	listener net.Listener
	logins   int64
}

// NewServer starts a server accepting given credentials. It is stopped when
// the test finishes.
func NewServer(t testing.TB, user, password string) *Server {
	t.Helper()

	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatal(err)
	}

	signer, err := ssh.NewSignerFromKey(key)
	if err != nil {
		t.Fatal(err)
	}

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

	config := &ssh.ServerConfig{
		PasswordCallback: func(c ssh.ConnMetadata, pass []byte) (*ssh.Permissions, error) {
			if c.User() == s.User && string(pass) == s.Password {
				return nil, nil
			}
			return nil, fmt.Errorf("password rejected for %q", c.User())
		},
	}
	config.AddHostKey(signer)

	go s.serve(config)
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

func (s *Server) serve(config *ssh.ServerConfig) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		go s.handle(conn, config)
	}
}

func (s *Server) handle(conn net.Conn, config *ssh.ServerConfig) {
	defer conn.Close()

	sconn, chans, reqs, err := ssh.NewServerConn(conn, config)
	if err != nil {
		return
	}
	defer sconn.Close()

	atomic.AddInt64(&s.logins, 1)
	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(ssh.UnknownChannelType, "unknown channel type")
			continue
		}

		channel, requests, err := newChannel.Accept()
		if err != nil {
			return
		}

		go func(in <-chan *ssh.Request) {
			for req := range in {
				// payload is a length prefixed subsystem name
				ok := req.Type == "subsystem" && len(req.Payload) > 4 && string(req.Payload[4:]) == "sftp"
				_ = req.Reply(ok, nil)
			}
		}(requests)

		server, err := sftp.NewServer(channel)
		if err != nil {
			_ = channel.Close()
			continue
		}
		_ = server.Serve()
		_ = server.Close()
	}
}
