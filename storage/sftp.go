package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	errorpkg "github.com/peak/remotecp/error"
)

var _ Storage = (*SFTP)(nil)

type sftpTransport struct{}

// Lifetime implements Transport. One ssh session serves a whole batch.
func (sftpTransport) Lifetime() Lifetime {
	return PerBatch
}

// Dial connects and logs into an ssh server and starts the sftp subsystem.
func (sftpTransport) Dial(ctx context.Context, spec ConnectionSpec) (Storage, error) {
	hostKeyCallback, err := newHostKeyCallback(spec.Options.KnownHostsFile)
	if err != nil {
		return nil, errorpkg.New(errorpkg.ErrConnection, "connect", err)
	}

	config := &ssh.ClientConfig{
		User: spec.User,
		Auth: []ssh.AuthMethod{
			ssh.Password(spec.Password),
			ssh.KeyboardInteractive(passwordChallenge(spec.Password)),
		},
		HostKeyCallback: hostKeyCallback,
	}

	addr := spec.Address()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errorpkg.New(errorpkg.ErrConnection, "connect", err)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		if isAuthenticationError(err) {
			return nil, errorpkg.New(errorpkg.ErrAuthentication, "login", err)
		}
		return nil, errorpkg.New(errorpkg.ErrConnection, "connect", err)
	}

	sshClient := ssh.NewClient(c, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		sshClient.Close()
		return nil, errorpkg.New(errorpkg.ErrConnection, "connect", fmt.Errorf("failed to start sftp subsystem: %w", err))
	}

	return &SFTP{ssh: sshClient, client: client}, nil
}

// SFTP is the Storage implementation of an sftp server.
type SFTP struct {
	ssh    *ssh.Client
	client *sftp.Client
}

// List returns the entries of given remote directory. Only regular files
// are reported as TypeFile.
func (s *SFTP) List(ctx context.Context, dir string) ([]*Object, error) {
	entries, err := s.client.ReadDir(dir)
	if err != nil {
		if isConnectionLost(err) {
			return nil, connectionLostError("list", dir, err)
		}
		return nil, listingError(dir, err)
	}

	objects := make([]*Object, 0, len(entries))
	for _, entry := range entries {
		obj := &Object{
			Name: entry.Name(),
			Type: TypeOther,
			Size: entry.Size(),
		}
		if entry.Mode().IsRegular() {
			obj.Type = TypeFile
		}
		objects = append(objects, obj)
	}
	return objects, nil
}

// Open opens the given remote file for reading.
func (s *SFTP) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	file, err := s.client.Open(path)
	if err != nil {
		return nil, sftpError("open", path, err)
	}
	return file, nil
}

// Create creates or truncates the given remote file.
func (s *SFTP) Create(ctx context.Context, path string) (io.WriteCloser, error) {
	file, err := s.client.Create(path)
	if err != nil {
		return nil, sftpError("create", path, err)
	}
	return file, nil
}

// Delete removes the given remote file.
func (s *SFTP) Delete(ctx context.Context, path string) error {
	if err := s.client.Remove(path); err != nil {
		return sftpError("delete", path, err)
	}
	return nil
}

// Close ends the sftp subsystem and the ssh connection.
func (s *SFTP) Close() error {
	err := s.client.Close()
	if sshErr := s.ssh.Close(); err == nil {
		err = sshErr
	}
	return err
}

func newHostKeyCallback(knownHostsFile string) (ssh.HostKeyCallback, error) {
	if knownHostsFile == "" {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	return knownhosts.New(knownHostsFile)
}

// passwordChallenge answers every keyboard-interactive question with the
// password. Many servers only offer this method for password logins.
func passwordChallenge(password string) ssh.KeyboardInteractiveChallenge {
	return func(name, instruction string, questions []string, echos []bool) ([]string, error) {
		answers := make([]string, len(questions))
		for i := range questions {
			answers[i] = password
		}
		return answers, nil
	}
}

// isAuthenticationError reports whether the handshake failed because every
// authentication method was rejected. x/crypto/ssh has no typed error for
// it.
func isAuthenticationError(err error) bool {
	return strings.Contains(err.Error(), "unable to authenticate")
}

// sftpError classifies a failed file operation. Once the ssh connection is
// gone every later operation fails too, so it is not an i/o error of path.
func sftpError(op, path string, err error) error {
	if isConnectionLost(err) {
		return connectionLostError(op, path, err)
	}
	return ioError(op, path, err)
}

func isConnectionLost(err error) bool {
	return errors.Is(err, sftp.ErrSSHFxConnectionLost) || errors.Is(err, sftp.ErrSSHFxNoConnection)
}

func connectionLostError(op, path string, err error) error {
	return &errorpkg.Error{
		Op:   op,
		Src:  path,
		Kind: errorpkg.ErrConnection,
		Err:  err,
	}
}
