// Package storage implements file operations for the local filesystem and
// for remote servers reached over sftp, ftp and ftps.
package storage

//go:generate mockgen -destination=mock/storage.go -package=mock github.com/peak/remotecp/storage Storage,Transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	errorpkg "github.com/peak/remotecp/error"
)

// ObjectType is the kind of a listed entry.
type ObjectType int

const (
	// TypeUnknown is reported by backends without type information. Such
	// entries are treated as files.
	TypeUnknown ObjectType = iota
	// TypeFile is a regular file.
	TypeFile
	// TypeOther is anything else: directories, links, devices.
	TypeOther
)

// String returns the string representation of ObjectType.
func (t ObjectType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeOther:
		return "other"
	default:
		return "unknown"
	}
}

// Object is a listed directory entry.
type Object struct {
	Name string
	Type ObjectType
	Size int64
}

// String returns the string representation of Object.
func (o *Object) String() string {
	return o.Name
}

// IsReserved reports whether the entry is one of "." and "..".
func (o *Object) IsReserved() bool {
	return o.Name == "." || o.Name == ".."
}

// Protocol is the transport tag of a connection.
type Protocol int

const (
	ProtocolSFTP Protocol = iota
	ProtocolFTP
	ProtocolFTPS
)

var protocolNames = map[Protocol]string{
	ProtocolSFTP: "sftp",
	ProtocolFTP:  "ftp",
	ProtocolFTPS: "ftps",
}

// String returns the string representation of Protocol.
func (p Protocol) String() string {
	if s, ok := protocolNames[p]; ok {
		return s
	}
	return "unknown"
}

// ParseProtocol returns the Protocol for given tag.
func ParseProtocol(s string) (Protocol, error) {
	for p, name := range protocolNames {
		if strings.EqualFold(s, name) {
			return p, nil
		}
	}
	return 0, errorpkg.New(errorpkg.ErrUnsupportedProtocol, "connect", fmt.Errorf("%q", s))
}

// Options holds transport specific settings.
type Options struct {
	// NoVerifySSL disables certificate verification of ftps servers.
	NoVerifySSL bool
	// KnownHostsFile is an OpenSSH known_hosts file used to verify sftp
	// servers. Host keys are accepted as is when it is empty.
	KnownHostsFile string
}

// ConnectionSpec describes how to reach and log into a server.
type ConnectionSpec struct {
	Host     string
	Port     int
	User     string
	Password string
	Protocol Protocol
	Options  Options
}

// Address returns the host:port pair to dial.
func (s ConnectionSpec) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Storage is an interface for file operations on one side of a transfer.
type Storage interface {
	List(ctx context.Context, dir string) ([]*Object, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Create(ctx context.Context, path string) (io.WriteCloser, error)
	Delete(ctx context.Context, path string) error
	Close() error
}

// Lifetime tells how long a connection of a transport may be used.
type Lifetime int

const (
	// PerBatch connections serve the listing and every file of a batch.
	PerBatch Lifetime = iota
	// PerFile connections serve a single file and are closed afterwards.
	PerFile
)

// Transport connects to a server speaking one protocol.
type Transport interface {
	Dial(ctx context.Context, spec ConnectionSpec) (Storage, error)
	Lifetime() Lifetime
}

var transports = map[Protocol]Transport{
	ProtocolSFTP: sftpTransport{},
	ProtocolFTP:  ftpTransport{},
	ProtocolFTPS: ftpTransport{secure: true},
}

// NewTransport returns the transport implementing given protocol.
func NewTransport(p Protocol) (Transport, error) {
	t, ok := transports[p]
	if !ok {
		return nil, errorpkg.New(errorpkg.ErrUnsupportedProtocol, "connect", fmt.Errorf("%v", p))
	}
	return t, nil
}

func ioError(op, path string, err error) error {
	return &errorpkg.Error{
		Op:   op,
		Src:  path,
		Kind: errorpkg.ErrIO,
		Err:  err,
	}
}

func listingError(dir string, err error) error {
	return &errorpkg.Error{
		Op:   "list",
		Src:  dir,
		Kind: errorpkg.ErrListing,
		Err:  err,
	}
}
