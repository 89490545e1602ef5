// Package e2e contains tests that run against a real remotecp binary,
// compiled on the fly at the start of the test run.
package e2e

import (
	jsonpkg "encoding/json"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gotest.tools/v3/fs"
	"gotest.tools/v3/icmd"

	"github.com/peak/remotecp/internal/sftptest"
)

const (
	testUser     = "remotecp"
	testPassword = "remotecp-test-password"
)

var remotecpPath string

// setup starts an sftp server and returns it together with a function
// running the binary against it. The server shares the filesystem of the
// test, remote paths are paths of the returned remote directory.
func setup(t *testing.T) (*sftptest.Server, *fs.Dir, func(...string) icmd.Cmd) {
	t.Helper()

	server := sftptest.NewServer(t, testUser, testPassword)

	remote := fs.NewDir(t, "remote")
	t.Cleanup(remote.Remove)

	return server, remote, remotecp(server)
}

// remotecp returns a function that builds get and put commands for the
// given server. Arguments are appended to the server and the user for get
// and put.
func remotecp(server *sftptest.Server) func(args ...string) icmd.Cmd {
	return func(args ...string) icmd.Cmd {
		cmd := icmd.Command(remotecpPath, args...)
		cmd.Env = append(os.Environ(), fmt.Sprintf("REMOTECP_PASSWORD=%v", server.Password))
		return cmd
	}
}

// transferArgs returns the arguments of a get or put command against the
// server. Options go before the server.
func transferArgs(op string, server *sftptest.Server, options []string, src, dst string) []string {
	args := []string{op, "--port", strconv.Itoa(server.Port)}
	args = append(args, options...)
	return append(args, server.Host, server.User, src, dst)
}

// closedPort returns a loopback port nothing listens on.
func closedPort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	_, port, _ := net.SplitHostPort(l.Addr().String())
	l.Close()

	p, _ := strconv.Atoi(port)
	return p
}

func goBuildRemotecp() func() {
	tmpdir, err := os.MkdirTemp("", "")
	if err != nil {
		panic(err)
	}

	remotecp := "remotecp"
	if runtime.GOOS == "windows" {
		remotecp += ".exe"
	}

	remotecpPath = filepath.Join(tmpdir, remotecp)

	workdir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	// 'go build' will change the working directory to the path where tests
	// reside. workdir should be the project root.
	workdir = filepath.Dir(workdir)

	args := []string{"build", "-race", "-o", remotecpPath}
	if runtime.GOOS == "windows" {
		args = []string{"build", "-o", remotecpPath}
	}
	cmd := exec.Command("go", args...)
	cmd.Stderr = os.Stderr
	cmd.Stdout = os.Stdout
	cmd.Dir = workdir

	if err := cmd.Run(); err != nil {
		// The go compiler will have already produced some error messages
		// on stderr by the time we get here.
		panic(fmt.Sprintf("failed to build executable: %s", err))
	}

	if err := os.Chmod(remotecpPath, 0755); err != nil {
		panic(err)
	}

	return func() {
		os.RemoveAll(tmpdir)
	}
}

func withWorkingDir(dir *fs.Dir) func(*icmd.Cmd) {
	return func(cmd *icmd.Cmd) {
		cmd.Dir = dir.Path()
	}
}

func withStdin(s string) func(*icmd.Cmd) {
	return func(cmd *icmd.Cmd) {
		cmd.Stdin = strings.NewReader(s)
	}
}

type compareFunc func(string) error

type assertOpts struct {
	strict bool
	sort   bool
	json   bool
}

type assertOp func(*assertOpts)

func sortInput(v bool) func(*assertOpts) {
	return func(opts *assertOpts) {
		opts.sort = v
	}
}

func jsonCheck(v bool) func(*assertOpts) {
	return func(opts *assertOpts) {
		opts.json = v
	}
}

func assertLines(t *testing.T, actual string, expectedlines map[int]compareFunc, fns ...assertOp) {
	t.Helper()

	if actual == "" {
		if len(expectedlines) > 0 {
			t.Errorf("expected a content, got empty string")
		}

		return
	}

	// default assertion options
	opts := assertOpts{
		strict: true,
	}

	for _, fn := range fns {
		fn(&opts)
	}

	actual = strings.TrimSpace(actual)
	lines := strings.Split(actual, "\n")

	if opts.sort {
		sort.Strings(lines)
	}

	if len(expectedlines) > len(lines) {
		t.Errorf(
			"expected lines (count: %v) should be <= actual lines (count: %v)",
			len(expectedlines),
			len(lines),
		)
	}

	for i, line := range lines {
		// check if each line is json if flag is set
		if opts.json {
			if line != "" && !isJSON(line) {
				t.Errorf("expected a json string for line %q (lineno: %v)", line, i)
			}
		}

		cmp, ok := expectedlines[i]
		if !ok {
			if opts.strict {
				t.Errorf("expected a comparison function for line %q (lineno: %v)", line, i)
			}
			continue
		}

		if err := cmp(line); err != nil {
			t.Errorf("line %v: %v", i, err)
		}
	}

	if t.Failed() {
		t.Log(actual)
	}
}

func match(expected string) compareFunc {
	re := regexp.MustCompile(expected)
	return func(actual string) error {
		if re.MatchString(actual) {
			return nil
		}
		return fmt.Errorf("match: given %q regex doesn't match with %q", expected, actual)
	}
}

func isJSON(str string) bool {
	var js jsonpkg.RawMessage
	return jsonpkg.Unmarshal([]byte(str), &js) == nil
}

func equals(format string, args ...interface{}) compareFunc {
	expected := fmt.Sprintf(format, args...)
	return func(actual string) error {
		if expected == actual {
			return nil
		}

		diff := cmp.Diff(expected, actual)
		return fmt.Errorf("equals: (-want +got):\n%v", diff)
	}
}

func json(format string, args ...interface{}) compareFunc {
	expected := fmt.Sprintf(format, args...)
	// escape multiline characters
	{
		expected = strings.Replace(expected, "\n", "", -1)
		expected = strings.Replace(expected, "\t", "", -1)
		expected = strings.Replace(expected, " ", "", -1)
		expected = strings.TrimSpace(expected)
	}

	return func(actual string) error {
		if expected == actual {
			return nil
		}

		diff := cmp.Diff(expected, actual)
		return fmt.Errorf("json: (-want +got):\n%v", diff)
	}
}

func contains(format string, args ...interface{}) compareFunc {
	expected := fmt.Sprintf(format, args...)
	return func(actual string) error {
		if strings.Contains(actual, expected) {
			return nil
		}

		diff := cmp.Diff(expected, actual)
		return fmt.Errorf("contains: (-want +got):\n%v", diff)
	}
}
