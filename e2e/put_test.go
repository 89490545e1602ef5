package e2e

import (
	"testing"

	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"
	"gotest.tools/v3/icmd"
)

func TestPutDirectoryTarget(t *testing.T) {
	t.Parallel()

	server, remote, cmd := setup(t)

	local := fs.NewDir(t, "local",
		fs.WithFile("a.txt", "a"),
		fs.WithFile("b.txt", "b"),
		fs.WithFile("c.csv", "c"),
		fs.WithDir("d.txt"),
	)
	defer local.Remove()

	args := transferArgs("put", server, nil, local.Join("*.txt"), remote.Path()+"/")
	result := icmd.RunCmd(cmd(args...))
	result.Assert(t, icmd.Success)

	assertLines(t, result.Stdout(), map[int]compareFunc{
		0: equals("all files transferred successfully"),
		1: equals("put %v %v", local.Join("a.txt"), remote.Join("a.txt")),
		2: equals("put %v %v", local.Join("b.txt"), remote.Join("b.txt")),
	}, sortInput(true))

	expected := fs.Expected(t,
		fs.WithFile("a.txt", "a", fs.MatchAnyFileMode),
		fs.WithFile("b.txt", "b", fs.MatchAnyFileMode),
	)
	assert.Assert(t, fs.Equal(remote.Path(), expected))
}

func TestPutLiteralTarget(t *testing.T) {
	t.Parallel()

	server, remote, cmd := setup(t)

	local := fs.NewDir(t, "local", fs.WithFile("report.csv", "data"))
	defer local.Remove()

	args := transferArgs("put", server, nil, local.Join("report.csv"), remote.Join("renamed.csv"))
	result := icmd.RunCmd(cmd(args...))
	result.Assert(t, icmd.Success)

	assertLines(t, result.Stdout(), map[int]compareFunc{
		0: equals("put %v %v", local.Join("report.csv"), remote.Join("renamed.csv")),
		1: equals("all files transferred successfully"),
	})

	expected := fs.Expected(t, fs.WithFile("renamed.csv", "data", fs.MatchAnyFileMode))
	assert.Assert(t, fs.Equal(remote.Path(), expected))
}

func TestPutRelativeSource(t *testing.T) {
	t.Parallel()

	server, remote, cmd := setup(t)

	local := fs.NewDir(t, "local", fs.WithFile("a.txt", "a"))
	defer local.Remove()

	args := transferArgs("put", server, nil, "*.txt", remote.Path()+"/")
	result := icmd.RunCmd(cmd(args...), withWorkingDir(local))
	result.Assert(t, icmd.Success)

	assertLines(t, result.Stdout(), map[int]compareFunc{
		0: equals("put a.txt %v", remote.Join("a.txt")),
		1: equals("all files transferred successfully"),
	})
}

func TestPutAmbiguousTarget(t *testing.T) {
	t.Parallel()

	server, remote, cmd := setup(t)

	local := fs.NewDir(t, "local",
		fs.WithFile("a.txt", "a"),
		fs.WithFile("b.txt", "b"),
	)
	defer local.Remove()

	args := transferArgs("put", server, nil, local.Join("*.txt"), remote.Join("out.txt"))
	result := icmd.RunCmd(cmd(args...))
	result.Assert(t, icmd.Expected{ExitCode: 1})

	assertLines(t, result.Stderr(), map[int]compareFunc{
		0: contains(`ERROR "put %v %v": ambiguous target: 2 files match`, local.Join("*.txt"), remote.Join("out.txt")),
	})

	// rejected before connecting
	assert.Equal(t, server.Logins(), 0)
	assert.Assert(t, fs.Equal(remote.Path(), fs.Expected(t)))
}

func TestPutNothingDoesNotConnect(t *testing.T) {
	t.Parallel()

	server, remote, cmd := setup(t)

	local := fs.NewDir(t, "local", fs.WithFile("a.csv", "a"))
	defer local.Remove()

	args := transferArgs("put", server, nil, local.Join("*.txt"), remote.Path()+"/")
	result := icmd.RunCmd(cmd(args...))
	result.Assert(t, icmd.Success)

	assertLines(t, result.Stdout(), map[int]compareFunc{
		0: equals("no files to transfer"),
	})
	assert.Equal(t, server.Logins(), 0)
}

func TestPutMissingDirectoryDoesNotConnect(t *testing.T) {
	t.Parallel()

	server, remote, cmd := setup(t)

	local := fs.NewDir(t, "local")
	defer local.Remove()

	args := transferArgs("put", server, nil, local.Join("missing", "*.csv"), remote.Path()+"/")
	result := icmd.RunCmd(cmd(args...))
	result.Assert(t, icmd.Success)

	assertLines(t, result.Stdout(), map[int]compareFunc{
		0: equals("no files to transfer"),
	})
	assert.Equal(t, server.Logins(), 0)
}

func TestPutDeleteSource(t *testing.T) {
	t.Parallel()

	server, remote, cmd := setup(t)

	local := fs.NewDir(t, "local",
		fs.WithFile("a.txt", "a"),
		fs.WithFile("keep.csv", "keep"),
	)
	defer local.Remove()

	args := transferArgs("put", server, []string{"-d"}, local.Join("*.txt"), remote.Path()+"/")
	result := icmd.RunCmd(cmd(args...))
	result.Assert(t, icmd.Success)

	expected := fs.Expected(t, fs.WithFile("a.txt", "a", fs.MatchAnyFileMode))
	assert.Assert(t, fs.Equal(remote.Path(), expected))

	expected = fs.Expected(t, fs.WithFile("keep.csv", "keep", fs.MatchAnyFileMode))
	assert.Assert(t, fs.Equal(local.Path(), expected))
}

func TestPutFailureKeepsSource(t *testing.T) {
	t.Parallel()

	server, remote, cmd := setup(t)

	local := fs.NewDir(t, "local", fs.WithFile("a.txt", "a"))
	defer local.Remove()

	missing := remote.Join("missing") + "/"

	args := transferArgs("put", server, []string{"--delete"}, local.Join("a.txt"), missing)
	result := icmd.RunCmd(cmd(args...))
	result.Assert(t, icmd.Expected{ExitCode: 1})

	assertLines(t, result.Stderr(), map[int]compareFunc{
		0: contains(`ERROR "create %v %va.txt": i/o failed`, local.Join("a.txt"), missing),
	})

	expected := fs.Expected(t, fs.WithFile("a.txt", "a", fs.MatchAnyFileMode))
	assert.Assert(t, fs.Equal(local.Path(), expected))
}
