package transfer

import (
	"context"
	"io"

	"github.com/peak/remotecp/storage"
)

// copyBufferSize is the size of the buffer a file is streamed through.
const copyBufferSize = 32 * 1024

// transferOne copies a single pair from src to dst and deletes the source
// afterwards when asked to. Every failure is recorded on the result.
func transferOne(ctx context.Context, src, dst storage.Storage, pair Pair, deleteSource bool, sink Sink) Result {
	result := Result{Pair: pair, Status: ResultFailed}

	fail := func(op string, err error) Result {
		result.Err = ReturnError(err, op, pair.Src, pair.Dst)
		sink(EventFailed{Op: op, Src: pair.Src, Dst: pair.Dst, Err: result.Err})
		return result
	}

	sink(EventTransferring{Src: pair.Src, Dst: pair.Dst, Size: pair.Size})

	r, err := src.Open(ctx, pair.Src)
	if err != nil {
		return fail("open", err)
	}

	w, err := dst.Create(ctx, pair.Dst)
	if err != nil {
		_ = r.Close()
		return fail("create", err)
	}

	n, err := copyStream(w, r, sink)
	_ = r.Close()
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	result.Bytes = n
	if err != nil {
		// a truncated file must not pass for a transferred one
		_ = dst.Delete(ctx, pair.Dst)
		return fail("copy", err)
	}

	result.Status = ResultTransferred
	sink(EventTransferred{Src: pair.Src, Dst: pair.Dst, Bytes: n})

	if !deleteSource {
		return result
	}

	if err := src.Delete(ctx, pair.Src); err != nil {
		result.DeleteErr = ReturnError(err, "delete", pair.Src, "")
		sink(EventFailed{Op: "delete", Src: pair.Src, Err: result.DeleteErr})
		return result
	}
	sink(EventDeleted{Src: pair.Src})
	return result
}

// copyStream copies r to w through a fixed size buffer, reporting progress
// for every chunk.
func copyStream(w io.Writer, r io.Reader, sink Sink) (int64, error) {
	cw := &countingWriter{w: w, sink: sink}
	buf := make([]byte, copyBufferSize)

	// hide io.WriterTo and io.ReaderFrom so that the buffer is used
	_, err := io.CopyBuffer(cw, struct{ io.Reader }{r}, buf)
	return cw.n, err
}

type countingWriter struct {
	w    io.Writer
	n    int64
	sink Sink
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	if n > 0 {
		c.sink(EventProgress{Bytes: int64(n)})
	}
	return n, err
}
