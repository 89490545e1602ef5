package transfer

import (
	"github.com/hashicorp/go-multierror"
)

// Status is the final status of a batch.
type Status int

const (
	// StatusNothingToTransfer is reported when no file matched.
	StatusNothingToTransfer Status = iota
	// StatusTransferred is reported when at least one file was transferred.
	StatusTransferred
	// StatusFailed is reported when every planned file failed.
	StatusFailed
	// StatusAborted is reported when the batch could not be started or
	// could not go on.
	StatusAborted
)

// String returns the string representation of Status.
func (s Status) String() string {
	switch s {
	case StatusNothingToTransfer:
		return "nothing to transfer"
	case StatusTransferred:
		return "transferred"
	case StatusFailed:
		return "failed"
	case StatusAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Event is emitted by the Manager while a batch runs.
type Event interface {
	event()
}

// Sink receives the events of a batch in order. It is called on the
// goroutine running the batch.
type Sink func(Event)

// EventTransferring is emitted right before a file is copied.
type EventTransferring struct {
	Src  string
	Dst  string
	Size int64
}

// EventProgress is emitted for every chunk written to a destination.
type EventProgress struct {
	Bytes int64
}

// EventTransferred is emitted once a file is completely written to its
// destination.
type EventTransferred struct {
	Src   string
	Dst   string
	Bytes int64
}

// EventFailed is emitted when an operation on a single file fails.
type EventFailed struct {
	Op  string
	Src string
	Dst string
	Err error
}

// EventDeleted is emitted when a source file is deleted after its
// transfer.
type EventDeleted struct {
	Src string
}

// EventDone is the terminal event of a batch that ran to its end.
type EventDone struct {
	Status      Status
	Transferred int
	Failed      int
}

// EventAborted is the terminal event of a batch stopped by a fatal error.
type EventAborted struct {
	Err error
}

func (EventTransferring) event() {}
func (EventProgress) event()     {}
func (EventTransferred) event()  {}
func (EventFailed) event()       {}
func (EventDeleted) event()      {}
func (EventDone) event()         {}
func (EventAborted) event()      {}

// ResultStatus is the outcome of a single pair.
type ResultStatus int

const (
	ResultTransferred ResultStatus = iota
	ResultFailed
	// ResultSkipped marks pairs never attempted because the batch was
	// aborted.
	ResultSkipped
)

// String returns the string representation of ResultStatus.
func (s ResultStatus) String() string {
	switch s {
	case ResultTransferred:
		return "transferred"
	case ResultFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Result is the outcome of a single pair.
type Result struct {
	Pair   Pair
	Status ResultStatus
	Bytes  int64
	Err    error
	// DeleteErr is set when the source could not be deleted after a
	// successful transfer. It does not fail the pair.
	DeleteErr error
}

// Report summarizes a batch.
type Report struct {
	Results []Result
	Status  Status

	fatal error
}

// Transferred returns the number of transferred pairs.
func (r *Report) Transferred() int {
	return r.count(ResultTransferred)
}

// Failed returns the number of failed pairs.
func (r *Report) Failed() int {
	return r.count(ResultFailed)
}

// Skipped returns the number of pairs never attempted.
func (r *Report) Skipped() int {
	return r.count(ResultSkipped)
}

func (r *Report) count(status ResultStatus) int {
	var n int
	for _, result := range r.Results {
		if result.Status == status {
			n++
		}
	}
	return n
}

// Err returns every error of the batch, the aborting one first. It returns
// nil for a clean batch.
func (r *Report) Err() error {
	var merr error
	if r.fatal != nil {
		merr = multierror.Append(merr, r.fatal)
	}
	for _, result := range r.Results {
		if result.Err != nil {
			merr = multierror.Append(merr, result.Err)
		}
		if result.DeleteErr != nil {
			merr = multierror.Append(merr, result.DeleteErr)
		}
	}
	return merr
}
