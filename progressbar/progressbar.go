// Package progressbar renders the progress of a batch on the terminal.
package progressbar

import (
	"fmt"

	"github.com/cheggaaa/pb/v3"
)

// ProgressBar tracks transferred files and bytes of a batch.
type ProgressBar interface {
	Start()
	Finish()
	IncrementCompletedFiles()
	IncrementTotalFiles()
	AddCompletedBytes(bytes int64)
	AddTotalBytes(bytes int64)
}

// NoOpProgressBar is used when no progress is to be shown.
type NoOpProgressBar struct{}

func (pb *NoOpProgressBar) Start() {}

func (pb *NoOpProgressBar) Finish() {}

func (pb *NoOpProgressBar) IncrementCompletedFiles() {}

func (pb *NoOpProgressBar) IncrementTotalFiles() {}

func (pb *NoOpProgressBar) AddCompletedBytes(bytes int64) {}

func (pb *NoOpProgressBar) AddTotalBytes(bytes int64) {}

// CommandProgressBar draws a byte based bar with the file counters next to
// it. Files of a batch are transferred one at a time so the totals grow as
// files are started.
type CommandProgressBar struct {
	totalFiles     int64
	completedFiles int64
	totalBytes     int64
	completedBytes int64
	progressbar    *pb.ProgressBar
}

var _ ProgressBar = (*CommandProgressBar)(nil)

const progressbarTemplate = `{{percent . | green}} {{bar . " " "━" "━" "─" " " | green}} {{counters . | green}} {{speed . "(%s/s)" | red}} {{ string . "files" | yellow}}`

func NewCommandProgressBar() *CommandProgressBar {
	cp := &CommandProgressBar{}
	cp.progressbar = pb.New64(0)
	cp.progressbar.Set(pb.Bytes, true)
	cp.progressbar.Set(pb.SIBytesPrefix, true)
	cp.progressbar.SetWidth(128)
	cp.progressbar.SetTemplateString(progressbarTemplate)
	cp.setFiles()
	return cp
}

func (cp *CommandProgressBar) Start() {
	cp.progressbar.Start()
}

func (cp *CommandProgressBar) Finish() {
	cp.progressbar.Finish()
}

func (cp *CommandProgressBar) IncrementCompletedFiles() {
	cp.completedFiles++
	cp.setFiles()
}

func (cp *CommandProgressBar) IncrementTotalFiles() {
	cp.totalFiles++
	cp.setFiles()
}

func (cp *CommandProgressBar) AddCompletedBytes(bytes int64) {
	cp.completedBytes += bytes
	cp.progressbar.Add64(bytes)
}

func (cp *CommandProgressBar) AddTotalBytes(bytes int64) {
	cp.totalBytes += bytes
	cp.progressbar.SetTotal(cp.totalBytes)
}

func (cp *CommandProgressBar) setFiles() {
	cp.progressbar.Set("files", fmt.Sprintf("(%d/%d)", cp.completedFiles, cp.totalFiles))
}
