package log

import (
	"fmt"

	"github.com/peak/remotecp/strutil"
)

// Message is an interface to print structured logs.
type Message interface {
	fmt.Stringer
	JSON() string
}

// InfoMessage is a generic message structure for successful operations.
type InfoMessage struct {
	Operation   string `json:"operation"`
	Success     bool   `json:"success"`
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// String is the string representation of InfoMessage.
func (i InfoMessage) String() string {
	if i.Destination == "" {
		return fmt.Sprintf("%v %v", i.Operation, i.Source)
	}
	return fmt.Sprintf("%v %v %v", i.Operation, i.Source, i.Destination)
}

// JSON is the JSON representation of InfoMessage.
func (i InfoMessage) JSON() string {
	i.Success = true
	return strutil.JSON(i)
}

// ErrorMessage is a generic message structure for unsuccessful operations.
type ErrorMessage struct {
	Operation string `json:"operation,omitempty"`
	Command   string `json:"command,omitempty"`
	Err       string `json:"error"`
}

// String is the string representation of ErrorMessage.
func (e ErrorMessage) String() string {
	if e.Command == "" {
		return e.Err
	}
	return fmt.Sprintf("%q: %v", e.Command, e.Err)
}

// JSON is the JSON representation of ErrorMessage.
func (e ErrorMessage) JSON() string {
	return strutil.JSON(e)
}

// WarningMessage is a generic message structure for failures that do not
// fail the operation.
type WarningMessage struct {
	Operation string `json:"operation,omitempty"`
	Command   string `json:"command,omitempty"`
	Err       string `json:"error"`
}

// String is the string representation of WarningMessage.
func (w WarningMessage) String() string {
	if w.Command == "" {
		return w.Err
	}
	return fmt.Sprintf("%q (%v)", w.Command, w.Err)
}

// JSON is the JSON representation of WarningMessage.
func (w WarningMessage) JSON() string {
	return strutil.JSON(w)
}

// SummaryMessage is printed once a batch has finished.
type SummaryMessage struct {
	Operation   string `json:"operation"`
	Status      string `json:"status"`
	Transferred int    `json:"transferred"`
	Failed      int    `json:"failed"`
}

// String is the string representation of SummaryMessage.
func (s SummaryMessage) String() string {
	total := s.Transferred + s.Failed
	switch {
	case total == 0:
		return "no files to transfer"
	case s.Failed == 0:
		return "all files transferred successfully"
	default:
		return fmt.Sprintf("transferred %d of %d files", s.Transferred, total)
	}
}

// JSON is the JSON representation of SummaryMessage.
func (s SummaryMessage) JSON() string {
	return strutil.JSON(s)
}

// DebugMessage is a generic message structure for debugging logs.
type DebugMessage struct {
	Operation string `json:"operation,omitempty"`
	Command   string `json:"command,omitempty"`
	Content   string `json:"content"`
}

// String is the string representation of DebugMessage.
func (d DebugMessage) String() string {
	if d.Command == "" {
		return d.Content
	}
	return fmt.Sprintf("%q: %v", d.Command, d.Content)
}

// JSON is the JSON representation of DebugMessage.
func (d DebugMessage) JSON() string {
	return strutil.JSON(d)
}
