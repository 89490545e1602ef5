package command

import (
	"errors"
	"strings"

	"github.com/hashicorp/go-multierror"

	errorpkg "github.com/peak/remotecp/error"
	"github.com/peak/remotecp/log"
)

// printError is the helper function to log error messages.
func printError(command, op string, err error) {
	// dont print cancelation errors
	if errorpkg.IsCancelation(err) {
		return
	}

	// check if errors are aggregated
	var merr *multierror.Error
	if errors.As(err, &merr) {
		for _, err := range merr.Errors {
			printError(command, op, err)
		}
		return
	}

	msg := log.ErrorMessage{
		Err:       cleanupError(err),
		Command:   command,
		Operation: op,
	}

	// check if we have our own error type
	var cerr *errorpkg.Error
	if errors.As(err, &cerr) && cerr.Src != "" {
		msg.Command = cerr.FullCommand()
		msg.Operation = cerr.Op
	}

	log.Error(msg)
}

// printWarning logs failures that leave the operation successful.
func printWarning(command, op string, err error) {
	msg := log.WarningMessage{
		Err:       cleanupError(err),
		Command:   command,
		Operation: op,
	}

	var cerr *errorpkg.Error
	if errors.As(err, &cerr) && cerr.Src != "" {
		msg.Command = cerr.FullCommand()
		msg.Operation = cerr.Op
	}

	log.Warning(msg)
}

// printDebug is the helper function to log debug messages.
func printDebug(command, op, content string) {
	log.Debug(log.DebugMessage{
		Command:   command,
		Operation: op,
		Content:   content,
	})
}

// cleanupError converts multiline messages into
// a single line.
func cleanupError(err error) string {
	s := strings.Replace(err.Error(), "\n", " ", -1)
	s = strings.Replace(s, "\t", " ", -1)
	s = strings.Replace(s, "  ", " ", -1)
	s = strings.TrimSpace(s)
	return s
}
