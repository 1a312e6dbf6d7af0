package p4

import (
	"regexp"
	"strings"

	"github.com/oneconcern/p4oo/pkg/errors"
	"github.com/oneconcern/p4oo/pkg/status"
)

// CommandError carries the errors and warnings reported by perforce for a command.
//
// A CommandError with errors is fatal; one with only warnings is not.
type CommandError struct {
	Command  string
	Args     []string
	Errors   []string
	Warnings []string
	ExitCode int
}

func (e *CommandError) Error() string {
	var b strings.Builder
	b.WriteString("p4 ")
	b.WriteString(e.Command)
	if len(e.Args) > 0 {
		b.WriteString(" ")
		b.WriteString(strings.Join(e.Args, " "))
	}
	if e.IsWarning() {
		b.WriteString(": warned")
	} else {
		b.WriteString(": failed")
	}
	for _, msg := range e.Errors {
		b.WriteString("\nERROR: ")
		b.WriteString(msg)
	}
	for _, msg := range e.Warnings {
		b.WriteString("\nWARNING: ")
		b.WriteString(msg)
	}
	return b.String()
}

// Unwrap yields the status classification of this error
func (e *CommandError) Unwrap() error {
	if e.IsWarning() {
		return status.ErrCommandWarned
	}
	return status.ErrCommandFailed
}

// IsWarning tells if only warnings were reported
func (e *CommandError) IsWarning() bool {
	return len(e.Errors) == 0
}

// IsWarning tells if err only carries warnings, one of which matches the pattern.
//
// A nil pattern matches any warning.
func IsWarning(err error, pattern *regexp.Regexp) bool {
	var cerr *CommandError
	if !errors.As(err, &cerr) || !cerr.IsWarning() {
		return false
	}
	if pattern == nil {
		return true
	}
	for _, msg := range cerr.Warnings {
		if pattern.MatchString(msg) {
			return true
		}
	}
	return false
}

// AsCommandError extracts a CommandError from err's chain
func AsCommandError(err error) (*CommandError, bool) {
	var cerr *CommandError
	if errors.As(err, &cerr) {
		return cerr, true
	}
	return nil, false
}
