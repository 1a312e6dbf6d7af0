// Package status exports errors produced by the p4oo packages.
//
// NOTE: such constants are located in a separate package to avoid
// creating undue cyclical dependencies between the schema, p4 and core
// packages.
package status

import (
	"github.com/oneconcern/p4oo/pkg/errors"
)

var (
	// ErrFatal classifies faults after which an operation cannot proceed
	ErrFatal = errors.New("fatal")

	// ErrWarning classifies faults raised by the backend for operations it completed anyway
	ErrWarning = errors.New("warning")
)

var (
	// ErrUnsupportedCommand indicates that the schema doesn't describe the requested command
	ErrUnsupportedCommand = errors.New("unsupported command").Within(ErrFatal)

	// ErrUnsupportedSpec indicates that the command exists but doesn't manipulate a spec
	ErrUnsupportedSpec = errors.New("unsupported spec type").Within(ErrFatal)

	// ErrSchemaFatal indicates an invalid schema document
	ErrSchemaFatal = errors.New("invalid schema").Within(ErrFatal)

	// ErrQueryNotSupported indicates that the command doesn't accept any query filter
	ErrQueryNotSupported = errors.New("querying not supported for command").Within(ErrFatal)

	// ErrInvalidFilter indicates that a filter name is neither a query option nor a config option
	ErrInvalidFilter = errors.New("invalid filter key").Within(ErrFatal)

	// ErrTypeMismatch indicates that a filter value doesn't match any of the accepted types
	ErrTypeMismatch = errors.New("filter type mismatch").Within(ErrFatal)

	// ErrMultiplicity indicates that a filter received a wrong number of arguments
	ErrMultiplicity = errors.New("wrong number of filter arguments").Within(ErrFatal)

	// ErrMalformedRecord indicates some unexpected output from the backend
	ErrMalformedRecord = errors.New("unexpected output from perforce").Within(ErrFatal)

	// ErrUnknownAttribute indicates an attribute which is not declared for this spec type
	ErrUnknownAttribute = errors.New("invalid spec attribute").Within(ErrFatal)

	// ErrCannotIdentify indicates that no identifier could be resolved for a spec
	ErrCannotIdentify = errors.New("cannot identify object").Within(ErrFatal)

	// ErrNothingToSave indicates a save on an empty spec
	ErrNothingToSave = errors.New("nothing to save").Within(ErrFatal)

	// ErrUnsupportedForce indicates a forced operation on a command that doesn't support it
	ErrUnsupportedForce = errors.New("command doesn't support force").Within(ErrFatal)

	// ErrDeleteMismatch indicates that the backend did not confirm a deletion
	ErrDeleteMismatch = errors.New("deletion not confirmed").Within(ErrFatal)

	// ErrDeleted indicates an operation on a spec which has been deleted
	ErrDeleted = errors.New("spec has been deleted").Within(ErrFatal)

	// ErrNoOutputShape indicates that the command output cannot be turned into objects
	ErrNoOutputShape = errors.New("command has no output type").Within(ErrFatal)
)

var (
	// ErrCommandFailed wraps any error reported by the backend
	ErrCommandFailed = errors.New("p4 command failed").Within(ErrFatal)

	// ErrCommandWarned wraps warnings reported by the backend
	ErrCommandWarned = errors.New("p4 command warned").Within(ErrWarning)
)

// IsFatal tells if an error is classified as fatal
func IsFatal(err error) bool {
	return errors.Is(err, ErrFatal)
}

// IsWarning tells if an error is only a warning
func IsWarning(err error) bool {
	return errors.Is(err, ErrWarning)
}
