package george

import (
	"errors"
	"fmt"
)

// Transport sentinel errors.
var (
	// ErrLineTooLong indicates a command line exceeded MaxLineLength.
	ErrLineTooLong = errors.New("line too long")

	// ErrSocketNotFound indicates no bridge socket was found.
	ErrSocketNotFound = errors.New("no bridge socket found")

	// ErrNotConnected indicates an operation was attempted without a connection.
	ErrNotConnected = errors.New("not connected")

	// ErrAlreadyConnected indicates connect was called while already connected.
	ErrAlreadyConnected = errors.New("already connected")
)

// Failure kinds for sentinel replies. A *CommandError matches its kind with
// errors.Is.
var (
	// ErrCommandFailed is the generic failure kind.
	ErrCommandFailed = errors.New("george command failed")

	// ErrNoObject means no object exists with the given id or at the given
	// position.
	ErrNoObject = errors.New("no such object")

	// ErrFileNotFound means the host could not find a file it was given.
	ErrFileNotFound = errors.New("file not found")

	// ErrInvalidTarget means the command addressed an invalid index or target.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrPartialSuccess is the warning class: the command's effect happened
	// but the host reported that the result may be unusable.
	ErrPartialSuccess = errors.New("operation partially succeeded")
)

// CommandError is returned when a reply matches one of the sentinels declared
// for the command that produced it.
type CommandError struct {
	Kind    error  // One of ErrCommandFailed, ErrNoObject, ErrFileNotFound, ErrInvalidTarget
	Command string // The formatted command line
	Reply   string // The raw reply
	Message string // Optional call-site message
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Error()
	}
	return fmt.Sprintf("%s (command %q returned %q)", msg, e.Command, e.Reply)
}

// Is reports whether target is the error's kind.
func (e *CommandError) Is(target error) bool {
	return target == e.Kind
}

// PartialSuccessError is the warning-class failure returned by Advisory. The
// command has already taken effect in the host.
type PartialSuccessError struct {
	Command string
	Reply   string
	Message string
}

// Error implements the error interface.
func (e *PartialSuccessError) Error() string {
	return fmt.Sprintf("%s (command %q returned %q)", e.Message, e.Command, e.Reply)
}

// Is makes errors.Is(err, ErrPartialSuccess) true.
func (e *PartialSuccessError) Is(target error) bool {
	return target == ErrPartialSuccess
}

// DecodeError is returned when a reply does not match its field schema. It
// signals a protocol mismatch, never a host-side failure.
type DecodeError struct {
	Field  string // Schema field being decoded
	Value  string // Offending token(s); empty when tokens ran out
	Reason string
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("decode field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("decode field %q: %s '%s'", e.Field, e.Reason, e.Value)
}

func newMissingTokenError(field string, want, got int) error {
	return &DecodeError{Field: field, Reason: fmt.Sprintf("reply has %d tokens, need %d", got, want)}
}

func newCastError(field, value, kind string) error {
	return &DecodeError{Field: field, Value: value, Reason: "invalid " + kind}
}

// HostError is a failure reported by a socket bridge rather than by George
// itself (an ERR: reply).
type HostError struct {
	Command string
	Message string
}

// Error implements the error interface.
func (e *HostError) Error() string {
	return fmt.Sprintf("host rejected %q: %s", e.Command, e.Message)
}

// TransportError represents a connection-related error. Transport errors are
// never retried.
type TransportError struct {
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transport failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("transport failed: %s", e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *TransportError) Unwrap() error {
	return e.Cause
}

// NewTransportError creates a new transport error.
func NewTransportError(message string, cause error) error {
	return &TransportError{Message: message, Cause: cause}
}

// ArgumentError is returned before any host call when an argument is
// rejected locally (a file that does not exist, a missing parent folder).
type ArgumentError struct {
	Argument string
	Message  string
}

// Error implements the error interface.
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %s: %s", e.Argument, e.Message)
}
