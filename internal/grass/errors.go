// Package grass holds the types and constants shared by every GRASS
// subsystem: the session error kind, wire-format constants, and the
// response-framing sentinels.
package grass

import (
	"fmt"

	goerrors "github.com/agilira/go-errors"
)

// Kind identifies one of the error categories a GRASS operation can fail
// with. Every handler failure carries one of these.
type Kind string

const (
	KindNotFound          Kind = "NOT_FOUND"
	KindIO                Kind = "IO"
	KindNoMem             Kind = "NO_MEM"
	KindProtocolViolation Kind = "PROTOCOL_VIOLATION"
	KindParseError        Kind = "PARSE_ERROR"
	KindTooLarge          Kind = "TOO_LARGE"
	KindNullPtr           Kind = "NULL_PTR"
	KindDirError          Kind = "DIR_ERROR"
	KindAuthFailed        Kind = "AUTH_FAILED"
	KindPermission        Kind = "PERMISSION"
	KindTransferFailed    Kind = "TRANSFER_FAILED"
)

// code maps a Kind to the go-errors code space used across the module.
func (k Kind) code() goerrors.ErrorCode {
	return goerrors.ErrorCode("GRASS_" + string(k))
}

// Error is the sum type every GRASS component returns on failure. It wraps
// github.com/agilira/go-errors the same way agilira-orpheus's OrpheusError
// does, carrying a Kind, free-form context, and the literal line that ends
// up verbatim in a session's response buffer.
//
// The wire lines the original handlers produced are not uniform: most read
// "Error: <phrase>" but a few read "Error : <phrase>" (an extra space
// before the colon). Rather than silently normalize one of the two forms,
// Error keeps the caller-supplied Line as-is.
type Error struct {
	goErr *goerrors.Error
	Kind  Kind
	Line  string
}

// New builds an Error of the given kind whose wire line is "Error: <phrase>".
func New(kind Kind, phrase string) *Error {
	return newWithLine(kind, phrase, "Error: "+phrase)
}

// NewSpaced is New but renders the line as "Error : <phrase>", matching the
// handlers whose original wire text carries the extra space.
func NewSpaced(kind Kind, phrase string) *Error {
	return newWithLine(kind, phrase, "Error : "+phrase)
}

// NewLine builds an Error whose wire line is exactly line, already carrying
// whatever "Error:"/"Error :" prefix the caller wants. For handlers whose
// documented wire text doesn't fit New/NewSpaced's uniform "<prefix><phrase>"
// shape — the per-verb wording server.c's handle_get/handle_put/
// handle_mkdir/handle_rm each use for their own syntax-layer rejection.
func NewLine(kind Kind, line string) *Error {
	return newWithLine(kind, line, line)
}

func newWithLine(kind Kind, phrase, line string) *Error {
	return &Error{
		goErr: goerrors.New(kind.code(), phrase).WithSeverity("error"),
		Kind:  kind,
		Line:  line,
	}
}

// Newf is New with fmt.Sprintf-style formatting of the phrase.
func Newf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Sprintf(format, args...))
}

// WithContext attaches a key/value pair of diagnostic context (command
// name, path, username) and returns the receiver for chaining.
func (e *Error) WithContext(key string, value any) *Error {
	e.goErr.WithContext(key, value)
	return e
}

// AsRetryable marks transient failures (a timed-out accept, a short read on
// an otherwise healthy socket) so callers one layer up can decide to retry.
func (e *Error) AsRetryable() *Error {
	e.goErr.AsRetryable()
	return e
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Line
}

// Unwrap exposes the underlying go-errors value for errors.Is/As chains.
func (e *Error) Unwrap() error {
	return e.goErr
}

// IsRetryable reports whether the underlying error was marked retryable.
func (e *Error) IsRetryable() bool {
	return e.goErr.IsRetryable()
}

// ResponseLine renders the error the way a session response buffer and a
// client output stream present it.
func (e *Error) ResponseLine() string {
	return e.Line
}
