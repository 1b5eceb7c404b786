package plumbing

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Error taxonomy (spec.md §7). Each kind is a distinct sentinel or
// typed error a caller can distinguish with errors.Is/errors.As,
// following go-git's plumbing/format/packfile.Error wrapping idiom.
var (
	// ErrParse marks a malformed object or a malformed pack
	// header/entry-header/delta-header.
	ErrParse = errors.New("parse error")
	// ErrInvalidVersion marks a pack whose version is not 2.
	ErrInvalidVersion = errors.New("invalid pack version")
	// ErrInvalidChecksum marks a trailer or idx self-digest mismatch.
	ErrInvalidChecksum = errors.New("invalid checksum")
	// ErrZlib marks an inflate/deflate failure.
	ErrZlib = errors.New("zlib error")
	// ErrDelta marks a bad delta instruction, a base/result size
	// mismatch, or a negative ofs-delta base.
	ErrDelta = errors.New("delta error")
	// ErrMissingBase marks a ref-delta whose base could not be found.
	ErrMissingBase = errors.New("missing delta base")
	// ErrAmbiguousPrefix marks an OID prefix lookup that matched more
	// than one OID.
	ErrAmbiguousPrefix = errors.New("ambiguous object id prefix")
	// ErrNotFound marks an OID prefix lookup that matched nothing.
	ErrNotFound = errors.New("object not found")
	// ErrIO marks a file-system failure.
	ErrIO = errors.New("i/o error")
	// ErrState marks API misuse: append after commit, commit before
	// the parser reached completion, and similar ordering violations.
	ErrState = errors.New("invalid state")
)

// Error wraps one of the sentinels above with contextual details,
// mirroring go-git's packfile.Error{error} + AddDetails pattern.
type Error struct {
	error
	cause error
}

// NewError wraps kind with a formatted detail message.
func NewError(kind error, format string, args ...interface{}) *Error {
	return &Error{error: fmt.Errorf("%w: %s", kind, fmt.Sprintf(format, args...))}
}

// WrapError wraps kind around cause (typically a raw os/billy error from
// the indexer's filesystem boundary), keeping cause reachable through
// pkg/errors.Cause the way Nivl-git-go's packfile/packindex readers wrap
// every os.File failure, while still letting errors.Is/errors.As see
// through to kind.
func WrapError(kind error, cause error, format string, args ...interface{}) *Error {
	wrapped := pkgerrors.Wrapf(cause, format, args...)
	return &Error{error: fmt.Errorf("%w: %s", kind, wrapped), cause: wrapped}
}

// Unwrap exposes the wrapped sentinel for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.error }

// Cause exposes the underlying pkg/errors-wrapped failure, if any, so
// callers can call pkg/errors.Cause(err) to reach the original os/billy
// error beneath the taxonomy sentinel.
func (e *Error) Cause() error {
	if e.cause != nil {
		return e.cause
	}
	return e.error
}

// AddDetails chains an additional detail message onto the error.
func (e *Error) AddDetails(format string, args ...interface{}) *Error {
	return &Error{error: fmt.Errorf("%w: %s", e.error, fmt.Sprintf(format, args...)), cause: e.cause}
}

// MissingObjectError reports that connectivity verification finished
// with N referenced objects still absent (spec.md §7, C9).
type MissingObjectError struct {
	Count int
}

func (e *MissingObjectError) Error() string {
	return fmt.Sprintf("missing %d referenced object(s)", e.Count)
}

// CallbackAbortedError reports that a caller-supplied callback
// returned a non-zero abort code (spec.md §6.4, §7).
type CallbackAbortedError struct {
	Code int
}

func (e *CallbackAbortedError) Error() string {
	return fmt.Sprintf("callback aborted with code %d", e.Code)
}
