package types

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TAXONOMY
// =============================================================================
//
// Every failure returned by the core carries one of four kinds. Callers test
// the kind with errors.Is and can still reach the underlying cause:
//
//   if errors.Is(err, types.ErrConfig) { ... }
//   if errors.Is(err, fs.ErrNotExist)  { ... }
//
// =============================================================================

var (
	// ErrParse marks malformed or structurally inconsistent input.
	ErrParse = errors.New("parse error")

	// ErrIO marks file open/read/write failures.
	ErrIO = errors.New("io error")

	// ErrConfig marks invalid user configuration (format token, delimiter,
	// password specification).
	ErrConfig = errors.New("config error")

	// ErrEncoding marks a value that cannot be represented in the target format.
	ErrEncoding = errors.New("encoding error")
)

// Error wraps a cause with its kind and the operation that failed.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the kind and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewParseError wraps err as a parse failure.
func NewParseError(op string, err error) error {
	return &Error{Kind: ErrParse, Op: op, Err: err}
}

// NewIOError wraps err as an I/O failure.
func NewIOError(op string, err error) error {
	return &Error{Kind: ErrIO, Op: op, Err: err}
}

// NewConfigError wraps err as a configuration failure.
func NewConfigError(op string, err error) error {
	return &Error{Kind: ErrConfig, Op: op, Err: err}
}

// NewEncodingError wraps err as an encoding failure.
func NewEncodingError(op string, err error) error {
	return &Error{Kind: ErrEncoding, Op: op, Err: err}
}

// KindOf returns the kind of err, or nil when err carries none.
func KindOf(err error) error {
	for _, kind := range []error{ErrConfig, ErrParse, ErrIO, ErrEncoding} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}
