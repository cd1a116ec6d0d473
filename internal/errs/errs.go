package errs

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
)

// Error taxonomy surfaced to callers. Every failure returned by a usecase
// classifies into exactly one Kind through KindOf.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrStorageFailure   = errors.New("storage failure")
)

type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindForbidden
	KindInvalidOperation
	KindStorageFailure
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindInvalidOperation:
		return "invalid_operation"
	case KindStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// KindOf classifies err by the first taxonomy sentinel found in its chain.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInvalidOperation):
		return KindInvalidOperation
	case errors.Is(err, ErrStorageFailure):
		return KindStorageFailure
	default:
		return KindUnknown
	}
}

func NotFound(format string, args ...any) error {
	return tagged(ErrNotFound, format, args...)
}

func Forbidden(format string, args ...any) error {
	return tagged(ErrForbidden, format, args...)
}

func Invalid(format string, args ...any) error {
	return tagged(ErrInvalidOperation, format, args...)
}

// Storage marks err as a store failure and adds context. The first tagging
// captures a stack so Loggable can show where the driver error surfaced.
func Storage(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageFailure) {
		return Wrap(err, msg)
	}
	return WithStack(fmt.Errorf("%s: %w: %w", msg, ErrStorageFailure, err))
}

func tagged(sentinel error, format string, args ...any) error {
	args = append(args, sentinel)
	return fmt.Errorf(format+": %w", args...)
}

// Wrap adds context and preserves the error chain (errors.Is/As works).
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf adds formatted context and preserves the error chain.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	args = append(args, err)
	return fmt.Errorf(format+": %w", args...)
}

// WithStack captures a stack trace once, at the root cause boundary.
func WithStack(err error) error {
	if err == nil {
		return nil
	}

	var se *StackError
	if errors.As(err, &se) {
		return err
	}

	return &StackError{
		err:   err,
		stack: debug.Stack(),
	}
}

// StackError wraps an error and stores a stack trace.
type StackError struct {
	err   error
	stack []byte
}

func (e *StackError) Error() string { return e.err.Error() }
func (e *StackError) Unwrap() error { return e.err }
func (e *StackError) Stack() []byte { return e.stack }

// Loggable renders err as structured slog fields.
// Usage: slog.Any("err", errs.Loggable(err))
type loggable struct{ err error }

func Loggable(err error) slog.LogValuer { return loggable{err: err} }

func (l loggable) LogValue() slog.Value {
	if l.err == nil {
		return slog.GroupValue()
	}

	attrs := []slog.Attr{
		slog.String("message", l.err.Error()),
		slog.String("kind", KindOf(l.err).String()),
		slog.Any("chain", ErrorChainStrings(l.err)),
	}

	var se *StackError
	if errors.As(l.err, &se) {
		attrs = append(attrs, slog.String("stack", string(se.Stack())))
	}

	return slog.GroupValue(attrs...)
}

// ErrorChainStrings returns the unwrap chain as strings (outer -> inner).
func ErrorChainStrings(err error) []string {
	if err == nil {
		return nil
	}

	out := make([]string, 0, 8)
	for e := err; e != nil; e = errors.Unwrap(e) {
		out = append(out, e.Error())
	}
	return out
}
