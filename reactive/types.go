package reactive

import (
	"errors"
	"fmt"
)

// ErrFn is the body of an effect.
type ErrFn func() error

// OnErrorFunc receives effect failures that have no caller to return to.
// from is nil when the failure is not tied to a single effect.
type OnErrorFunc func(from *EffectRunner, err error)

// EqualFunc decides whether a write is a no-op.
type EqualFunc func(a, b any) bool

// Proxy is a reactive wrapper over exactly one raw target.
// It is implemented by *Object and *Array.
type Proxy interface {
	Runtime() *Runtime
	ID() uint64
	Raw() any
	isProxy()
}

const (
	// LengthKey is tracked by Array.Len and triggered when an array grows or shrinks.
	LengthKey = "length"

	// iterateKey is tracked by key enumeration and triggered when keys are added or removed.
	iterateKey = "\x00iterate"
)

var (
	ErrFlushLimit   = errors.New("reactive: effects did not settle")
	ErrEmptyPath    = errors.New("reactive: empty path")
	ErrNotContainer = errors.New("reactive: value is not an object or array")
	ErrIndexRange   = errors.New("reactive: array index too far past the end")
)

// EffectError wraps an error returned by an effect that was re-run by the scheduler.
type EffectError struct {
	Effect *EffectRunner
	Err    error
}

func (e *EffectError) Error() string {
	return fmt.Sprintf("%s: %v", e.Effect, e.Err)
}

func (e *EffectError) Unwrap() error {
	return e.Err
}

type dep struct {
	target uint64
	key    string
}
