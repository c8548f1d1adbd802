// Copyright (c) 2022 Ilya Toropchenko <eliastor@users.noreply.github.com>
//
// Use if this source code is covered by an MIT-style
// license that can be found in the LICENSE file

package pbb

import "fmt"

// TaskError wraps a non-nil error returned by a submitted callable's own
// body. A panic in the body is reported as a PanicError instead.
type TaskError struct {
	Cause error
}

func (e *TaskError) Error() string { return fmt.Sprintf("pbb: task failed: %v", e.Cause) }
func (e *TaskError) Unwrap() error { return e.Cause }

// InitError wraps a failure of a call-key's registered initializer. A task
// whose group failed to initialize on a worker never runs its body; its
// handle receives this error instead.
type InitError struct {
	Cause error
}

func (e *InitError) Error() string { return fmt.Sprintf("pbb: initializer failed: %v", e.Cause) }
func (e *InitError) Unwrap() error { return e.Cause }

// ShutdownError reports that an envelope could not be executed because the
// pool was torn down before it was dequeued.
type ShutdownError struct{}

func (e *ShutdownError) Error() string { return "pbb: pool destroyed" }

// PanicError wraps a value recovered from a panic inside a submitted
// callable or initializer, so it can be surfaced via a ResultHandle instead
// of crashing the worker goroutine.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("pbb: panic: %v", e.Value) }
