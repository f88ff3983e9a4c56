package queue

import "errors"

var errPanic = errors.New("queue: handler panicked")

// ErrClosed is returned by EnqueueJob after Shutdown has started.
var ErrClosed = errors.New("queue: shut down")
