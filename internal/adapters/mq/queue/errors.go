package queue

import "errors"

// Sentinel kinds for queue errors.
var (
	ErrFull   = errors.New("refresh already pending")
	ErrClosed = errors.New("queue closed")
)
