package repository

import "errors"

// Sentinel kinds for standings store errors.
var (
	ErrNotFound        = errors.New("participant not found")
	ErrUnknownCategory = errors.New("unknown category")
	ErrAmbiguous       = errors.New("name matches several participants")
	ErrInvalidLimit    = errors.New("invalid standings limit")
	ErrEmpty           = errors.New("no standings published")
)
