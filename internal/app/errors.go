package service

import "errors"

// Sentinel kinds for run errors.
var (
	// ErrIngestion reports an event that raised an error diagnostic or could
	// not be read. The run produces no standings.
	ErrIngestion = errors.New("event ingestion failed")
	// ErrNoCategories reports a season without categories.
	ErrNoCategories = errors.New("season has no categories")
)
