package engine

import "errors"

var (
	// ErrMissingRequiredColumn means neither province nor address exists; the dataset is unusable.
	ErrMissingRequiredColumn = errors.New("missing required column: need 'province' or 'address'")
	// ErrNoDataset is reported by callers that need a loaded dataset.
	ErrNoDataset = errors.New("no dataset loaded")
	// ErrUnsupportedFormat is returned by the loader for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrInvalidRange is returned when a range has min greater than max.
	ErrInvalidRange = errors.New("invalid range: min greater than max")
)
