package datafile

import (
	"errors"
	"fmt"
)

var (
	// ErrDirectoryNotFound is returned when a configured data directory does not exist.
	// Callers usually treat this as "no data yet" rather than a failure.
	ErrDirectoryNotFound = errors.New("data directory not found")

	// ErrMalformedPayload marks a data file that could not be read or decoded.
	ErrMalformedPayload = errors.New("malformed data file")

	// ErrFlattenMultiple is returned when a flat scan is requested with other than one operation.
	ErrFlattenMultiple = errors.New("cannot flatten multiple operations")

	// ErrDecorateUnsupported is returned when decoration is requested for an
	// aggregator producing a scalar statistic.
	ErrDecorateUnsupported = errors.New("decorate is not supported by this aggregator")

	// ErrUnknownAggregator is returned by Build for an unregistered operator.
	ErrUnknownAggregator = errors.New("unknown aggregator")
)

// DirectoryNotFoundError reports which directory was missing.
type DirectoryNotFoundError struct {
	Dir string
	Err error
}

func (e *DirectoryNotFoundError) Error() string {
	return fmt.Sprintf("data directory %q not found: %v", e.Dir, e.Err)
}

func (e *DirectoryNotFoundError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrDirectoryNotFound.
func (e *DirectoryNotFoundError) Is(target error) bool {
	return target == ErrDirectoryNotFound
}
