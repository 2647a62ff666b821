package engine

import "errors"

var (
	// ErrDataLoad is returned when the source table is missing, malformed or
	// lacks required columns. It is fatal at startup.
	ErrDataLoad = errors.New("failed to load name data")

	// ErrUnknownCountry is returned when a query names a country that is not a
	// column of the table.
	ErrUnknownCountry = errors.New("unknown country")

	// ErrInvalidCount is returned when a sample size is zero or negative.
	ErrInvalidCount = errors.New("count must be a positive integer")

	// ErrInsufficientCandidates is returned when a sample size exceeds the
	// number of eligible names.
	ErrInsufficientCandidates = errors.New("count exceeds the number of available names")
)
