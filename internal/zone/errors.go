package zone

import "errors"

var (
	// ErrInvalidCoordinates is returned for NaN, infinite or out-of-range coordinates.
	ErrInvalidCoordinates = errors.New("invalid coordinates")

	// ErrInvalidTable is returned when a zone table fails validation.
	ErrInvalidTable = errors.New("invalid zone table")
)
