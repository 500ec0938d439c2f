package domain

import "errors"

var (
	// The boundary provider answered but knows no subdivision for the region.
	ErrNoSubdivisionFound = errors.New("no subdivision found for the given region")
	// The boundary provider could not be reached or rejected the query.
	ErrProviderUnavailable = errors.New("boundary provider unavailable")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrEmptyGeometry       = errors.New("empty geometry")
	ErrUnknownStrategy     = errors.New("unknown partition strategy")
	ErrRunNotFound         = errors.New("partition run not found")
)
