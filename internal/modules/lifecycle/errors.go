package lifecycle

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("service not found")
	ErrServiceNotOpen  = errors.New("this service is no longer available")
	ErrConflict        = errors.New("service state changed, refresh and retry")
	ErrNotDeletable    = errors.New("services with history cannot be deleted")
	ErrGeocodingFailed = errors.New("could not resolve the postal code to coordinates")
)
