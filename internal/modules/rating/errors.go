package rating

import "errors"

var (
	ErrValidation     = errors.New("validation failed")
	ErrForbidden      = errors.New("only service participants can rate")
	ErrNotFound       = errors.New("service not found")
	ErrNotCompleted   = errors.New("ratings open only after the service is completed")
	ErrAlreadyRated   = errors.New("you have already rated this service")
	ErrNoCounterparty = errors.New("no accepted assembler to rate")
)
