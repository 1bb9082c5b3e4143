package payment

import "errors"

var (
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("service not found")
	ErrNotReady           = errors.New("the assembler has not confirmed execution yet")
	ErrNoDocument         = errors.New("no tax document found for the payer; register a bank account first")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrUnknownReference   = errors.New("unknown payment reference")
)
