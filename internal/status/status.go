package status

import "errors"

var (
	ErrValidation       = errors.New("purchase: invalid request")
	ErrNotFound         = errors.New("purchase: record not found")
	ErrGatewayFailure   = errors.New("gateway: payment provider failure")
	ErrInvalidSignature = errors.New("webhook: invalid signature")
	ErrAlreadySubmitted = errors.New("attendee: profile already submitted")
	ErrPersistence      = errors.New("store: write failed")
)
