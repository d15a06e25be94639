package domain

import "errors"

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("invalid generation request")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrReferenceUnreadable = errors.New("reference image unreadable")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrTerminalStatus      = errors.New("job already in a terminal status")
	ErrAlreadyRefunded     = errors.New("job already refunded")
)
