package domain

import "errors"

// Every operation of the core reports one of these to the transport layer.
// All of them are recoverable by the caller.
var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrBelowMinimum        = errors.New("amount below withdrawal minimum")
	ErrTaskInactive        = errors.New("task is not active")
	ErrDuplicateSubmission = errors.New("submission already in progress")
	ErrInvalidState        = errors.New("invalid state for this transition")
	ErrNotFound            = errors.New("not found")
	ErrUnauthorized        = errors.New("unauthorized")
)
