package errors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrInvalidSignature  = errors.New("invalid webhook signature")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPaymentNotSettled = errors.New("payment not settled yet")
	ErrPaymentFailed     = errors.New("payment failed")
	ErrMissingOrderID    = errors.New("missing order id")
)
