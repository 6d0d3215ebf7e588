package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated       = errors.New("authentication required")
	ErrEmptyCart              = errors.New("cart is empty")
	ErrInvalidAddress         = errors.New("shipping address is incomplete")
	ErrInvalidLineItem        = errors.New("cart item requires quantity, size and color")
	ErrIncompleteRedirect     = errors.New("payment redirect is missing required fields")
	ErrAmountMismatch         = errors.New("payment amount does not match order")
	ErrOrderNotFound          = errors.New("order not found")
	ErrOrderAlreadyPaid       = errors.New("order already paid")
	ErrPaymentAlreadyAttached = errors.New("order already has a different payment attached")
	ErrInvalidStatus          = errors.New("invalid order status")
)

// ValidationError ошибка входных данных оформления заказа. Хранилище при ней не вызывается.
type ValidationError struct {
	Err     error
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func invalid(err error, format string, args ...any) *ValidationError {
	return &ValidationError{Err: err, Message: fmt.Sprintf(format, args...)}
}

// PaymentError отказ или недоступность платёжного провайдера в форме, пригодной для клиента.
type PaymentError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment failed: %s: %s", e.Code, e.Message)
}

func (e *PaymentError) Unwrap() error {
	return e.Err
}
