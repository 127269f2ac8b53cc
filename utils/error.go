package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// Sentinel errors for the ledger and CRUD layers. Wrap with fmt.Errorf("%w: ...")
// or the structured types below so handlers can map them to HTTP statuses.
var (
	ErrorRecordNotFound = errors.New("record not found")

	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = ErrorRecordNotFound
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrCapacityExceeded    = errors.New("capacity exceeded")
	ErrStorageError        = errors.New("storage error")
	ErrDuplicateSubmission = errors.New("duplicate submission")
)

// InsufficientStockError reports an outbound movement that would drive a tank
// below zero. Available is the stock at the time of the check.
type InsufficientStockError struct {
	TankId    int
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock in tank %d: available %s, requested %s",
		e.TankId, e.Available.String(), e.Requested.String())
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }

// CapacityExceededError reports a transfer destination that cannot absorb the
// requested quantity without going over its capacity.
type CapacityExceededError struct {
	TankId    int
	Capacity  decimal.Decimal
	Current   decimal.Decimal
	Requested decimal.Decimal
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("capacity exceeded in tank %d: capacity %s, current %s, requested %s",
		e.TankId, e.Capacity.String(), e.Current.String(), e.Requested.String())
}

func (e *CapacityExceededError) Unwrap() error { return ErrCapacityExceeded }

func IsNotFound(err error) bool {
	return errors.Is(err, ErrorRecordNotFound)
}

// IsClientError reports whether the error was caused by bad input rather than
// an internal failure, so callers can decide what to log at error level.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidArgument) ||
		errors.Is(err, ErrorRecordNotFound) ||
		errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrCapacityExceeded) ||
		errors.Is(err, ErrDuplicateSubmission)
}

// HTTPStatus maps domain errors onto response codes. Unknown errors are
// treated as internal.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidArgument):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrorRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInsufficientStock):
		return http.StatusConflict
	case errors.Is(err, ErrCapacityExceeded):
		return http.StatusConflict
	case errors.Is(err, ErrDuplicateSubmission):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func ErrorPanic(err error) {
	if err != nil {
		panic(err)
	}
}
