package service

import (
	"errors"
	"fmt"
	"strings"

	"go-powder-ledger/pkg/validator"
)

// Client-input errors. Handlers surface them verbatim; nothing here is retried.
var (
	ErrPowderNotFound       = errors.New("powder not found")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrInvalidTxType        = errors.New("invalid transaction type, use receive or consume")
	ErrStockNotPatchable    = errors.New("current_stock_kg is maintained by stock transactions and cannot be patched")
	ErrInvalidRange         = errors.New("days must be between 1 and 90")
	ErrInvalidDate          = errors.New("invalid date format, use YYYY-MM-DD")
	ErrUnknownResourceClass = errors.New("unknown resource class, use powder or gas")
	ErrTaskNotFound         = errors.New("task not found")
)

// ErrConcurrentUpdate is returned when the balance kept changing underneath
// every retry. The whole operation may be retried by the caller.
var ErrConcurrentUpdate = errors.New("powder was modified concurrently, retry the request")

// ValidationError reports the first struct field that failed validation.
type ValidationError struct {
	Field string
	Tag   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation failed: Field '%s' failed on tag '%s'", e.Field, e.Tag)
}

func validate(req interface{}) error {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		field := errs[0].FailedField
		if i := strings.LastIndex(field, "."); i >= 0 {
			field = field[i+1:]
		}
		return &ValidationError{Field: field, Tag: errs[0].Tag}
	}
	return nil
}
