package services

import (
	"errors"
	"fmt"
)

// Workflow-level error taxonomy. Handlers dispatch on these with errors.Is.
var (
	// ErrValidation covers invalid input: empty item lists, non-positive
	// quantities, malformed payloads. Not retryable without changed input.
	ErrValidation = errors.New("invalid input")

	// ErrDateFormat is returned for dates not in YYYY-MM-DD form.
	ErrDateFormat = errors.New("invalid date format, please use YYYY-MM-DD")

	// ErrInsufficientStock is returned when a sale would drive a product's
	// balance negative. Not retryable without changed input.
	ErrInsufficientStock = errors.New("insufficient stock for product")

	// ErrTxAborted is returned when the underlying atomic commit failed
	// (deadlock, constraint violation, store unavailability). Nothing was
	// applied, so the caller may safely retry. The services themselves
	// never retry.
	ErrTxAborted = errors.New("transaction aborted, no changes applied")

	ErrProductNotFound      = errors.New("product not found")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrUserNotFound         = errors.New("user not found")
	ErrStockBalanceNotFound = errors.New("stock balance entry not found")
	ErrStockInNotFound      = errors.New("stock-in entry not found")
	ErrSaleNotFound         = errors.New("sale not found")
	ErrInvoiceNotFound      = errors.New("invoice not found")
	ErrPaymentNotFound      = errors.New("payment not found")

	// ErrEntityInUse is returned when a delete is refused because the record
	// is referenced by historical stock, sale or billing rows.
	ErrEntityInUse = errors.New("record is referenced by other records")

	// ErrUsernameExists is returned when registering or renaming a user to a
	// username that is already taken.
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned on failed login attempts.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// InsufficientStockError reports which product was short and by how much.
// It unwraps to ErrInsufficientStock.
type InsufficientStockError struct {
	ProductID int64
	Requested int64
	Available int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product ID %d: requested %d, available %d",
		e.ProductID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}
