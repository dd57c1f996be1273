package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals that a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidID signals a malformed entity identifier.
	ErrInvalidID = errors.New("invalid id")

	// ErrInvalidInput signals request content that fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmptyOrder signals an order request with no lines.
	ErrEmptyOrder = fmt.Errorf("%w: order must contain at least one line", ErrInvalidInput)

	// ErrConflict signals a uniqueness violation on catalog writes.
	ErrConflict = errors.New("conflict")

	// ErrInsufficientStock is the bare sentinel used by storage-level
	// stock guards; services wrap it in InsufficientStockError to carry
	// the human-readable context.
	ErrInsufficientStock = errors.New("insufficient stock")
)

// InsufficientStockError names the record and the quantities involved so
// the caller can tell which line sank the order.
type InsufficientStockError struct {
	Artist    string
	Album     string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for record %q by %s: available %d, requested %d",
		e.Album, e.Artist, e.Available, e.Requested)
}

func (e *InsufficientStockError) Unwrap() error { return ErrInsufficientStock }
