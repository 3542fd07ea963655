package ledger

import (
	"errors"
	"fmt"
)

// ErrorKind classifies ledger failures so the boundary layer can map them to
// transport status codes without the ledger knowing about HTTP.
type ErrorKind string

const (
	KindItemNotFound           ErrorKind = "item_not_found"
	KindLabNotFound            ErrorKind = "lab_not_found"
	KindInvalidQuantity        ErrorKind = "invalid_quantity"
	KindInsufficientStock      ErrorKind = "insufficient_stock"
	KindStaleLocation          ErrorKind = "stale_location"
	KindConcurrentModification ErrorKind = "concurrent_modification"
	KindStorageUnavailable     ErrorKind = "storage_unavailable"
)

// Error is the typed failure returned by every ledger operation. Field and
// Value point at the offending input where one exists.
type Error struct {
	Kind  ErrorKind
	Field string
	Value any
	cause error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Field != "" {
		msg = fmt.Sprintf("%s: %s=%v", msg, e.Field, e.Value)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.cause }

// Is lets errors.Is match two ledger errors by kind alone.
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return e.Kind == other.Kind
}

// KindOf extracts the ErrorKind from err, or "" when err is not a ledger error.
func KindOf(err error) ErrorKind {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind
	}
	return ""
}

func itemNotFound(id string) *Error {
	return &Error{Kind: KindItemNotFound, Field: "item_id", Value: id}
}

func labNotFound(id string) *Error {
	return &Error{Kind: KindLabNotFound, Field: "lab_id", Value: id}
}

func invalidQuantity(field string, value int64) *Error {
	return &Error{Kind: KindInvalidQuantity, Field: field, Value: value}
}

func insufficientStock(itemID string, requested int64) *Error {
	return &Error{Kind: KindInsufficientStock, Field: "quantity", Value: requested, cause: fmt.Errorf("item %s", itemID)}
}

func staleLocation(claimed, actual string) *Error {
	return &Error{Kind: KindStaleLocation, Field: "source_lab_id", Value: claimed, cause: fmt.Errorf("item is in lab %s", actual)}
}

func concurrentModification(itemID string) *Error {
	return &Error{Kind: KindConcurrentModification, Field: "item_id", Value: itemID}
}

func storageUnavailable(err error) *Error {
	return &Error{Kind: KindStorageUnavailable, cause: err}
}
