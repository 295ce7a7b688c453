// Package errors holds sentinel errors for the category repository layer.
package errors

import "errors"

var (
	ErrNotFound  = errors.New("category not found")
	ErrInvalidID = errors.New("invalid category ID")
)
