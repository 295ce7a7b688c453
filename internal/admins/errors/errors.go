// Package errors holds sentinel errors for the admin repository layer.
package errors

import "errors"

var (
	ErrNotFound  = errors.New("admin not found")
	ErrDuplicate = errors.New("admin already exists")
	ErrInvalidID = errors.New("invalid admin ID")
)
