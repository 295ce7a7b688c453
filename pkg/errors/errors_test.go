package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_ErrorString(t *testing.T) {
	plain := NotFound("Trip")
	if plain.Error() != "NOT_FOUND: Trip not found" {
		t.Errorf("unexpected error string: %q", plain.Error())
	}

	cause := errors.New("connection reset")
	wrapped := Internal("Failed to load trip", cause)
	want := "INTERNAL_ERROR: Failed to load trip (caused by: connection reset)"
	if wrapped.Error() != want {
		t.Errorf("expected %q, got %q", want, wrapped.Error())
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Internal("Something failed", cause)

	if !errors.Is(wrapped, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Conflict("No available seats for this trip")
	if got := AsAppError(appErr); got != appErr {
		t.Error("expected the same AppError back")
	}

	wrapped := fmt.Errorf("handler: %w", appErr)
	if got := AsAppError(wrapped); got.Code != CodeConflict {
		t.Errorf("expected CONFLICT through wrapping, got %s", got.Code)
	}

	generic := AsAppError(errors.New("raw failure"))
	if generic.Code != CodeInternal {
		t.Errorf("expected INTERNAL_ERROR for generic errors, got %s", generic.Code)
	}
	if generic.Message != "Internal server error" {
		t.Errorf("generic errors must not leak details, got %q", generic.Message)
	}
}

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NotFound("Trip"), http.StatusNotFound},
		{InvalidInput("bad"), http.StatusBadRequest},
		{Validation("invalid", nil), http.StatusUnprocessableEntity},
		{Conflict("taken"), http.StatusConflict},
		{Unauthorized("no token"), http.StatusUnauthorized},
		{Forbidden("not an admin"), http.StatusForbidden},
		{Internal("oops", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if tt.err.StatusCode() != tt.want {
			t.Errorf("%s: expected status %d, got %d", tt.err.Code, tt.want, tt.err.StatusCode())
		}
	}
}
