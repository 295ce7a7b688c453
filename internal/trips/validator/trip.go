package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"tripdesk/pkg/logger"
	"tripdesk/pkg/model"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

type TripValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewTripValidator(log *logger.Logger) *TripValidator {
	return &TripValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// Validate checks a trip document before create or update. Seat arithmetic is
// deliberately not cross-checked here: availableSeats against maxSeats is the
// reservation engine's invariant, and admins may seed either value freely.
func (v *TripValidator) Validate(trip *model.Trip) error {
	if err := v.validate.Struct(trip); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translate(validationErrs)
		}
		return err
	}

	if trip.AvailableSeats < 0 {
		return ValidationErrors{
			ValidationError{Field: "AvailableSeats", Message: "availableSeats cannot be negative"},
		}
	}

	return nil
}

func (v *TripValidator) translate(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))
	for _, fe := range errs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
		})
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "mongodb":
		return "must be a valid document ID"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
