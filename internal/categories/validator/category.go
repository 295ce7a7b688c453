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

type CategoryValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCategoryValidator(log *logger.Logger) *CategoryValidator {
	return &CategoryValidator{
		validate: validator.New(),
		logger:   log,
	}
}

// Validate checks shape only. Parent existence and cycles are not checked
// here; the property resolver guards the walk instead.
func (v *CategoryValidator) Validate(category *model.Category) error {
	if err := v.validate.Struct(category); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translate(validationErrs)
		}
		return err
	}

	if category.Parent != "" && category.Parent == category.ID {
		return ValidationErrors{
			ValidationError{Field: "Parent", Message: "category cannot be its own parent"},
		}
	}

	return nil
}

func (v *CategoryValidator) translate(errs validator.ValidationErrors) ValidationErrors {
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
	case "mongodb":
		return "must be a valid document ID"
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
