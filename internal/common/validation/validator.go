package validation

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"hubspot-connector/internal/common/errors"
)

// Validator provides struct-tag validation using go-playground/validator
type Validator struct {
	validator *validator.Validate
}

// fieldError is a single failing field
type fieldError struct {
	Field   string
	Tag     string
	Message string
}

// New creates a validator that reports fields by their form/json names
func New() *Validator {
	v := validator.New()

	registerConnectorValidators(v)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"form", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return fld.Name
	})

	return &Validator{validator: v}
}

// Struct validates s and returns a ValidationError naming the first failing
// field, or all of them joined when several fail.
func (v *Validator) Struct(s interface{}) error {
	if err := v.validator.Struct(s); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) error {
	fieldErrors := extractFieldErrors(err)
	if len(fieldErrors) == 1 {
		return errors.ValidationError(fieldErrors[0].Message)
	}

	messages := make([]string, len(fieldErrors))
	for i, e := range fieldErrors {
		messages[i] = e.Message
	}
	return errors.ValidationError(fmt.Sprintf("validation failed: %s", strings.Join(messages, "; ")))
}

func extractFieldErrors(err error) []fieldError {
	var fieldErrors []fieldError

	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range validationErrs {
			fieldErrors = append(fieldErrors, fieldError{
				Field:   fe.Field(),
				Tag:     fe.Tag(),
				Message: formatFieldError(fe),
			})
		}
		return fieldErrors
	}

	return append(fieldErrors, fieldError{Field: "unknown", Tag: "error", Message: err.Error()})
}

func formatFieldError(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
	case "json":
		return fmt.Sprintf("%s must be valid JSON", err.Field())
	case "key_segment":
		return fmt.Sprintf("%s must not contain ':' or control characters", err.Field())
	default:
		return fmt.Sprintf("%s failed validation: %s", err.Field(), err.Tag())
	}
}

// registerConnectorValidators adds key_segment: a value that is safe to join
// into a colon separated cache key.
func registerConnectorValidators(v *validator.Validate) {
	_ = v.RegisterValidation("key_segment", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if strings.TrimSpace(value) == "" {
			return false
		}
		return !strings.ContainsFunc(value, func(r rune) bool {
			return r == ':' || unicode.IsControl(r)
		})
	})
}
