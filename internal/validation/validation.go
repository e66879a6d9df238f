// Package validation checks struct tags and reports the first failing field
// as "<Namespace>: <reason>".
package validation

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Struct validates v against its validate tags.
func Struct(v any) error {
	return FormatError(validate.Struct(v))
}

// FormatError rewrites validator errors field-first. Other errors pass
// through unchanged.
func FormatError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, e.Param())
		case "min":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		case "url":
			return fmt.Errorf("%s: must be a valid URL", field)
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}

	return err
}
