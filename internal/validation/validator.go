// Package validation checks user input with go-playground/validator.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrValidation = errors.New("validation failed")

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New()

	// Report fields by their document name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("doc"), ",")
		if name == "" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Validate returns an error wrapping ErrValidation that lists every failing
// field.
func (v *Validator) Validate(s any) error {
	err := v.v.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, friendlyMessage(e))
	}
	sort.Strings(messages)

	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(messages, "; "))
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", e.Field(), e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", e.Field(), e.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", e.Field())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
