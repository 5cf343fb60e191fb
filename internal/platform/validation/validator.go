// Package validation wraps go-playground/validator so callers get every failing
// field at once, keyed by its JSON name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is a single failed rule.
type FieldError struct {
	Field   string
	Tag     string
	Message string
}

// Validator checks struct tags.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator that reports fields by their json tag name.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Struct validates s and returns every failing field in declaration order.
// It returns nil when s is valid.
func (va *Validator) Struct(s any) []FieldError {
	err := va.v.Struct(s)
	if err == nil {
		return nil
	}

	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return []FieldError{{Field: "", Tag: "invalid", Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(valErrs))
	for _, e := range valErrs {
		out = append(out, FieldError{
			Field:   e.Field(),
			Tag:     e.Tag(),
			Message: message(e),
		})
	}
	return out
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s can't be blank", e.Field())
	case "max":
		return fmt.Sprintf("%s is too long (maximum is %s characters)", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
