package utils

import (
	"errors"
	"reflect"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report wire names (json or form tag) instead of Go field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return strings.ToLower(fld.Name)
	})
	_ = v.RegisterValidation("mailformat", func(fl validator.FieldLevel) bool {
		return checkmail.ValidateFormat(fl.Field().String()) == nil
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// FieldError is a single failed rule on one input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every field that failed, in struct order.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, ", ")
}

// Field returns the message for name, if that field failed.
func (e *ValidationError) Field(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Message, true
		}
	}
	return "", false
}

func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	// Format validation errors
	out := &ValidationError{}
	for _, err := range verrs {
		field := err.Field()
		param := err.Param()

		var msg string
		switch err.Tag() {
		case "required", "notblank":
			msg = field + " is required"
		case "min":
			msg = field + " must be at least " + param + " characters"
		case "max":
			msg = field + " must be at most " + param + " characters"
		case "email", "mailformat":
			msg = field + " must be a valid email"
		case "len":
			msg = field + " must be exactly " + param + " characters"
		case "eqfield":
			msg = field + " must match " + strings.ToLower(param)
		case "oneof":
			msg = field + " must be one of: " + param
		default:
			msg = field + " is invalid"
		}
		out.Fields = append(out.Fields, FieldError{Field: field, Message: msg})
	}
	return out
}
