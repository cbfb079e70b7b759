package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
)

// Validator checks decoded request bodies. Free text is stored as typed.
type Validator struct {
	validate *validator.Validate
	markup   *bluemonday.Policy
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	markup := bluemonday.StrictPolicy()
	// notblank requires visible text: markup alone such as "<i></i>" is blank.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return hasVisibleText(markup, fl.Field().String())
	})

	return &Validator{validate: v, markup: markup}
}

func hasVisibleText(markup *bluemonday.Policy, s string) bool {
	if strings.TrimSpace(s) == "" {
		return false
	}
	return strings.TrimSpace(markup.Sanitize(s)) != ""
}

// ValidationError reports the first failing field of a request body.
type ValidationError struct {
	Field   string
	Tag     string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Struct validates s and reports the first failing field.
func (v *Validator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}
	fe := fieldErrs[0]
	return &ValidationError{Field: fe.Field(), Tag: fe.Tag(), Message: message(fe)}
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
