package utils

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	vo "bizdesk/internal/domain/permission/value_objects"
	"bizdesk/internal/shared/errors"
)

// RegisterAccessValidations adds the "capability" and "taburl" tags.
func RegisterAccessValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("capability", func(fl validator.FieldLevel) bool {
		return vo.IsValidCapability(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("taburl", func(fl validator.FieldLevel) bool {
		s := strings.TrimSpace(fl.Field().String())
		return strings.HasPrefix(s, "/") && !strings.ContainsAny(s, " \t\n?#")
	})
}

// UseJSONFieldNames makes validation errors report JSON tag names.
func UseJSONFieldNames(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// TranslateValidationError turns validator (or gin binding) errors into a
// ValidationError AppError. Other errors, such as malformed JSON, become a
// BadRequest error.
func TranslateValidationError(err error) error {
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !stderrors.As(err, &validationErrors) {
		return errors.NewBadRequestError("invalid request body", err.Error())
	}

	var errorMessages []string
	for _, fieldError := range validationErrors {
		errorMessages = append(errorMessages, getFieldErrorMessage(fieldError))
	}

	return errors.NewValidationError(
		"Validation failed",
		strings.Join(errorMessages, "; "),
	)
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	tag := fe.Tag()
	param := fe.Param()

	switch tag {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", field, param)
		}
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, param)
	case "dive":
		return fmt.Sprintf("%s contains an invalid item", field)
	case "capability":
		return fmt.Sprintf("%s must be one of [view add edit delete]", field)
	case "taburl":
		return fmt.Sprintf("%s must be a path starting with /", field)
	default:
		return fmt.Sprintf("%s failed validation for '%s'", field, tag)
	}
}
