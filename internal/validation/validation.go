// internal/validation/validation.go
package validation

import (
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	// Имена полей в ошибках берем из json-тегов, чтобы клиент видел
	// те же имена, что отправлял.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

func ValidateStruct(data interface{}) url.Values {
	err := validate.Struct(data)
	if err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) url.Values {
	errorsMap := url.Values{}
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range validationErrs {
			errorsMap.Add(fieldErr.Field(), getErrorMessage(fieldErr))
		}
	} else {
		errorsMap.Add("general", "Validation error: "+err.Error())
	}
	return errorsMap
}

// Сообщения на английском: их показывает фронтенд клиники.
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("Field '%s' is required", err.Field())
	case "email":
		return "Invalid email address"
	case "datetime":
		return fmt.Sprintf("Field '%s' must be a date in format YYYY-MM-DD", err.Field())
	case "oneof":
		return fmt.Sprintf("Field '%s' must be one of: %s", err.Field(), strings.ReplaceAll(err.Param(), " ", ", "))
	default:
		return fmt.Sprintf("Invalid value for field '%s'", err.Field())
	}
}

// FirstError сводит карту ошибок к одной строке для JSON-ответа {"error": ...}.
func FirstError(errs url.Values) string {
	for _, msgs := range errs {
		if len(msgs) > 0 {
			return msgs[0]
		}
	}
	return "Validation failed"
}
