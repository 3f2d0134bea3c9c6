package middleware

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rezkam/fiscal/internal/infrastructure/http/response"
)

// NewValidator returns a validator that reports fields by their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidationDetails converts validator errors into response fields.
// It returns nil when err is not a validation failure.
func ValidationDetails(err error) []response.ErrorField {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make([]response.ErrorField, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, response.ErrorField{
			Field: fieldPath(e),
			Issue: issue(e),
		})
	}
	return fields
}

// fieldPath drops the top-level struct name: "items[0].title", not "CreateTemplateRequest.items[0].title".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func issue(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "required field missing"
	case "uuid":
		return "invalid ID format"
	case "oneof":
		return "must be one of: " + e.Param()
	case "datetime":
		return "must be formatted as " + e.Param()
	case "min", "gte":
		return "must be at least " + e.Param()
	case "max", "lte":
		if e.Kind() == reflect.String {
			return "must be " + e.Param() + " characters or less"
		}
		return "must be at most " + e.Param()
	default:
		return "invalid value"
	}
}
