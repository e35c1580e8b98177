package middleware

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"numbering/internal/domain/numbering"
)

var (
	setupOnce sync.Once
	setupErr  error
)

// SetupValidator configures gin's validator: errors report JSON field names
// and the "halfwidth" tag accepts printable ASCII only. DTOs depend on the
// custom tag, so a failure here must stop startup.
func SetupValidator() error {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			setupErr = fmt.Errorf("binding validator engine is %T, want *validator.Validate", binding.Validator.Engine())
			return
		}
		setupErr = RegisterValidators(v)
	})
	return setupErr
}

// RegisterValidators installs the JSON tag name function and the custom
// tags on v.
func RegisterValidators(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	if err := v.RegisterValidation("halfwidth", func(fl validator.FieldLevel) bool {
		return numbering.IsHalfwidth(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("register halfwidth validator: %w", err)
	}
	return nil
}

// ValidationMessage returns a human-readable message for one field error.
func ValidationMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "This field is required"
	case "uuid":
		return "Invalid UUID format"
	case "oneof":
		return "Must be one of: " + e.Param()
	case "min":
		return "Must be at least " + e.Param()
	case "max":
		return "Must be at most " + e.Param()
	case "halfwidth":
		return "Must contain halfwidth ASCII characters only"
	case "datetime":
		return "Must be a date in format " + e.Param()
	default:
		return "Invalid value"
	}
}
