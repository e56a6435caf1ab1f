// Package validation provides enhanced validation with go-playground/validator integration
package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Enhanced validator instance with custom validations
var (
	// Validate is the main validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validation functions
	Validate.RegisterValidation("flow_name", validateFlowName)
	Validate.RegisterValidation("pipe_name", validatePipeName)
	Validate.RegisterValidation("run_mode", validateRunMode)
	Validate.RegisterValidation("scalar", validateScalar)
	Validate.RegisterValidation("uuid4", validateUUID4)
	Validate.RegisterValidation("semver", validateSemVer)

	// Register tag name function to use JSON tags for field names
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// ValidateWithPlayground validates using go-playground/validator
func ValidateWithPlayground(s interface{}) error {
	err := Validate.Struct(s)
	if err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// formatValidationErrors converts validator errors to our custom format
func formatValidationErrors(err error) ValidationErrors {
	var errs ValidationErrors

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, fieldError := range validationErrors {
			errs = append(errs, ValidationError{
				Field:   fieldError.Field(),
				Value:   fieldError.Value(),
				Message: getErrorMessage(fieldError),
			})
		}
	}

	return errs
}

// getErrorMessage returns a human-readable error message
func getErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("minimum value/length is %s", fe.Param())
	case "max":
		return fmt.Sprintf("maximum value/length is %s", fe.Param())
	case "flow_name":
		return "must be a valid flow name (alphanumeric, underscore, hyphen, dot)"
	case "pipe_name":
		return "must be a valid pipe name (alphanumeric, underscore, hyphen)"
	case "run_mode":
		return "must be a valid run mode identifier"
	case "scalar":
		return "must be an integer, float, or string"
	case "uuid":
		return "must be a valid UUID"
	default:
		return fmt.Sprintf("validation failed: %s", fe.Tag())
	}
}

// Custom validation functions for PipeFlow-specific rules

// validateFlowName validates flow artifact name format
func validateFlowName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" {
		return false
	}
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_.-]+$`, name)
	return matched && len(name) <= 100
}

// validatePipeName validates pipe identifier format
func validatePipeName(fl validator.FieldLevel) bool {
	name := fl.Field().String()
	if name == "" {
		return false
	}
	matched, _ := regexp.MatchString(`^[a-zA-Z0-9_-]+$`, name)
	return matched && len(name) <= 100
}

// validateRunMode validates mode tag format
func validateRunMode(fl validator.FieldLevel) bool {
	mode := fl.Field().String()
	if mode == "" {
		return false
	}
	matched, _ := regexp.MatchString(`^[a-z][a-z0-9_-]*$`, mode)
	return matched && len(mode) <= 50
}

// validateScalar validates that an interface value is a config scalar
func validateScalar(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Float32, reflect.Float64, reflect.String:
		return true
	case reflect.Interface:
		switch fl.Field().Interface().(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, float32, float64, string:
			return true
		}
		return false
	default:
		return false
	}
}

// validateUUID4 validates UUID v4 format
func validateUUID4(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if id == "" {
		return false
	}
	matched, _ := regexp.MatchString(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`, id)
	return matched
}

// validateSemVer validates semantic version format
func validateSemVer(fl validator.FieldLevel) bool {
	version := fl.Field().String()
	if version == "" {
		return false
	}
	matched, _ := regexp.MatchString(`^(\d+)\.(\d+)\.(\d+)(-[\w\.-]+)?(\+[\w\.-]+)?$`, version)
	return matched
}
