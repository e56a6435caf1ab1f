// Package validation provides validation utilities for PipeFlow manifests
// and run requests.
package validation

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Validator interface for custom validation
// PRINCIPLES:
// - ISP: Simple interface with single method
// - DIP: Depend on interface, not concrete types
type Validator interface {
	Validate() error
}

// ValidationError represents a validation error with details
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value"`
	Message string      `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidateStruct validates a struct using `validate` tags (required, min=,
// max=) and, when the type implements Validator, its custom rules.
func ValidateStruct(v interface{}) error {
	val := reflect.ValueOf(v)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("ValidateStruct only accepts structs; got %T", v)
	}

	var errs ValidationErrors
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		if tag := field.Tag.Get("validate"); tag != "" {
			errs = append(errs, validateField(field.Name, val.Field(i), tag)...)
		}
	}

	if len(errs) > 0 {
		return errs
	}

	if validator, ok := v.(Validator); ok {
		return validator.Validate()
	}
	return nil
}

// validateField validates a single field based on tag rules
func validateField(fieldName string, value reflect.Value, tag string) ValidationErrors {
	var errs ValidationErrors

	for _, rule := range strings.Split(tag, ",") {
		rule = strings.TrimSpace(rule)

		switch {
		case rule == "required":
			if isZero(value) {
				errs = append(errs, ValidationError{
					Field:   fieldName,
					Value:   value.Interface(),
					Message: "field is required",
				})
			}
		case strings.HasPrefix(rule, "min="):
			if err := compareValue(fieldName, value, strings.TrimPrefix(rule, "min="), true); err != nil {
				errs = append(errs, *err)
			}
		case strings.HasPrefix(rule, "max="):
			if err := compareValue(fieldName, value, strings.TrimPrefix(rule, "max="), false); err != nil {
				errs = append(errs, *err)
			}
		}
	}

	return errs
}

// isZero checks if a value is zero/empty
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map:
		return v.IsNil()
	default:
		return false
	}
}

// compareValue validates value/length against a limit; isMin selects the
// direction.
func compareValue(fieldName string, value reflect.Value, limitStr string, isMin bool) *ValidationError {
	limit, err := strconv.ParseFloat(limitStr, 64)
	if err != nil {
		return &ValidationError{
			Field:   fieldName,
			Value:   value.Interface(),
			Message: fmt.Sprintf("invalid limit value: %s", limitStr),
		}
	}

	var actual float64
	var isLength bool

	switch value.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		actual = float64(value.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		actual = float64(value.Uint())
	case reflect.Float32, reflect.Float64:
		actual = value.Float()
	case reflect.String:
		actual = float64(len(value.String()))
		isLength = true
	case reflect.Slice, reflect.Array, reflect.Map:
		actual = float64(value.Len())
		isLength = true
	default:
		return nil
	}

	violated := actual < limit
	operator := ">="
	if !isMin {
		violated = actual > limit
		operator = "<="
	}
	if !violated {
		return nil
	}

	subject := "value"
	if isLength {
		subject = "length"
	}
	return &ValidationError{
		Field:   fieldName,
		Value:   value.Interface(),
		Message: fmt.Sprintf("%s must be %s %s", subject, operator, limitStr),
	}
}
