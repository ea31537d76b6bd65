package validator

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	govalidator "github.com/go-playground/validator/v10"
)

// Violation is a single field-level validation failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Violations []Violation

// Error returns the first violation as a human-readable message.
func (v Violations) Error() string {
	if len(v) == 0 {
		return ""
	}
	return v[0].Field + ": " + v[0].Message
}

func (v Violations) Empty() bool {
	return len(v) == 0
}

func camelToSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func tagName(tag string) string {
	if tag == "" || tag == "-" {
		return ""
	}
	return strings.Split(tag, ",")[0]
}

func getFieldName(t reflect.Type, origFieldName string) (fieldName string) {
	field, found := t.FieldByName(origFieldName)
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", origFieldName, t.Name()))
	}
	for _, key := range []string{"schema", "json"} {
		if name := tagName(field.Tag.Get(key)); name != "" {
			return name
		}
	}
	return camelToSnake(origFieldName)
}

func structType(obj any) reflect.Type {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func (v *Validator) processValidationErrors(obj any, errs govalidator.ValidationErrors) Violations {
	t := structType(obj)
	violations := make(Violations, 0, len(errs))
	for _, e := range errs {
		violations = append(violations, Violation{
			Field:   getFieldName(t, e.StructField()),
			Message: v.getErrorMsgForField(t, e),
		})
	}
	return violations
}

func (v *Validator) getErrorMsgForField(t reflect.Type, err govalidator.FieldError) (errorMsg string) {
	if t != nil {
		if field, found := t.FieldByName(err.StructField()); found {
			errorMsg = field.Tag.Get("errorMsg")
		}
	}
	if errorMsg != "" {
		return
	}
	if msg, ok := v.messages[err.Tag()]; ok {
		return msg()
	}
	switch err.Tag() {
	case "required":
		errorMsg = "This field is required"
	case "max":
		errorMsg = fmt.Sprintf("The maximum value is %s", err.Param())
	case "min":
		errorMsg = fmt.Sprintf("The minimum value is %s", err.Param())
	case "gte":
		errorMsg = fmt.Sprintf("Value should be greater than or equal to %s", err.Param())
	case "lte":
		errorMsg = fmt.Sprintf("Value should be less than or equal to %s", err.Param())
	case "lt":
		errorMsg = fmt.Sprintf("Value should be less than %s", err.Param())
	case "gt":
		errorMsg = fmt.Sprintf("Value should be greater than %s", err.Param())
	case "oneof":
		errorMsg = fmt.Sprintf("Value should be one of %s", err.Param())
	case "len":
		errorMsg = fmt.Sprintf("Length should be equal to %s", err.Param())
	case "email":
		errorMsg = "Value must be a valid email address"
	case "uuid4":
		errorMsg = "Value must be a valid identifier"
	default:
		errorMsg = "This field is invalid"
	}
	return
}
