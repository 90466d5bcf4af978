// internal/validation/validator.go
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/gurkanbulca/taskmanagement/internal/models"
)

// FieldError represents a validation error for a specific field
type FieldError struct {
	Field   string `json:"fieldName"`
	Message string `json:"message"`
}

// Errors collects every field violation found in one payload.
type Errors struct {
	Violations []FieldError `json:"violations"`
}

func (e *Errors) Error() string {
	if len(e.Violations) == 0 {
		return "validation error"
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *Errors) Add(field, message string) {
	e.Violations = append(e.Violations, FieldError{Field: field, Message: message})
}

func (e *Errors) HasErrors() bool {
	return len(e.Violations) > 0
}

// IsValidationErrors reports whether err carries boundary violations.
func IsValidationErrors(err error) bool {
	var ve *Errors
	return errors.As(err, &ve)
}

// Validator validates request payloads at the HTTP boundary.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

func New() *Validator {
	return newWithClock(time.Now)
}

func newWithClock(now func() time.Time) *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      now,
	}

	// Report JSON names instead of Go field names
	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	v.validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if dt, ok := field.Interface().(models.DateTime); ok {
			return dt.Time()
		}
		return nil
	}, models.DateTime{})

	mustRegister(v.validate, "futureorpresent", v.futureOrPresent)
	mustRegister(v.validate, "priority", validPriority)

	return v
}

// mustRegister panics when a rule cannot be registered; every rule tagged on
// the request types must exist before the first request is validated.
func mustRegister(validate *validator.Validate, tag string, fn validator.Func) {
	if err := validate.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Struct validates s and returns *Errors listing every violation.
func (v *Validator) Struct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate payload: %w", err)
	}

	out := &Errors{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

// futureOrPresent accepts any instant from the start of the current minute on.
func (v *Validator) futureOrPresent(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !t.Before(v.now().Truncate(time.Minute))
}

func validPriority(fl validator.FieldLevel) bool {
	return models.TaskPriority(fl.Field().String()).Valid()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "futureorpresent":
		return fmt.Sprintf("%s must not be earlier than the current date", fe.Field())
	case "priority":
		names := make([]string, 0, 3)
		for _, p := range models.Priorities() {
			names = append(names, string(p))
		}
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.Join(names, ", "))
	default:
		return fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag())
	}
}
