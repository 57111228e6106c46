// Package validation wraps go-playground/validator with the job enums
// registered and translates failures into apperr field errors.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/khrees2412/jobseeker/internal/apperr"
	"github.com/khrees2412/jobseeker/pkg/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("jobstatus", func(fl validator.FieldLevel) bool {
		return models.Status(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("jobtype", func(fl validator.FieldLevel) bool {
		return models.JobType(fl.Field().String()).Valid()
	})

	return v
}

// Struct validates s against its validate tags. Failures come back as an
// apperr Validation error carrying one FieldError per failed field.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(err.Error())
	}

	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, e := range verrs {
		fields = append(fields, apperr.FieldError{Field: e.Field(), Message: fieldMessage(e)})
	}
	return apperr.Validation(fields[0].Message, fields...)
}

func fieldMessage(e validator.FieldError) string {
	field := e.Field()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("Please provide %s", field)
	case "min":
		if e.Kind() == reflect.String {
			if e.Param() == "1" {
				return fmt.Sprintf("Please provide %s", field)
			}
			return fmt.Sprintf("%s must be at least %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max":
		if e.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot be more than %s characters", field, e.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "email":
		return "Please provide a valid email"
	case "jobstatus":
		return fmt.Sprintf("%s must be one of: %s", field, joinStatuses())
	case "jobtype":
		return fmt.Sprintf("%s must be one of: %s", field, joinJobTypes())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func joinStatuses() string {
	parts := make([]string, len(models.Statuses))
	for i, s := range models.Statuses {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

func joinJobTypes() string {
	parts := make([]string, len(models.JobTypes))
	for i, t := range models.JobTypes {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

// Trim trims surrounding whitespace from every non-nil string pointer
func Trim(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}
