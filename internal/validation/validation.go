// Package validation checks family and kid input at the data-entry boundary.
// Failures are returned as field-level errors and never reach fee computation.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"preschoolfees/internal/models"
)

var ssnPattern = regexp.MustCompile(`^\d{8}-\d{4}$`)

var validate = newValidator()

// ValidationError represents a validation error on one field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Errors collects every failed field of one record
type Errors []ValidationError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether the given field failed
func (e Errors) Has(field string) bool {
	for _, err := range e {
		if err.Field == field {
			return true
		}
	}
	return false
}

type kidInput struct {
	SSN       string    `validate:"required,len=13,ssn"`
	FullName  string    `validate:"required,min=3"`
	StartDate time.Time `validate:"required"`
}

type familyInput struct {
	MotherEmail string `validate:"omitempty,email"`
	FatherEmail string `validate:"omitempty,email"`
}

// ValidateKid checks a prepared kid record
func ValidateKid(kid *models.Kid) error {
	return check(validate.Struct(kidInput{
		SSN:       kid.SSN,
		FullName:  strings.TrimSpace(kid.FullName),
		StartDate: kid.StartDate,
	}))
}

// ValidateFamily checks a prepared family record
func ValidateFamily(family *models.Family) error {
	return check(validate.Struct(familyInput{
		MotherEmail: strings.TrimSpace(family.MotherEmail),
		FatherEmail: strings.TrimSpace(family.FatherEmail),
	}))
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// "ssn" allows the blank value so that "required" reports it instead
	_ = v.RegisterValidation("ssn", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || ssnPattern.MatchString(value)
	})
	return v
}

var fieldNames = map[string]string{
	"SSN":         "ssn",
	"FullName":    "full_name",
	"StartDate":   "start_date",
	"MotherEmail": "mother_email",
	"FatherEmail": "father_email",
}

func check(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	var out Errors
	for _, fe := range fieldErrs {
		field := fieldNames[fe.Field()]
		out = append(out, ValidationError{Field: field, Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "ssn":
		return "must have the format YYYYMMDD-NNNN"
	case "email":
		return "invalid email format"
	default:
		return "is invalid"
	}
}
