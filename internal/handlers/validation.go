package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"socialapp/internal/apperr"
)

const (
	birthDateLayout = "2006-01-02"
	minSignupAge    = 13
	minBirthYear    = 1900
)

// newValidator returns a validator that reports fields by their json name
// and knows the phone tag.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return validPhone(fl.Field().String())
	})
	return v
}

// validPhone accepts exactly ten digits not starting with zero.
func validPhone(s string) bool {
	if len(s) != 10 || s[0] == '0' {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// parseBirthDate checks a YYYY-MM-DD date for a plausible year and the
// minimum signup age.
func parseBirthDate(s string, now time.Time) (time.Time, error) {
	d, err := time.Parse(birthDateLayout, s)
	if err != nil {
		return time.Time{}, errors.New("invalid birth_date format, use YYYY-MM-DD")
	}
	if d.Year() < minBirthYear || d.Year() > now.Year() {
		return time.Time{}, fmt.Errorf("birth year must be between %d and %d", minBirthYear, now.Year())
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.AddDate(minSignupAge, 0, 0).After(today) {
		return time.Time{}, fmt.Errorf("you must be at least %d years old to sign up", minSignupAge)
	}
	return d, nil
}

// validate runs v on req and converts failures into a field error map.
func validate(v *validator.Validate, req interface{}) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	fields := make(map[string]string, len(validationErrors))
	for _, e := range validationErrors {
		fields[e.Field()] = fieldMessage(e)
	}
	return apperr.ValidationFields("Validation failed", fields)
}

func fieldMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "enter a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", e.Param())
	case "max":
		return fmt.Sprintf("must not exceed %s characters", e.Param())
	case "phone":
		return "enter a valid phone number: 10 digits, not starting with 0"
	default:
		return fmt.Sprintf("failed on the '%s' tag", e.Tag())
	}
}
