package validator

import (
	"fmt"
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Seat labels are a row letter followed by a 1-2 digit seat number, e.g. "A1"
// or "J10".
var seatLabelRgx = regexp.MustCompile(`^[A-J][1-9][0-9]?$`)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterValidation("seat", validateSeatLabel)

	return validator
}

func validateSeatLabel(fl validator.FieldLevel) bool {
	return seatLabelRgx.MatchString(fl.Field().String())
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", err.Param())
	case "unique":
		return "must not contain duplicates"
	case "seat":
		return "must be a valid seat label, e.g. A1"
	default:
		return "is invalid"
	}
}
