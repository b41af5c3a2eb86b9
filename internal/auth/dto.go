package auth

import (
	"errors"
	"reflect"
	"strings"

	"github.com/frahmantamala/erp-rbac/internal"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenDTO for refresh token requests
type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Validate checks required fields and returns a validation AppError on failure.
func (d LoginDTO) Validate() error {
	return validateStruct(d)
}

// Validate for refresh token DTO
func (d RefreshTokenDTO) Validate() error {
	return validateStruct(d)
}

func validateStruct(dto interface{}) error {
	err := validate.Struct(dto)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed)
	}

	details := internal.ValidationErrors{}
	for _, fe := range fieldErrs {
		field := fe.Field()
		msg := field + " is required"
		if fe.Tag() != "required" {
			msg = field + " must be a valid " + fe.Tag()
		}
		details.Errors = append(details.Errors, internal.ValidationError{
			Field:   field,
			Message: msg,
			Code:    string(internal.ErrCodeValidationFailed),
		})
	}
	return internal.NewValidationError("Validation failed", internal.ErrCodeValidationFailed).WithDetails(details)
}
