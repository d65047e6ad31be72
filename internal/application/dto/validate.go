package dto

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags of a request DTO.
func Validate(req any) error {
	return validate.Struct(req)
}
