package userload

import "github.com/go-playground/validator/v10"

// NewValidator returns a validator with the identifier tag registered, for
// database and table names.
func NewValidator() *validator.Validate {
	validate := validator.New()
	_ = validate.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return IsValidIdentifier(fl.Field().String())
	})
	return validate
}

var validate = NewValidator()
