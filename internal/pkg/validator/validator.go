// Package validator runs the struct tag validations on request DTOs.
package validator

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// Validate returns nil when v passes, otherwise a field -> failed-tag map
// suitable for the error envelope's details payload.
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	fields := make(map[string]string)
	for _, fe := range err.(validator.ValidationErrors) {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}
