package middleware

import (
	"github.com/fixmarket/backend/internal/domain/contact"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs custom binding validators on gin's
// validator engine. Call once at startup before the router is built.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("dialable", dialable)
}

// dialable accepts free-form phone text that normalizes to a dialable
// number
func dialable(fl validator.FieldLevel) bool {
	_, err := contact.NormalizePhone(fl.Field().String())
	return err == nil
}
