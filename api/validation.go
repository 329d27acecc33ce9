package api

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Operator-facing document codes: MS-2024-001, SP-NORTH-2, INV-17.
var codePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]*$`)

// registerValidations adds the custom binding tags used by the request
// structs to gin's validator engine.
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterValidation("refcode", func(fl validator.FieldLevel) bool {
		return codePattern.MatchString(fl.Field().String())
	})
}
