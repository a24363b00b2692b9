package handlers

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Codes longer than three letters cover non-standard currencies such as USDT.
var currencyCodeRe = regexp.MustCompile(`^[A-Z][A-Z0-9]{2,5}$`)

// registerBindingValidations installs the custom binding tags used by the
// request DTOs on gin's validator engine.
func registerBindingValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("currencycode", func(fl validator.FieldLevel) bool {
			return currencyCodeRe.MatchString(fl.Field().String())
		})
	}
}
