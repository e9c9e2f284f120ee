package validator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var couponCodeRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// New creates a new validator instance with custom validations registered.
// This ensures consistent validation across the application and tests.
func New() *validator.Validate {
	v := validator.New()

	// "notblank" rejects whitespace-only strings. Used for fields that must
	// have meaningful content, like coupon codes and template ids.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true // Not a string, let other validators handle it
		}
		return strings.TrimSpace(str) != ""
	})

	// "couponcode" restricts coupon codes to letters, digits, dash and
	// underscore, matching how codes are stored and compared.
	_ = v.RegisterValidation("couponcode", func(fl validator.FieldLevel) bool {
		str, ok := fl.Field().Interface().(string)
		if !ok {
			return true
		}
		return couponCodeRe.MatchString(strings.TrimSpace(str))
	})

	return v
}
