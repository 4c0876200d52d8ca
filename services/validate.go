package services

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// emailPattern is deliberately loose: something@something.tld
var emailPattern = regexp.MustCompile(`.+@.+\..+`)

func ValidEmail(s string) bool {
	return emailPattern.MatchString(strings.TrimSpace(s))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return ValidEmail(fl.Field().String())
	})
	return v
}

// Validate runs struct tag validation and returns a *ValidationError on failure.
func Validate(req any) error {
	if err := validate.Struct(req); err != nil {
		return fromValidator(err)
	}
	return nil
}
