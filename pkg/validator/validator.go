package validator

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/arogyacare/platform-api/pkg/phone"
)

// RegisterCustomValidators adds the domain tags used in request binding:
//
//	e164in: an Indian mobile number, +91 followed by 10 digits
//	otp4: exactly four ASCII digits
func RegisterCustomValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}

	if err := v.RegisterValidation("e164in", func(fl validator.FieldLevel) bool {
		return phone.ValidateNumber(fl.Field().String())
	}); err != nil {
		return err
	}

	return v.RegisterValidation("otp4", func(fl validator.FieldLevel) bool {
		return phone.ValidateCode(fl.Field().String())
	})
}
