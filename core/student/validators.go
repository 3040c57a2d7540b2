package student

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/mathsol/academy/core"
)

var phoneTag = "phone"

// InitValidators registers the student validators. A phone is valid when it holds at least minDigits digits.
func InitValidators(validate *validator.Validate, translator ut.Translator, minDigits int) {
	_ = validate.RegisterValidation(phoneTag, phoneValidation(minDigits))
	core.RegisterCustomTranslation(validate, translator, phoneTag,
		fmt.Sprintf("phone number must contain at least %d digits", minDigits))
}

func phoneValidation(minDigits int) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return len(NormalizePhone(fl.Field().String())) >= minDigits
	}
}
