package course

import (
	"regexp"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/darasa/core"
)

var (
	courseCodeTag   = "coursecode"
	courseCodeText  = "only 2 to 10 letters and digits are allowed"
	courseCodeRegex = regexp.MustCompile(`^[A-Za-z0-9]{2,10}$`)
)

// InitValidators registers course-specific validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(courseCodeTag, courseCodeValidation)
	core.RegisterCustomTranslation(validate, translator, courseCodeTag, courseCodeText)
}

func courseCodeValidation(fl validator.FieldLevel) bool {
	return courseCodeRegex.MatchString(fl.Field().String())
}
