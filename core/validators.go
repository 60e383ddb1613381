package core

import (
	"log"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
)

var Translator ut.Translator

// NewValidator returns a validator with our custom validations registered and
// English error message translations set up.
func NewValidator() *validator.Validate {
	validate := validator.New()

	// report json field names in validation errors
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	Translator, _ = uni.GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(validate, Translator); err != nil {
		log.Fatalf("validators.RegisterDefaultTranslations: %v", err)
	}

	for tag, fn := range map[string]validator.Func{
		"calendardate": validateCalendarDate,
		"userrole":     validateUserRole,
	} {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			log.Fatalf("validators.RegisterValidation(%s): %v", tag, err)
		}
	}

	registerTranslation(validate, "calendardate", "{0} must be a valid date in YYYY-MM-DD format")
	registerTranslation(validate, "userrole", "{0} must be one of: student, teacher, parent")
	return validate
}

func registerTranslation(validate *validator.Validate, tag, text string) {
	err := validate.RegisterTranslation(
		tag,
		Translator,
		func(ut ut.Translator) error { return ut.Add(tag, text, true) },
		func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, fe.Field())
			return t
		},
	)
	if err != nil {
		log.Fatalf("validators.RegisterTranslation(%s): %v", tag, err)
	}
}

func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(DateLayout, fl.Field().String())
	return err == nil
}

func validateUserRole(fl validator.FieldLevel) bool {
	switch strings.ToLower(fl.Field().String()) {
	case "student", "teacher", "parent":
		return true
	}
	return false
}
