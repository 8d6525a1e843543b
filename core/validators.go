package core

import (
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// custom validation tags & texts
	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "this field is required"

	gteTag  = "gte"
	gteText = "must be >= {0}"

	maxTag  = "max"
	maxText = "must be at most {0} characters long"
)

// NewTranslator returns the english translator used for validation messages.
func NewTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

// NewValidator returns a validator ready for use with InitValidators already applied.
func NewValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	InitValidators(validate, translator)
	return validate
}

// InitValidators instantiates the validator for use.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom translations
	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, gteTag, gteText, true)
	RegisterCustomTranslation(validate, translator, maxTag, maxText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
// `text` may reference the tag parameter as {0}.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Param())
			return s
		},
	)
}

// FieldErrors flattens validation failures into a field -> messages map.
// It returns false if err carries no field information.
func FieldErrors(err error, translator ut.Translator) (map[string][]string, bool) {
	switch origErr := err.(type) {
	case validator.ValidationErrors:
		fldErrs := make(map[string][]string, len(origErr))
		for _, vErr := range origErr {
			fldErrs[vErr.Field()] = append(fldErrs[vErr.Field()], vErr.Translate(translator))
		}
		return fldErrs, true
	case *ValidationError:
		if len(origErr.Fields) == 0 {
			return nil, false
		}
		fldErrs := make(map[string][]string, len(origErr.Fields))
		for _, fErr := range origErr.Fields {
			fldErrs[fErr.Field] = append(fldErrs[fErr.Field], fErr.Error)
		}
		return fldErrs, true
	}
	return nil, false
}
