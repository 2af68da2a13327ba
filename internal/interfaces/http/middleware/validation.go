package middleware

import (
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/buildledger/backend/internal/domain/shared/valueobject"
)

// SetupValidator configures the binding validator with custom tags.
// Call once at startup before the first request is bound.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Report JSON field names in validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("vat_treatment", validVATTreatment)
}

// validVATTreatment accepts the known VAT treatment values. Empty strings
// pass so the tag composes with omitempty on optional fields.
func validVATTreatment(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return valueobject.VATTreatment(value).IsValid()
}
