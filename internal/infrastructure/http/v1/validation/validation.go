// Package validation registers the custom binding tags of the API and turns
// binding failures into field-level AppErrors.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/ttacon/libphonenumber"

	"trackiq/internal/core/apperror"
	"trackiq/internal/domain/auth"
	"trackiq/internal/domain/catalogs/unit"
)

// DefaultPhoneRegion is used for numbers written without a country prefix.
const DefaultPhoneRegion = "US"

var codePattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

var setupOnce sync.Once

// Setup registers the custom tags on gin's validator. Safe to call repeatedly.
func Setup() {
	setupOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			Register(v)
		}
	})
}

// Register adds json field naming and the custom tags to v.
func Register(v *validator.Validate) {
	v.RegisterTagNameFunc(jsonName)
	_ = v.RegisterValidation("uppercase_code", isCode)
	_ = v.RegisterValidation("unit", isUnit)
	_ = v.RegisterValidation("strong_password", isStrongPassword)
	_ = v.RegisterValidation("phone", isPhone)
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return f.Name
	}
	return name
}

func isCode(fl validator.FieldLevel) bool {
	return codePattern.MatchString(fl.Field().String())
}

func isUnit(fl validator.FieldLevel) bool {
	return unit.Unit(fl.Field().String()).Valid()
}

func isStrongPassword(fl validator.FieldLevel) bool {
	return auth.CheckPasswordStrength(fl.Field().String()) == nil
}

func isPhone(fl validator.FieldLevel) bool {
	return ValidPhone(fl.Field().String())
}

// ValidPhone reports whether s parses as a valid phone number.
func ValidPhone(s string) bool {
	num, err := libphonenumber.Parse(s, DefaultPhoneRegion)
	if err != nil {
		return false
	}
	return libphonenumber.IsValidNumber(num)
}

// FormatPhone normalizes a valid number to E.164; other input is returned unchanged.
func FormatPhone(s string) string {
	num, err := libphonenumber.Parse(s, DefaultPhoneRegion)
	if err != nil || !libphonenumber.IsValidNumber(num) {
		return s
	}
	return libphonenumber.Format(num, libphonenumber.E164)
}

// Translate converts a binding error into an AppError. Other errors pass through.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.AsAppError(err); ok {
		return err
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{Field: fieldPath(fe), Message: message(fe)})
		}
		return apperror.NewValidationFields(fields)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return apperror.NewFieldValidation(typeErr.Field, "must be a "+typeErr.Type.String())
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return apperror.NewValidation("Malformed JSON body")
	}
	if errors.Is(err, io.EOF) {
		return apperror.NewValidation("Request body is required")
	}
	return apperror.NewValidation(err.Error())
}

// fieldPath drops the root struct name and embedded struct names:
// "UpdateBrand.CreateBrand.contactPerson.phone" -> "contactPerson.phone".
func fieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) < 2 {
		return fe.Field()
	}
	out := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		if p != "" && unicode.IsUpper([]rune(p)[0]) {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return fe.Field()
	}
	return strings.Join(out, ".")
}

func message(fe validator.FieldError) string {
	kind := fe.Kind()
	isString := kind == reflect.String
	isSlice := kind == reflect.Slice || kind == reflect.Array

	switch fe.Tag() {
	case "required", "required_without", "required_if":
		return "is required"
	case "max", "lte":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		if isSlice {
			return fmt.Sprintf("must contain at most %s items", fe.Param())
		}
		return "must be at most " + fe.Param()
	case "min", "gte":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		if isSlice {
			return fmt.Sprintf("must contain at least %s items", fe.Param())
		}
		return "must be at least " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email address"
	case "uuid", "uuid4", "uuid7":
		return "must be a valid id"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "uppercase_code":
		return "may contain only letters, digits and hyphens"
	case "unit":
		return "must be one of: " + strings.Join(unit.MaterialUnits, ", ")
	case "strong_password":
		return "must be at least 8 characters and contain upper and lower case letters, a digit and a special character"
	case "phone":
		return "must be a valid phone number"
	case "gtfield":
		return "must be after " + fe.Param()
	}
	return "failed on " + fe.Tag()
}
