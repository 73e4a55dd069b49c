package validation

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackiq/internal/core/apperror"
)

type contact struct {
	Phone string `json:"phone" binding:"omitempty,phone" validate:"omitempty,phone"`
}

type sample struct {
	Code     string  `json:"code" validate:"required,max=10,uppercase_code"`
	Unit     string  `json:"unit" validate:"required,unit"`
	Password string  `json:"password" validate:"omitempty,strong_password"`
	Contact  contact `json:"contactPerson"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	Register(v)
	return v
}

func TestCustomTags(t *testing.T) {
	v := newValidator()

	valid := sample{Code: "eco-001", Unit: "kg", Password: "Admin@123", Contact: contact{Phone: "+1 650-253-0000"}}
	require.NoError(t, v.Struct(valid))

	tests := []struct {
		name  string
		mut   func(*sample)
		field string
	}{
		{"bad code", func(s *sample) { s.Code = "ECO 001" }, "code"},
		{"long code", func(s *sample) { s.Code = "ABCDEFGHIJK" }, "code"},
		{"bad unit", func(s *sample) { s.Unit = "bushel" }, "unit"},
		{"weak password", func(s *sample) { s.Password = "password" }, "password"},
		{"bad phone", func(s *sample) { s.Contact.Phone = "12345" }, "contactPerson.phone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mut(&s)

			err := Translate(v.Struct(s))
			appErr, ok := apperror.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperror.CodeValidation, appErr.Code)

			fields := appErr.FieldErrors()
			require.Len(t, fields, 1)
			assert.Equal(t, tt.field, fields[0].Field)
		})
	}
}

func TestTranslate_Messages(t *testing.T) {
	err := Translate(newValidator().Struct(sample{}))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)

	got := map[string]string{}
	for _, f := range appErr.FieldErrors() {
		got[f.Field] = f.Message
	}
	assert.Equal(t, "is required", got["code"])
	assert.Equal(t, "is required", got["unit"])
}

func TestTranslate_JSONErrors(t *testing.T) {
	var dst struct {
		Quantity int `json:"quantity"`
	}
	err := Translate(json.NewDecoder(strings.NewReader(`{"quantity":"ten"}`)).Decode(&dst))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	err = Translate(json.NewDecoder(strings.NewReader(`{"quantity":`)).Decode(&dst))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	passthrough := apperror.NewNotFound("Brand", "x")
	assert.Same(t, passthrough, Translate(passthrough))
	assert.NoError(t, Translate(nil))
}

func TestPhoneHelpers(t *testing.T) {
	assert.True(t, ValidPhone("+1 650-253-0000"))
	assert.False(t, ValidPhone("not a phone"))
	assert.Equal(t, "+16502530000", FormatPhone("(650) 253-0000"))
	assert.Equal(t, "garbage", FormatPhone("garbage"))
}

type Base struct {
	Name string `json:"name" validate:"required"`
}

type withVersion struct {
	Base
	Version int `json:"version" validate:"required,min=1"`
}

func TestTranslate_EmbeddedFieldPath(t *testing.T) {
	err := Translate(newValidator().Struct(withVersion{Version: 1}))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)

	fields := appErr.FieldErrors()
	require.Len(t, fields, 1)
	assert.Equal(t, "name", fields[0].Field)
}
