package customvalidator

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var statusCodeRegexp = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)

// isStatusCode: машинный код статуса — ВЕРХНИЙ_РЕГИСТР, цифры и подчёркивания.
func isStatusCode(fl validator.FieldLevel) bool {
	return statusCodeRegexp.MatchString(fl.Field().String())
}

// isHexColor: цвет колонки в формате #RGB или #RRGGBB.
func isHexColor(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	if !strings.HasPrefix(value, "#") {
		return false
	}
	hex := value[1:]
	if len(hex) != 3 && len(hex) != 6 {
		return false
	}
	for _, r := range hex {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return false
		}
	}
	return true
}

func RegisterCustomValidations(v *validator.Validate) error {
	if err := v.RegisterValidation("status_code", isStatusCode); err != nil {
		return err
	}
	if err := v.RegisterValidation("column_color", isHexColor); err != nil {
		return err
	}
	return nil
}
