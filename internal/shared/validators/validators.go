package validators

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"bgpiesa-backend/internal/shared/apperror"
)

// NotBlank rejects empty or whitespace-only strings.
// Works on plain strings, pointers and optional.Field values.
func NotBlank(msg string) validation.RuleFunc {
	return func(value interface{}) error {
		v, _ := validation.Indirect(value)
		s, _ := v.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError("validation_required", msg)
		}
		return nil
	}
}

// ToAppError converts ozzo validation output into a client error
func ToAppError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return apperror.Validation(verrs.Error())
	}
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}
	return apperror.Validation(err.Error())
}
