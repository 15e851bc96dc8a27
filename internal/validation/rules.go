// Package validation provides the custom jellydator/validation rules used by
// request DTOs and CLI input.
package validation

import (
	"time"

	"cloud.google.com/go/civil"
	validation "github.com/jellydator/validation"

	apperrors "github.com/Coops0/jrnlapp/internal/errors"
)

const (
	MinEmotionScale = float32(0)
	MaxEmotionScale = float32(10)
)

// WrapValidationError marks err as ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// EmotionScale requires a *float32 within [MinEmotionScale, MaxEmotionScale].
var EmotionScale = []validation.Rule{
	validation.NotNil,
	validation.Min(MinEmotionScale),
	validation.Max(MaxEmotionScale),
}

var CivilDate = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := civil.ParseDate(s)
		return err == nil
	},
	validation.NewError("validation_civil_date", "must be a date in YYYY-MM-DD format"),
)

// Timezone accepts IANA zone names. "Local" is refused since it depends on
// the host the server runs on.
var Timezone = validation.NewStringRuleWithError(
	func(s string) bool {
		if s == "Local" {
			return false
		}
		_, err := time.LoadLocation(s)
		return err == nil
	},
	validation.NewError("validation_timezone", "must be an IANA timezone such as Europe/Berlin"),
)
