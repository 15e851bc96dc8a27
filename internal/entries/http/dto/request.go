// Package dto provides the request and response bodies of the entry API.
package dto

import (
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	validation "github.com/jellydator/validation"
	"github.com/microcosm-cc/bluemonday"

	entriesDomain "github.com/Coops0/jrnlapp/internal/entries/domain"
	customValidation "github.com/Coops0/jrnlapp/internal/validation"
)

// textPolicy is safe for concurrent use once built.
var textPolicy = bluemonday.UGCPolicy()

// SanitizeText trims text and strips unsafe HTML. Blank text becomes nil.
func SanitizeText(text *string) *string {
	if text == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*text)
	if trimmed == "" {
		return nil
	}

	cleaned := strings.TrimSpace(textPolicy.Sanitize(trimmed))
	if cleaned == "" {
		return nil
	}
	return &cleaned
}

// UpsertTodayRequest is the body of PUT /v1/entries/today.
type UpsertTodayRequest struct {
	EmotionScale *float32 `json:"emotion_scale"`
	Text         *string  `json:"text"`
	Ephemeral    bool     `json:"ephemeral"`
}

// Validate checks the emotion scale is present and within [0, 10].
func (r *UpsertTodayRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.EmotionScale, customValidation.EmotionScale...),
	)
}

// LocalEntryRequest is one past entry kept by an offline client.
type LocalEntryRequest struct {
	Date         string   `json:"date"`
	EmotionScale *float32 `json:"emotion_scale"`
	Text         *string  `json:"text"`
}

// Validate checks the date format and the emotion scale range.
func (r *LocalEntryRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Date,
			validation.Required,
			customValidation.CivilDate,
		),
		validation.Field(&r.EmotionScale, customValidation.EmotionScale...),
	)
}

// ImportLocalRequest is the body of PUT /v1/entries: a JSON array of local entries.
type ImportLocalRequest []LocalEntryRequest

// Validate validates every element and reports failures by array index.
func (r ImportLocalRequest) Validate() error {
	errs := validation.Errors{}
	for i := range r {
		if err := r[i].Validate(); err != nil {
			errs[strconv.Itoa(i)] = err
		}
	}
	return errs.Filter()
}

// ToDomain converts a validated request, sanitizing every text.
func (r ImportLocalRequest) ToDomain() []*entriesDomain.LocalEntry {
	locals := make([]*entriesDomain.LocalEntry, 0, len(r))
	for _, entry := range r {
		// Validate has already rejected unparsable dates.
		date, _ := civil.ParseDate(entry.Date)
		locals = append(locals, &entriesDomain.LocalEntry{
			Date:         date,
			EmotionScale: *entry.EmotionScale,
			Text:         SanitizeText(entry.Text),
		})
	}
	return locals
}
