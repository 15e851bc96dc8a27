package domain

import (
	"encoding/base64"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// Cursor marks a position in an author's history ordered by (Date, ID) descending.
type Cursor struct {
	Date civil.Date
	ID   uuid.UUID
}

// StartCursor sorts after every real entry, so a page from it starts at the newest.
func StartCursor() Cursor {
	return Cursor{
		Date: civil.Date{Year: 9999, Month: 12, Day: 31},
		ID:   uuid.Max,
	}
}

// Encode returns the opaque token form: base64 of "YYYY-MM-DD:uuid".
func (c Cursor) Encode() string {
	return base64.StdEncoding.EncodeToString([]byte(c.Date.String() + ":" + c.ID.String()))
}

// DecodeCursor parses a token produced by Encode.
func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	datePart, idPart, ok := strings.Cut(string(raw), ":")
	if !ok {
		return Cursor{}, ErrInvalidCursor
	}

	date, err := civil.ParseDate(datePart)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	id, err := uuid.Parse(idPart)
	if err != nil {
		return Cursor{}, ErrInvalidCursor
	}

	return Cursor{Date: date, ID: id}, nil
}
