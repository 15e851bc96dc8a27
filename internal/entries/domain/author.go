package domain

import (
	"strings"
	"time"
	_ "time/tzdata" // author timezones must resolve in minimal images

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// Author is the authenticated owner of entries, reduced to what the entry
// lifecycle needs: an id and the timezone that defines their calendar day.
type Author struct {
	ID       uuid.UUID
	Location *time.Location
}

// NewAuthor builds an Author. An empty or unknown IANA timezone falls back to UTC.
func NewAuthor(id uuid.UUID, timezone string) Author {
	loc := time.UTC
	if tz := strings.TrimSpace(timezone); tz != "" {
		if l, err := time.LoadLocation(tz); err == nil {
			loc = l
		}
	}
	return Author{ID: id, Location: loc}
}

func (a Author) location() *time.Location {
	if a.Location == nil {
		return time.UTC
	}
	return a.Location
}

// Today returns the author's calendar date at now.
func (a Author) Today(now time.Time) civil.Date {
	return civil.DateOf(now.In(a.location()))
}

// ExpiryFor returns when an active entry for date stops being live.
func (a Author) ExpiryFor(date civil.Date) time.Time {
	return ExpiryAt(date, a.location())
}

// ExpiryAt returns local midnight in loc of the day after date, in UTC.
func ExpiryAt(date civil.Date, loc *time.Location) time.Time {
	return date.AddDays(1).In(loc).UTC()
}
