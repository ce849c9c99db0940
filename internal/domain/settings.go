package domain

import (
	"fmt"
	"time"
)

// Templates are the canned strings placed into alerts and feeds.
type Templates struct {
	Sender      string // alert/sender for flood-area alerts
	SenderName  string // info/senderName and the agency named in descriptions
	Web         string // info/web for flood-area alerts
	DataURL     string // base of feed and entry identifiers
	AuthorName  string
	AuthorURI   string
	LevelPhrase map[Severity]string
}

// DefaultTemplates returns the PetaBencana / BPBD Jakarta strings.
func DefaultTemplates() Templates {
	return Templates{
		Sender:     "BPBD.JAKARTA.GOV.ID",
		SenderName: "JAKARTA EMERGENCY MANAGEMENT AGENCY",
		Web:        "https://petabencana.id/",
		DataURL:    "https://data.petabencana.id",
		AuthorName: "petabencana.id",
		AuthorURI:  "https://petabencana.id/",
		LevelPhrase: map[Severity]string{
			SeverityUnknown:  "AN UNKNOWN LEVEL OF FLOODING - USE CAUTION -",
			SeverityMinor:    "FLOODING OF BETWEEN 10 and 70 CENTIMETERS",
			SeverityModerate: "FLOODING OF BETWEEN 71 and 150 CENTIMETERS",
			SeveritySevere:   "FLOODING OF OVER 150 CENTIMETERS",
		},
	}
}

// Settings is the explicit configuration threaded through alert construction.
type Settings struct {
	Location      *time.Location
	DefaultExpiry time.Duration
	Templates     Templates
}

// NewSettings resolves the IANA timezone name and validates the expiry.
func NewSettings(timezone string, expiry time.Duration, tpl Templates) (Settings, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Settings{}, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	if expiry <= 0 {
		return Settings{}, fmt.Errorf("default expiry must be positive, got %s", expiry)
	}
	return Settings{Location: loc, DefaultExpiry: expiry, Templates: tpl}, nil
}

const (
	timestampLayout   = "2006-01-02T15:04:05-07:00"
	descriptionLayout = "15:04 MST"
)

// FormatTimestamp renders t in loc as ISO-8601 with a numeric offset,
// e.g. 2023-01-01T07:00:00+07:00.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(timestampLayout)
}

// Expires returns now plus the default expiry, formatted in loc.
func Expires(now time.Time, expiry time.Duration, loc *time.Location) string {
	return FormatTimestamp(now.Add(expiry), loc)
}

func formatDescriptionTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(descriptionLayout)
}
