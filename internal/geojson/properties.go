package geojson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/petabencana/cap-feed-service/internal/domain"
)

// timeLayouts are tried in order. The server emits RFC 3339; rows copied out
// of Postgres use a space separator and a short zone offset. Fractional
// seconds are accepted after any of them.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z07",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05Z07",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// rawProperties mirrors domain.Properties with scalar fields that tolerate the
// type drift seen across PetaBencana endpoints.
type rawProperties struct {
	AreaName    flexString `json:"area_name"`
	ParentName  flexString `json:"parent_name"`
	LastUpdated flexTime   `json:"last_updated"`
	State       flexInt    `json:"state"`

	PKey         flexString        `json:"pkey"`
	CreatedAt    flexTime          `json:"created_at"`
	Source       flexString        `json:"source"`
	DisasterType flexString        `json:"disaster_type"`
	ReportData   domain.ReportData `json:"report_data"`
	Tags         struct {
		InstanceRegionCode flexString `json:"instance_region_code"`
	} `json:"tags"`
	ImageURL flexString `json:"image_url"`
	Text     flexString `json:"text"`
}

func decodeProperties(raw json.RawMessage) (domain.Properties, error) {
	var rp rawProperties
	if err := json.Unmarshal(raw, &rp); err != nil {
		return domain.Properties{}, fmt.Errorf("decode properties: %w", err)
	}
	return domain.Properties{
		AreaName:     string(rp.AreaName),
		ParentName:   string(rp.ParentName),
		LastUpdated:  time.Time(rp.LastUpdated),
		State:        int(rp.State),
		PKey:         string(rp.PKey),
		CreatedAt:    time.Time(rp.CreatedAt),
		Source:       string(rp.Source),
		DisasterType: string(rp.DisasterType),
		ReportData:   rp.ReportData,
		Tags:         domain.Tags{InstanceRegionCode: string(rp.Tags.InstanceRegionCode)},
		ImageURL:     string(rp.ImageURL),
		Text:         string(rp.Text),
	}, nil
}

// flexString accepts a string, a number (kept in its source spelling) or null.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case isNull(data):
		*s = ""
		return nil
	case data[0] == '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*s = flexString(n.String())
	return nil
}

// flexInt accepts an integral number, a numeric string or null.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if isNull(data) {
		*n = 0
		return nil
	}
	text := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return fmt.Errorf("expected integer, got %s", data)
	}
	*n = flexInt(f)
	return nil
}

// flexTime accepts any of timeLayouts, or null for the zero time.
type flexTime time.Time

func (t *flexTime) UnmarshalJSON(data []byte) error {
	if isNull(data) {
		*t = flexTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("expected timestamp string, got %s", bytes.TrimSpace(data))
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*t = flexTime{}
		return nil
	}
	for _, layout := range timeLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = flexTime(parsed)
			return nil
		}
	}
	return fmt.Errorf("unrecognised timestamp %q", s)
}
