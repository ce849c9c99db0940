package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Severity is the CAP info/severity tier.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityMinor
	SeverityModerate
	SeveritySevere
	SeverityExtreme
)

// String returns the CAP code value.
func (s Severity) String() string {
	switch s {
	case SeverityMinor:
		return "Minor"
	case SeverityModerate:
		return "Moderate"
	case SeveritySevere:
		return "Severe"
	case SeverityExtreme:
		return "Extreme"
	default:
		return "Unknown"
	}
}

// ClassifyAreaState maps a flood-area REM state to a severity. States outside
// 1-4 return an error wrapping ErrUnclassified.
func ClassifyAreaState(state int) (Severity, error) {
	switch state {
	case 1:
		return SeverityUnknown, nil
	case 2:
		return SeverityMinor, nil
	case 3:
		return SeverityModerate, nil
	case 4:
		return SeveritySevere, nil
	default:
		return SeverityUnknown, fmt.Errorf("state %d: %w", state, ErrUnclassified)
	}
}

// reportClassifier derives a severity from a report's report_data.
type reportClassifier func(data ReportData) Severity

// reportClassifiers holds one rule per disaster type. Types without an entry,
// volcano and fire included, classify as unknown.
var reportClassifiers = map[string]reportClassifier{
	"flood":      classifyFlood,
	"earthquake": classifyEarthquake,
	"haze":       classifyHaze,
	"wind":       classifyWind,
	"volcano":    classifyUnassessed,
	"fire":       classifyUnassessed,
}

// ClassifyReport maps a disaster report to a severity. It is total: every
// input resolves to some tier.
func ClassifyReport(disasterType string, data ReportData) Severity {
	classify, ok := reportClassifiers[disasterType]
	if !ok {
		return SeverityUnknown
	}
	return classify(data)
}

func classifyUnassessed(ReportData) Severity {
	return SeverityUnknown
}

func classifyFlood(data ReportData) Severity {
	depth, ok := numberField(data, "flood_depth")
	if !ok {
		if hasValue(data, "flood_depth") {
			return SeverityUnknown
		}
		depth = 0
	}
	switch {
	case depth <= 70:
		return SeverityMinor
	case depth <= 150:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}

func classifyEarthquake(data ReportData) Severity {
	subType, _ := data.Get("report_type")
	switch subType {
	case "road":
		code, ok := codeField(data, "accessabilityFailure")
		if !ok {
			if hasValue(data, "accessabilityFailure") {
				return SeverityUnknown
			}
			code = 0
		}
		return lookupCode(code, SeverityExtreme, SeveritySevere, SeverityModerate, SeverityModerate, SeverityMinor)
	case "structure":
		score, ok := numberField(data, "structureFailure")
		if !ok {
			if hasValue(data, "structureFailure") {
				return SeverityUnknown
			}
			score = 0
		}
		switch {
		case score < 1:
			return SeverityMinor
		case score < 2:
			return SeverityModerate
		default:
			return SeveritySevere
		}
	default:
		return SeverityUnknown
	}
}

func classifyHaze(data ReportData) Severity {
	code, ok := codeField(data, "airQuality")
	if !ok {
		return SeverityUnknown
	}
	return lookupCode(code, SeverityModerate, SeverityModerate, SeveritySevere, SeverityExtreme, SeverityExtreme)
}

func classifyWind(data ReportData) Severity {
	code, ok := codeField(data, "impact")
	if !ok {
		if hasValue(data, "impact") {
			return SeverityUnknown
		}
		code = 0
	}
	return lookupCode(code, SeverityMinor, SeverityModerate, SeveritySevere)
}

// lookupCode indexes tiers by code; codes past the table are unknown.
func lookupCode(code int, tiers ...Severity) Severity {
	if code < 0 || code >= len(tiers) {
		return SeverityUnknown
	}
	return tiers[code]
}

// hasValue reports whether key is present with a non-null value. A JSON null
// counts as missing.
func hasValue(data ReportData, key string) bool {
	v, ok := data.Get(key)
	return ok && v != nil
}

// numberField reads key as a finite float. JSON numbers and numeric strings
// are accepted; NaN, infinities and anything else report false.
func numberField(data ReportData, key string) (float64, bool) {
	v, ok := data.Get(key)
	if !ok {
		return 0, false
	}
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// codeField reads key as a whole-number code.
func codeField(data ReportData, key string) (int, bool) {
	f, ok := numberField(data, key)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}
