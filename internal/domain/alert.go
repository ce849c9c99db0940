package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Fixed CAP code values used by every alert.
const (
	StatusActual     = "Actual"
	MsgTypeAlert     = "Alert"
	ScopePublic      = "Public"
	UrgencyImmediate = "Immediate"
	CertaintyObserve = "Observed"
)

// Parameter is a CAP info/parameter name/value pair.
type Parameter struct {
	Name  string
	Value string
}

// Info is the CAP info block.
type Info struct {
	Category    string
	Event       string
	Urgency     string
	Severity    Severity
	Certainty   string
	Expires     string
	SenderName  string
	Headline    string
	Description string
	Web         string
	Parameters  []Parameter
	Area        Area
}

// Alert is a CAP 1.2 alert with a single info block.
type Alert struct {
	Identifier string
	Sender     string
	Sent       string
	Status     string
	MsgType    string
	Scope      string
	Info       Info
}

// BuildAreaAlert builds the alert for a flood-area snapshot. It fails when the
// state has no severity or the boundary cannot be expressed as CAP polygons.
func BuildAreaAlert(rec FeatureRecord, s Settings, now time.Time) (Alert, error) {
	p := rec.Properties

	severity, err := ClassifyAreaState(p.State)
	if err != nil {
		return Alert{}, err
	}

	area, err := SerializeArea(rec.Geometry)
	if err != nil {
		return Alert{}, err
	}
	switch rec.Geometry.(type) {
	case Polygon, MultiPolygon:
	default:
		return Alert{}, fmt.Errorf("area alert needs a polygon, got %q: %w", GeometryKind(rec.Geometry), ErrUnsupportedGeometry)
	}
	area.AreaDesc = p.AreaName + ", " + p.ParentName

	sent := FormatTimestamp(p.LastUpdated, s.Location)
	tpl := s.Templates

	description := fmt.Sprintf("AT %s THE %s OBSERVED %s IN %s, %s.",
		formatDescriptionTime(p.LastUpdated, s.Location),
		tpl.SenderName,
		tpl.LevelPhrase[severity],
		p.ParentName,
		p.AreaName,
	)

	return Alert{
		Identifier: alertIdentifier(p.ParentName, p.AreaName, sent),
		Sender:     tpl.Sender,
		Sent:       sent,
		Status:     StatusActual,
		MsgType:    MsgTypeAlert,
		Scope:      ScopePublic,
		Info: Info{
			Category:    "Met",
			Event:       "FLOODING",
			Urgency:     UrgencyImmediate,
			Severity:    severity,
			Certainty:   CertaintyObserve,
			Expires:     Expires(now, s.DefaultExpiry, s.Location),
			SenderName:  tpl.SenderName,
			Headline:    "FLOOD WARNING",
			Description: description,
			Web:         tpl.Web,
			Area:        area,
		},
	}, nil
}

// BuildReportAlert builds the alert for a single disaster report. Reports
// always classify, and a report whose location cannot be expressed still
// yields an alert with an empty area.
func BuildReportAlert(rec FeatureRecord, s Settings, now time.Time) (Alert, error) {
	p := rec.Properties
	region := p.Tags.InstanceRegionCode
	sent := FormatTimestamp(p.CreatedAt, s.Location)

	var area Area
	if rec.Geometry != nil {
		if a, err := SerializeArea(rec.Geometry); err == nil {
			a.AreaDesc = "Location of the disaster reported in the area with code:" + EncodeURI(region)
			area = a
		}
	}

	return Alert{
		Identifier: alertIdentifier(p.PKey, p.Source, sent),
		Sender:     p.Source,
		Sent:       sent,
		Status:     StatusActual,
		MsgType:    MsgTypeAlert,
		Scope:      ScopePublic,
		Info: Info{
			Category:    "Geo",
			Event:       p.DisasterType,
			Urgency:     UrgencyImmediate,
			Severity:    ClassifyReport(p.DisasterType, p.ReportData),
			Certainty:   CertaintyObserve,
			Expires:     Expires(now, s.DefaultExpiry, s.Location),
			SenderName:  p.Source,
			Headline:    "DISASTER WARNING",
			Description: EncodeURI(p.Text),
			Web:         reportsQueryURL(s.Templates.DataURL, region, p.DisasterType),
			Parameters:  reportParameters(p),
			Area:        area,
		},
	}, nil
}

func reportsQueryURL(dataURL, region, disasterType string) string {
	return dataURL + "/reports?admin=" + EncodeURI(region) + "&disaster=" + EncodeURI(disasterType)
}

// reportParameters lists report_data in document order, then the image URL
// and region code when present.
func reportParameters(p Properties) []Parameter {
	params := make([]Parameter, 0, len(p.ReportData)+2)
	for _, f := range p.ReportData {
		params = append(params, Parameter{Name: f.Key, Value: parameterValue(f.Value)})
	}
	if p.ImageURL != "" {
		params = append(params, Parameter{Name: "Image_url", Value: p.ImageURL})
	}
	if p.Tags.InstanceRegionCode != "" {
		params = append(params, Parameter{Name: "instance_region_code", Value: p.Tags.InstanceRegionCode})
	}
	return params
}

// parameterValue stringifies a report_data value. Coordinate objects render
// as "lat, lng" and arrays join their elements with ','.
func parameterValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return formatCoordinate(t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = parameterValue(e)
		}
		return strings.Join(parts, ",")
	case map[string]any:
		if lat, ok := t["lat"]; ok {
			return parameterValue(lat) + ", " + parameterValue(t["lng"])
		}
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}
