package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Coord is a WGS-84 position in GeoJSON axis order.
type Coord struct {
	Lon float64
	Lat float64
}

// Geometry is the closed set of shapes a record can carry. The unexported
// marker keeps implementations inside this package so switches over it stay
// exhaustive.
type Geometry interface {
	geometryKind() string
}

// Polygon is a GeoJSON polygon. Rings[0] is the exterior; any further ring is
// a hole.
type Polygon struct {
	Rings [][]Coord
}

// MultiPolygon is an ordered set of polygons.
type MultiPolygon struct {
	Polygons []Polygon
}

// Point is a single position.
type Point struct {
	Coord
}

// UnsupportedGeometry stands in for any decoded shape this package cannot
// express (LineString, GeometryCollection, ...). Kind is the source type name.
type UnsupportedGeometry struct {
	Kind string
}

func (Polygon) geometryKind() string               { return "Polygon" }
func (MultiPolygon) geometryKind() string          { return "MultiPolygon" }
func (Point) geometryKind() string                 { return "Point" }
func (g UnsupportedGeometry) geometryKind() string { return g.Kind }

// GeometryKind returns the type name of g, or "" for a nil geometry.
func GeometryKind(g Geometry) string {
	if g == nil {
		return ""
	}
	return g.geometryKind()
}

// Properties holds the attributes of a feature. Flood-area records populate
// the area fields; report records populate the report fields.
type Properties struct {
	AreaName    string    `json:"area_name"`
	ParentName  string    `json:"parent_name"`
	LastUpdated time.Time `json:"last_updated"`
	State       int       `json:"state"`

	PKey         string     `json:"pkey"`
	CreatedAt    time.Time  `json:"created_at"`
	Source       string     `json:"source"`
	DisasterType string     `json:"disaster_type"`
	ReportData   ReportData `json:"report_data"`
	Tags         Tags       `json:"tags"`
	ImageURL     string     `json:"image_url"`
	Text         string     `json:"text"`
}

// Tags carries report tagging metadata.
type Tags struct {
	InstanceRegionCode string `json:"instance_region_code"`
}

// FeatureRecord is one decoded feature. DecodeErr is set when the feature's
// attributes could not be read; such a record is skipped, not built.
type FeatureRecord struct {
	ID         string
	Geometry   Geometry
	Properties Properties
	DecodeErr  error
}

// Field is one key of a report_data object.
type Field struct {
	Key   string
	Value any
}

// ReportData is the free-form report_data object with its document key order
// preserved, so that CAP parameters come out in a stable order.
type ReportData []Field

// Get returns the value stored under key.
func (d ReportData) Get(key string) (any, bool) {
	for _, f := range d {
		if f.Key == key {
			return f.Value, true
		}
	}
	return nil, false
}

// UnmarshalJSON decodes a JSON object keeping key order. A null value yields
// an empty ReportData.
func (d *ReportData) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode report_data: %w", err)
	}
	if tok == nil {
		*d = nil
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("decode report_data: expected object, got %v", tok)
	}

	var fields ReportData
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decode report_data: %w", err)
		}
		key, _ := keyTok.(string)

		var value any
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("decode report_data %q: %w", key, err)
		}
		fields = append(fields, Field{Key: key, Value: normalizeNumbers(value)})
	}
	*d = fields
	return nil
}

// MarshalJSON encodes the fields as a JSON object in their stored order.
func (d ReportData) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.Value)
		if err != nil {
			return nil, fmt.Errorf("encode report_data %q: %w", f.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// normalizeNumbers converts json.Number values produced by UseNumber into
// float64 so callers only ever see the standard decoded types.
func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return t.String()
		}
		return f
	case []any:
		for i := range t {
			t[i] = normalizeNumbers(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeNumbers(t[k])
		}
		return t
	default:
		return v
	}
}
