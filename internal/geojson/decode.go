// Package geojson decodes PetaBencana GeoJSON documents into feature records.
package geojson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/twpayne/go-geom"
	geomjson "github.com/twpayne/go-geom/encoding/geojson"

	"github.com/petabencana/cap-feed-service/internal/domain"
)

// ErrNotFeatureCollection is returned when the document is neither a
// FeatureCollection nor a bare array of features.
var ErrNotFeatureCollection = errors.New("geojson: not a feature collection")

type rawCollection struct {
	Type     string            `json:"type"`
	Features []json.RawMessage `json:"features"`
}

type rawFeature struct {
	ID         json.RawMessage `json:"id"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties json.RawMessage `json:"properties"`
}

// Decode reads a whole document from r.
func Decode(r io.Reader) ([]domain.FeatureRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read geojson: %w", err)
	}
	return DecodeBytes(data)
}

// DecodeBytes converts a FeatureCollection, or a bare JSON array of features,
// into records in document order. Only a document that is not a feature list
// fails as a whole. A feature whose attributes cannot be read comes back with
// DecodeErr set, and geometries this service cannot express are kept as
// domain.UnsupportedGeometry; both are skipped downstream.
func DecodeBytes(data []byte) ([]domain.FeatureRecord, error) {
	features, err := features(data)
	if err != nil {
		return nil, err
	}

	records := make([]domain.FeatureRecord, 0, len(features))
	for i, raw := range features {
		rec := convertFeature(raw)
		if rec.DecodeErr != nil {
			rec.DecodeErr = fmt.Errorf("feature %d: %w", i, rec.DecodeErr)
		}
		records = append(records, rec)
	}
	return records, nil
}

func features(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, ErrNotFeatureCollection
	}

	if trimmed[0] == '[' {
		var fs []json.RawMessage
		if err := json.Unmarshal(trimmed, &fs); err != nil {
			return nil, fmt.Errorf("decode features: %w", err)
		}
		return fs, nil
	}

	var c rawCollection
	if err := json.Unmarshal(trimmed, &c); err != nil {
		return nil, fmt.Errorf("decode feature collection: %w", err)
	}
	if c.Type != "FeatureCollection" {
		return nil, fmt.Errorf("%w: type %q", ErrNotFeatureCollection, c.Type)
	}
	return c.Features, nil
}

func convertFeature(raw json.RawMessage) domain.FeatureRecord {
	var rec domain.FeatureRecord

	var f rawFeature
	if err := json.Unmarshal(raw, &f); err != nil {
		rec.DecodeErr = fmt.Errorf("decode feature: %w", err)
		return rec
	}

	id, err := featureID(f.ID)
	if err != nil {
		rec.DecodeErr = err
		return rec
	}
	rec.ID = id

	if !isNull(f.Properties) {
		props, err := decodeProperties(f.Properties)
		if err != nil {
			rec.DecodeErr = err
			return rec
		}
		rec.Properties = props
	}

	rec.Geometry = convertGeometry(f.Geometry)
	return rec
}

// featureID accepts the string or number forms GeoJSON allows.
func featureID(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decode id: %w", err)
	}
	return n.String(), nil
}

func convertGeometry(raw json.RawMessage) domain.Geometry {
	if isNull(raw) {
		return nil
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return domain.UnsupportedGeometry{Kind: "invalid"}
	}

	var g geom.T
	if err := geomjson.Unmarshal(raw, &g); err != nil || g == nil {
		return domain.UnsupportedGeometry{Kind: head.Type}
	}
	// An empty coordinate array decodes without error but carries no
	// positions; reading one back would panic.
	if g.Empty() {
		return domain.UnsupportedGeometry{Kind: head.Type}
	}

	switch t := g.(type) {
	case *geom.Polygon:
		return polygon(t.Coords())
	case *geom.MultiPolygon:
		members := t.Coords()
		mp := domain.MultiPolygon{Polygons: make([]domain.Polygon, len(members))}
		for i, rings := range members {
			mp.Polygons[i] = polygon(rings)
		}
		return mp
	case *geom.Point:
		return domain.Point{Coord: coord(t.Coords())}
	default:
		return domain.UnsupportedGeometry{Kind: head.Type}
	}
}

func polygon(rings [][]geom.Coord) domain.Polygon {
	p := domain.Polygon{Rings: make([][]domain.Coord, len(rings))}
	for i, ring := range rings {
		p.Rings[i] = make([]domain.Coord, len(ring))
		for j, c := range ring {
			p.Rings[i][j] = coord(c)
		}
	}
	return p
}

func coord(c geom.Coord) domain.Coord {
	return domain.Coord{Lon: c.X(), Lat: c.Y()}
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || string(trimmed) == "null"
}
