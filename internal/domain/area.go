package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Area is the CAP area block. Polygons holds one "lat,lon lat,lon ..." string
// per polygon; Circle is "lat,lon radius" and is set only for point shapes.
type Area struct {
	AreaDesc string
	Polygons []string
	Circle   string
}

// IsZero reports whether the area carries no description and no shape.
func (a Area) IsZero() bool {
	return a.AreaDesc == "" && len(a.Polygons) == 0 && a.Circle == ""
}

// SerializeArea converts a geometry into CAP polygon or circle form. The
// returned Area has no AreaDesc; callers fill it in. Polygons with interior
// rings and unrecognized shapes return an error wrapping ErrUnsupportedGeometry.
func SerializeArea(g Geometry) (Area, error) {
	switch geom := g.(type) {
	case Polygon:
		s, err := polygonString(geom)
		if err != nil {
			return Area{}, err
		}
		return Area{Polygons: []string{s}}, nil
	case MultiPolygon:
		if len(geom.Polygons) == 0 {
			return Area{}, fmt.Errorf("multipolygon without members: %w", ErrUnsupportedGeometry)
		}
		polygons := make([]string, 0, len(geom.Polygons))
		for i, p := range geom.Polygons {
			s, err := polygonString(p)
			if err != nil {
				return Area{}, fmt.Errorf("member %d: %w", i, err)
			}
			polygons = append(polygons, s)
		}
		return Area{Polygons: polygons}, nil
	case Point:
		return Area{Circle: pairString(geom.Coord) + " 0"}, nil
	case nil:
		return Area{}, fmt.Errorf("no geometry: %w", ErrUnsupportedGeometry)
	default:
		return Area{}, fmt.Errorf("type %q: %w", GeometryKind(g), ErrUnsupportedGeometry)
	}
}

// minRingPoints is the smallest closed linear ring: three positions plus the
// repeated first one.
const minRingPoints = 4

// polygonString renders the exterior ring of a simple polygon.
func polygonString(p Polygon) (string, error) {
	switch len(p.Rings) {
	case 0:
		return "", fmt.Errorf("polygon without rings: %w", ErrUnsupportedGeometry)
	case 1:
	default:
		return "", fmt.Errorf("polygon with %d interior rings: %w", len(p.Rings)-1, ErrUnsupportedGeometry)
	}
	if n := len(p.Rings[0]); n < minRingPoints {
		return "", fmt.Errorf("ring with %d points: %w", n, ErrUnsupportedGeometry)
	}

	pairs := make([]string, len(p.Rings[0]))
	for i, c := range p.Rings[0] {
		pairs[i] = pairString(c)
	}
	return strings.Join(pairs, " "), nil
}

// pairString swaps GeoJSON (lon,lat) into CAP "lat,lon" order.
func pairString(c Coord) string {
	return formatCoordinate(c.Lat) + "," + formatCoordinate(c.Lon)
}

func formatCoordinate(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
