// Package domain turns hazard observation records into CAP 1.2 alerts wrapped
// in an Atom feed.
//
// # Record Kinds
//
// Two kinds of record flow through the package:
//
//	Flood areas: status snapshots of an administrative area (parent_name,
//	area_name) with a REM state 1-4 and a Polygon or MultiPolygon boundary.
//	Disaster reports: individual citizen reports with a disaster_type, a
//	free-form report_data object, and usually a Point location.
//
// # Severity Classification
//
// Flood areas map their state directly:
//
//	1 unknown | 2 minor | 3 moderate | 4 severe | anything else is rejected
//
// Reports are classified by disaster type from fields in report_data:
//
//	flood:      flood_depth cm      <=70 minor | <=150 moderate | >150 severe
//	earthquake: report_type=road,   accessabilityFailure 0 extreme | 1 severe | 2-3 moderate | 4 minor
//	            report_type=structure, structureFailure <1 minor | <2 moderate | >=2 severe
//	haze:       airQuality          0-1 moderate | 2 severe | 3-4 extreme
//	wind:       impact              0 minor | 1 moderate | 2 severe
//
// Out-of-range codes, unknown sub-types and unlisted disaster types resolve to
// CAP "Unknown" rather than rejecting the report.
//
// # Geometry
//
// CAP polygons are whitespace-delimited "lat,lon" pairs, the reverse of the
// GeoJSON (lon,lat) axis order. Only simple polygons are representable, so a
// polygon with interior rings rejects the whole record. Points become a
// zero-radius CAP circle.
//
// # Partial Failure
//
// Building a feed never fails because of a single record. Records that cannot
// be classified or whose geometry cannot be expressed are reported as [Skip]
// values next to the [Feed]; the remaining entries keep their input order.
package domain
