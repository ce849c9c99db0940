package domain

import "errors"

var (
	// ErrUnclassified means no severity could be resolved for a record.
	ErrUnclassified = errors.New("severity cannot be resolved")
	// ErrUnsupportedGeometry means a record's geometry has no CAP area form.
	ErrUnsupportedGeometry = errors.New("geometry not supported")
	// ErrMalformedRecord means a feature's attributes could not be decoded.
	ErrMalformedRecord = errors.New("malformed record")
)

// SkipReason returns a short label for a skip error, used as a metric label.
func SkipReason(err error) string {
	switch {
	case errors.Is(err, ErrUnclassified):
		return "unclassified"
	case errors.Is(err, ErrUnsupportedGeometry):
		return "unsupported_geometry"
	case errors.Is(err, ErrMalformedRecord):
		return "malformed_record"
	default:
		return "other"
	}
}
