package domain

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)

func testSettings(t *testing.T) Settings {
	t.Helper()
	s, err := NewSettings("Asia/Jakarta", 6*time.Hour, DefaultTemplates())
	require.NoError(t, err)
	return s
}

func testAssembler(t *testing.T, opts ...Option) *Assembler {
	t.Helper()
	opts = append([]Option{WithClock(clockwork.NewFakeClockAt(fixedNow))}, opts...)
	return NewAssembler(testSettings(t), opts...)
}

func square(lon, lat float64) []Coord {
	return []Coord{
		{Lon: lon, Lat: lat},
		{Lon: lon + 1, Lat: lat},
		{Lon: lon + 1, Lat: lat + 1},
		{Lon: lon, Lat: lat},
	}
}

func areaRecord(parent, area string, state int, g Geometry) FeatureRecord {
	return FeatureRecord{
		Geometry: g,
		Properties: Properties{
			ParentName:  parent,
			AreaName:    area,
			State:       state,
			LastUpdated: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func reportRecord(pkey, disasterType string, data ReportData) FeatureRecord {
	return FeatureRecord{
		Geometry: Point{Coord{Lon: 106.8, Lat: -6.2}},
		Properties: Properties{
			PKey:         pkey,
			Source:       "grasp",
			CreatedAt:    time.Date(2023, time.March, 4, 5, 6, 7, 0, time.UTC),
			DisasterType: disasterType,
			ReportData:   data,
			Tags:         Tags{InstanceRegionCode: "ID-JK"},
			Text:         "banjir di jalan",
		},
	}
}
