package domain

import (
	"math"
	"time"
)

// RawIncident is one upstream row as returned by the CARTO SQL API.
// Nullable columns are pointers; a nil pointer means the column was null.
type RawIncident struct {
	ObjectID int64
	DCKey    string
	Date     string  // "date_" column, ISO timestamp
	Time     *string // "HH:MM:SS", "<Null>" or nil
	Race     *string
	Sex      string
	Age      *string // text as published; coerced during enrichment
	Latino   *int
	Fatal    *int
	Location string // street block description, used for geocoding
	Point    *Point
}

// Point is a WGS-84 longitude/latitude pair.
type Point struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Incident is the enriched representation of a shooting victim record.
// Values are never mutated after enrichment; functions that change a field
// return a modified copy.
type Incident struct {
	DCKey    string
	Race     string
	Sex      string
	Age      float64 // NaN when not recorded
	Latino   *int
	Fatal    *int
	Date     time.Time
	Year     int
	AgeGroup AgeGroup
	Point    *Point

	Location  string
	GeoSource string // one of the GeoSource constants, or empty

	// seq is the upstream row position, used as the final sort tie-breaker.
	seq int
}

// HasAge reports whether the victim's age was recorded.
func (i Incident) HasAge() bool {
	return !math.IsNaN(i.Age)
}

// YearPartition holds the incidents that fall in a single calendar year.
type YearPartition struct {
	Year      int
	Incidents []Incident
}

// DailyCount is the number of incidents on one calendar day.
type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}
