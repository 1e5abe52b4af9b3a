package carto

import (
	"fmt"
	"math"
	"strconv"

	"github.com/couchcryptid/shootings-etl/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// mapFeatureToRawIncident converts one GeoJSON feature of the shootings
// table into a RawIncident. Only Point geometries are accepted.
func mapFeatureToRawIncident(f *geojson.Feature) (domain.RawIncident, error) {
	props := f.Properties

	date, ok := props["date_"].(string)
	if !ok {
		return domain.RawIncident{}, fmt.Errorf("date_ is %T, want string", props["date_"])
	}

	raw := domain.RawIncident{
		ObjectID: int64(numberOrZero(props["objectid"])),
		DCKey:    textOrEmpty(props["dc_key"]),
		Date:     date,
		Time:     nullableText(props["time"]),
		Race:     nullableText(props["race"]),
		Sex:      textOrEmpty(props["sex"]),
		Age:      nullableText(props["age"]),
		Latino:   nullableFlag(props["latino"]),
		Fatal:    nullableFlag(props["fatal"]),
		Location: textOrEmpty(props["location"]),
	}

	switch g := f.Geometry.(type) {
	case nil:
	case orb.Point:
		raw.Point = &domain.Point{Lon: g.Lon(), Lat: g.Lat()}
	default:
		return domain.RawIncident{}, fmt.Errorf("dc_key %s: unexpected geometry %s", raw.DCKey, g.GeoJSONType())
	}

	return raw, nil
}

// nullableText renders a scalar property as text. JSON null yields nil.
func nullableText(v any) *string {
	if v == nil {
		return nil
	}
	s := textOrEmpty(v)
	return &s
}

func textOrEmpty(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// nullableFlag reads a 0/1 indicator published as a number, boolean or text.
func nullableFlag(v any) *int {
	var n int
	switch t := v.(type) {
	case float64:
		n = int(t)
	case bool:
		if t {
			n = 1
		}
	case string:
		parsed, err := strconv.Atoi(t)
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	return &n
}

func numberOrZero(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil || math.IsNaN(f) {
			return 0
		}
		return f
	default:
		return 0
	}
}
