package domain

import (
	"context"
	"log/slog"
	"strings"
)

const (
	// GeocodeCity and GeocodeState scope street locations for geocoding.
	GeocodeCity  = "Philadelphia"
	GeocodeState = "PA"
)

// Values of Incident.GeoSource. The source stays empty unless a lookup was
// attempted: upstream points, blank locations, unconfigured geocoders and
// lookups with no match all leave it unset.
const (
	GeoSourceForward = "forward"
	GeoSourceFailed  = "failed"
)

// GeocodingResult is the best match a provider returned for a location.
// A zero Lat/Lon means no match.
type GeocodingResult struct {
	Lat              float64
	Lon              float64
	FormattedAddress string
	PlaceName        string
	Confidence       float64 // provider relevance, 0 to 1
}

// Geocoder resolves a street location to coordinates.
type Geocoder interface {
	ForwardGeocode(ctx context.Context, location, city, state string) (GeocodingResult, error)
}

// EnrichWithGeocoding fills a missing point by forward-geocoding the
// incident's street location. Incidents that already have a point or have
// no location text are returned unchanged, as are all incidents when
// geocoder is nil. Failures leave the point empty and set GeoSource to
// "failed".
func EnrichWithGeocoding(ctx context.Context, inc Incident, geocoder Geocoder, logger *slog.Logger) Incident {
	if geocoder == nil || inc.Point != nil {
		return inc
	}

	location := strings.TrimSpace(inc.Location)
	if location == "" {
		return inc
	}

	result, err := geocoder.ForwardGeocode(ctx, location, GeocodeCity, GeocodeState)
	if err != nil {
		logger.Warn("forward geocoding failed",
			"dc_key", inc.DCKey,
			"location", location,
			"error", err,
		)
		inc.GeoSource = GeoSourceFailed
		return inc
	}
	if result.Lat == 0 && result.Lon == 0 {
		return inc
	}

	inc.Point = &Point{Lon: result.Lon, Lat: result.Lat}
	inc.GeoSource = GeoSourceForward
	return inc
}
