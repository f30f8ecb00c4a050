package scrape

import (
	"strings"

	"github.com/sakthiish12/TodayAtSG/internal/shared/geo"
)

// A venue label borrowed from the nearest landmark is only useful this
// close; further out it would mislabel the neighbourhood.
const venueLabelKm = 2.0

// Geocoder fills in coordinates for records that arrive without them.
// It resolves against a fixed table of Singapore landmarks; there is no
// external geocoding call on the scrape path.
type Geocoder struct{}

func NewGeocoder() *Geocoder {
	return &Geocoder{}
}

// Resolve returns rec with coordinates set, or a GeocodeError when no
// location signal maps inside Singapore.
func (g *Geocoder) Resolve(rec Record) (Record, error) {
	if rec.Latitude != nil && rec.Longitude != nil {
		if geo.InSingapore(*rec.Latitude, *rec.Longitude) {
			if rec.Venue == "" {
				if lm, dist := geo.NearestLandmark(*rec.Latitude, *rec.Longitude); dist <= venueLabelKm {
					rec.Venue = lm.Name
				}
			}
			return rec, nil
		}
		// Parser-supplied coordinates outside the island are noise;
		// fall through and resolve from the location text instead.
		rec.Latitude, rec.Longitude = nil, nil
	}

	for _, text := range []string{rec.Venue, rec.Location, rec.Address} {
		if text == "" {
			continue
		}
		if lm, ok := geo.LookupLandmark(trimIslandSuffix(text)); ok {
			lat, lng := lm.Lat, lm.Lng
			rec.Latitude, rec.Longitude = &lat, &lng
			return rec, nil
		}
	}

	location := rec.Venue
	if location == "" {
		location = rec.Location
	}
	return rec, &GeocodeError{Location: location}
}

// trimIslandSuffix drops the ", Singapore" tail the normalizer appends
// to every location, so the country-level fallback fires only for text
// that names Singapore on its own.
func trimIslandSuffix(text string) string {
	if strings.HasSuffix(strings.ToLower(text), ", singapore") {
		return strings.TrimSpace(text[:len(text)-len(", singapore")])
	}
	return text
}
