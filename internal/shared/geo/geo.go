package geo

import (
	"math"
	"strings"
)

// Singapore bounding box used to validate event coordinates.
const (
	MinLat = 1.2
	MaxLat = 1.5
	MinLng = 103.6
	MaxLng = 104.0
)

const earthRadiusKm = 6371

// Landmark is a known Singapore location used for name-based geocoding.
type Landmark struct {
	Name string
	Lat  float64
	Lng  float64
}

var landmarks = []Landmark{
	{"Marina Bay", 1.2806, 103.8598},
	{"Orchard Road", 1.3048, 103.8318},
	{"Clarke Quay", 1.2884, 103.8470},
	{"Sentosa", 1.2494, 103.8303},
	{"Chinatown", 1.2820, 103.8439},
	{"Little India", 1.3067, 103.8524},
	{"Bugis", 1.2966, 103.8520},
	{"Raffles Place", 1.2834, 103.8519},
	{"City Hall", 1.2930, 103.8520},
	{"HarbourFront", 1.2653, 103.8220},
	{"Jurong East", 1.3329, 103.7436},
	{"Tampines", 1.3496, 103.9568},
	{"Woodlands", 1.4382, 103.7890},
	{"Changi", 1.3644, 103.9915},
	{"Suntec City", 1.2931, 103.8572},
	{"Esplanade", 1.2899, 103.8554},
	{"Gardens by the Bay", 1.2816, 103.8636},
}

// islandCenter is the country-level fallback. It only applies when no
// district or venue landmark matches, never on name length.
var islandCenter = Landmark{"Singapore", 1.3521, 103.8198}

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dlat := (lat2 - lat1) * math.Pi / 180
	dlng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// InSingapore reports whether the coordinates fall inside the Singapore box.
func InSingapore(lat, lng float64) bool {
	return lat >= MinLat && lat <= MaxLat && lng >= MinLng && lng <= MaxLng
}

// BoundingBox returns (minLat, maxLat, minLng, maxLng) around a center
// point. Used to prefilter nearby-event queries before exact distances.
func BoundingBox(lat, lng, radiusKm float64) (float64, float64, float64, float64) {
	latDelta := radiusKm / 111.0
	lngDelta := radiusKm / (111.0 * math.Cos(lat*math.Pi/180))
	return lat - latDelta, lat + latDelta, lng - lngDelta, lng + lngDelta
}

// LookupLandmark matches free-form location text against the landmark
// table. The longest matching landmark name wins so "Gardens by the
// Bay" beats "Marina Bay" in "concert at gardens by the bay, marina
// bay". The island-wide fallback is tried only when no district or
// venue landmark matches at all.
func LookupLandmark(text string) (Landmark, bool) {
	lower := strings.ToLower(text)
	var best Landmark
	found := false
	for _, lm := range landmarks {
		name := strings.ToLower(lm.Name)
		if strings.Contains(lower, name) {
			if !found || len(name) > len(best.Name) {
				best = lm
				found = true
			}
		}
	}
	if found {
		return best, true
	}
	if strings.Contains(lower, "singapore") {
		return islandCenter, true
	}
	return Landmark{}, false
}

// NearestLandmark returns the closest known landmark, for enriching
// location labels on events that only carry coordinates.
func NearestLandmark(lat, lng float64) (Landmark, float64) {
	best := landmarks[0]
	bestDist := HaversineKm(lat, lng, best.Lat, best.Lng)
	for _, lm := range landmarks[1:] {
		if d := HaversineKm(lat, lng, lm.Lat, lm.Lng); d < bestDist {
			best, bestDist = lm, d
		}
	}
	return best, bestDist
}
