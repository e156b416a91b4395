package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinates is an immutable geographic point.
type Coordinates struct {
	Lat float64
	Lon float64
}

// ParseLatLong parses a "lat,long" location string.
func ParseLatLong(location string) (Coordinates, error) {
	parts := strings.Split(location, ",")
	if len(parts) != 2 {
		return Coordinates{}, fmt.Errorf("parse location %q: want \"lat,long\"", location)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parse location %q: latitude: %w", location, err)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("parse location %q: longitude: %w", location, err)
	}

	return Coordinates{Lat: lat, Lon: lon}, nil
}

// Locatable reports whether a location string looks resolvable at all.
// Upstream systems mark unknown addresses with a literal "none".
func Locatable(location string) bool {
	s := strings.ToLower(location)
	return s != "" && !strings.Contains(s, "none")
}

// HaversineKm returns the great-circle distance between two points in km.
func HaversineKm(a, b Coordinates) float64 {
	const earthRadiusKm = 6371.0

	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
