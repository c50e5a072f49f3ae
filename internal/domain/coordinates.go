package domain

import (
	"fmt"
	"math"
)

const earthRadiusKM = 6371.0

// Immutable geographic coordinates (longitude, latitude).
type Coordinates struct {
	Lon float64
	Lat float64
}

// Return coordinates as [lon, lat] for external API compatibility.
func (c Coordinates) CoordsToList() []float64 { return []float64{c.Lon, c.Lat} }

func (c Coordinates) Validate() error {
	if math.IsNaN(c.Lat) || c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Lat)
	}
	if math.IsNaN(c.Lon) || c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Lon)
	}
	return nil
}

// HaversineKM returns the great-circle distance between c and o in kilometers.
func (c Coordinates) HaversineKM(o Coordinates) float64 {
	rad := math.Pi / 180
	dLat := (o.Lat - c.Lat) * rad
	dLon := (o.Lon - c.Lon) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(c.Lat*rad)*math.Cos(o.Lat*rad)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}
