package domain

import "math"

const earthRadiusKm = 6371.009

var kmPerDegLat = 2 * math.Pi * earthRadiusKm / 360.0

// Distance approximates the km between two points with an equirectangular
// projection; good enough at city scale.
func Distance(lat1, lon1, lat2, lon2 float64) float64 {
	kmPerDegLon := kmPerDegLat * math.Cos(lat1*math.Pi/180)
	dLat := kmPerDegLat * (lat1 - lat2)
	dLon := kmPerDegLon * (lon1 - lon2)
	return math.Sqrt(dLat*dLat + dLon*dLon)
}

type Point struct {
	Lat float64 `yaml:"lat" json:"lat"`
	Lon float64 `yaml:"lon" json:"lon"`
}

// Region is a served area: a circle of Radius km around Center.
type Region struct {
	Name   string  `yaml:"name" json:"name"`
	Center Point   `yaml:"center" json:"center"`
	Radius float64 `yaml:"radius" json:"radius"`
}

// ClosestRegion returns the first region, in configuration order, that
// contains the point.
func ClosestRegion(regions []Region, lat, lon float64) (string, bool) {
	for _, r := range regions {
		if Distance(r.Center.Lat, r.Center.Lon, lat, lon) < r.Radius {
			return r.Name, true
		}
	}
	return "", false
}
