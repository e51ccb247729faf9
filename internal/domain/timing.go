package domain

import (
	"math"
	"time"
)

const dateLayout = "2006-01-02T15:04:05Z"

// SerializeDate renders t in UTC, or "" for nil.
func SerializeDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateLayout)
}

// ResponseTime is how many minutes, rounded up, the driver asks the
// passenger to wait. No offer means 0.
func ResponseTime(created time.Time, offeredPickup *time.Time) int {
	if offeredPickup == nil {
		return 0
	}
	minutes := int(math.Ceil(offeredPickup.Sub(created).Minutes()))
	return max(0, minutes)
}

// POI is a point of interest shown to riders during a time window.
type POI struct {
	Name      string    `yaml:"name" json:"name"`
	Info      string    `yaml:"info" json:"info"`
	Latitude  float64   `yaml:"latitude" json:"latitude"`
	Longitude float64   `yaml:"longitude" json:"longitude"`
	Starts    time.Time `yaml:"starts" json:"starts"`
	Ends      time.Time `yaml:"ends" json:"ends"`
}

// ActivePOIs keeps the POIs whose start day has come and whose end has not
// passed yet.
func ActivePOIs(pois []POI, now time.Time) []POI {
	today := Today(now)
	out := make([]POI, 0, len(pois))
	for _, p := range pois {
		if !today.Before(Today(p.Starts)) && !now.After(p.Ends) {
			out = append(out, p)
		}
	}
	return out
}
