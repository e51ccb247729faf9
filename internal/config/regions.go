package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"strappon/internal/domain"
)

// Catalog lists the served regions and the points of interest shown to
// riders.
type Catalog struct {
	Regions []domain.Region `yaml:"regions"`
	POIs    []domain.POI    `yaml:"pois"`
}

// DefaultCatalog is used when no regions file is configured.
func DefaultCatalog() Catalog {
	return Catalog{
		Regions: []domain.Region{
			{Name: "milan", Center: domain.Point{Lat: 45.4642, Lon: 9.1900}, Radius: 30},
			{Name: "turin", Center: domain.Point{Lat: 45.0703, Lon: 7.6869}, Radius: 25},
		},
	}
}

// LoadCatalog reads a YAML catalog from path; an empty path yields the
// defaults.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(raw)
}

func ParseCatalog(raw []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	for i, r := range c.Regions {
		if r.Name == "" || r.Radius <= 0 {
			return Catalog{}, fmt.Errorf("region #%d: name and positive radius required", i)
		}
	}
	return c, nil
}
