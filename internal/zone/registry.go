// Package zone holds the static Baghdad zone reference table.
package zone

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"bits/internal/domain"
	"bits/internal/geo"
)

// Fallback values used when a zone name is not in the registry.
// Default routes depend on these exact values.
const (
	CenterLat        = 33.3128
	CenterLon        = 44.3615
	DefaultBasePrice = 3000

	// Unknown is returned by Nearest when the registry is empty.
	Unknown = "unknown"
)

//go:embed zones.yaml
var defaultTable []byte

type table struct {
	Zones    []domain.Zone    `yaml:"zones"`
	Hotspots []domain.Hotspot `yaml:"hotspots"`
}

// Registry is an immutable, ordered zone table. It is safe for concurrent use.
type Registry struct {
	zones    []domain.Zone
	index    map[string]int
	hotspots []domain.Hotspot
}

// NearestResult is the outcome of a reverse geocoding lookup.
type NearestResult struct {
	Zone       string  `json:"zone"`
	Region     string  `json:"region"`
	DistanceKm float64 `json:"distance_km"`
}

// New builds a registry from zones in the given order.
func New(zones []domain.Zone, hotspots []domain.Hotspot) (*Registry, error) {
	r := &Registry{
		zones:    make([]domain.Zone, 0, len(zones)),
		index:    make(map[string]int, len(zones)),
		hotspots: append([]domain.Hotspot(nil), hotspots...),
	}

	for _, z := range zones {
		if z.Name == "" {
			return nil, fmt.Errorf("%w: zone with empty name", ErrInvalidTable)
		}
		if _, dup := r.index[z.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate zone %q", ErrInvalidTable, z.Name)
		}
		if z.BasePrice <= 0 {
			return nil, fmt.Errorf("%w: zone %q has non-positive base price", ErrInvalidTable, z.Name)
		}
		if !geo.ValidCoordinates(z.Lat, z.Lon) {
			return nil, fmt.Errorf("%w: zone %q has invalid coordinates", ErrInvalidTable, z.Name)
		}
		r.index[z.Name] = len(r.zones)
		r.zones = append(r.zones, z)
	}

	return r, nil
}

// Parse builds a registry from a YAML zone table.
func Parse(data []byte) (*Registry, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "zone: parse table")
	}
	return New(t.Zones, t.Hotspots)
}

// Load reads the zone table at path, or the built-in Baghdad table when
// path is empty.
func Load(path string) (*Registry, error) {
	if path == "" {
		return Parse(defaultTable)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "zone: read %s", path)
	}
	return Parse(data)
}

// Default returns the built-in Baghdad registry.
func Default() *Registry {
	r, err := Parse(defaultTable)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the zone with the given name.
func (r *Registry) Lookup(name string) (domain.Zone, bool) {
	i, ok := r.index[name]
	if !ok {
		return domain.Zone{}, false
	}
	return r.zones[i], true
}

// Resolve returns the named zone, or a zone at the city center with the
// default base price when the name is unknown.
func (r *Registry) Resolve(name string) domain.Zone {
	if z, ok := r.Lookup(name); ok {
		return z
	}
	return domain.Zone{
		Name:      name,
		Lat:       CenterLat,
		Lon:       CenterLon,
		BasePrice: DefaultBasePrice,
	}
}

// All returns every zone in table order.
func (r *Registry) All() []domain.Zone {
	return append([]domain.Zone(nil), r.zones...)
}

// InRegion returns the names of the zones in region, in table order.
func (r *Registry) InRegion(region domain.Region) []string {
	names := []string{}
	for _, z := range r.zones {
		if z.Region == region {
			names = append(names, z.Name)
		}
	}
	return names
}

// Hotspots returns the known congestion points.
func (r *Registry) Hotspots() []domain.Hotspot {
	return append([]domain.Hotspot(nil), r.hotspots...)
}

// Len returns the number of zones.
func (r *Registry) Len() int {
	return len(r.zones)
}

// Nearest returns the zone closest to (lat, lon). Ties go to the zone
// listed first.
func (r *Registry) Nearest(lat, lon float64) (NearestResult, error) {
	if !geo.ValidCoordinates(lat, lon) {
		return NearestResult{}, ErrInvalidCoordinates
	}

	result := NearestResult{Zone: Unknown, Region: Unknown, DistanceKm: math.Inf(1)}
	for _, z := range r.zones {
		d := geo.DistanceKm(lat, lon, z.Lat, z.Lon)
		if d < result.DistanceKm {
			result = NearestResult{Zone: z.Name, Region: string(z.Region), DistanceKm: d}
		}
	}
	if result.Zone == Unknown {
		result.DistanceKm = 0
	}

	return result, nil
}
