package domain

// Region is the administrative side of the city a zone belongs to.
type Region string

const (
	RegionKarkh   Region = "Karkh"
	RegionRusafa  Region = "Rusafa"
	RegionCenter  Region = "Center"
	RegionSuburbs Region = "Suburbs"
)

// DemandTier is the typical ride demand observed in a zone.
type DemandTier string

const (
	DemandLow      DemandTier = "low"
	DemandMedium   DemandTier = "medium"
	DemandHigh     DemandTier = "high"
	DemandVeryHigh DemandTier = "very_high"
)

// Zone is a named district of Baghdad with fixed reference data.
type Zone struct {
	Name        string     `json:"name" yaml:"name"`
	DisplayName string     `json:"display_name" yaml:"display_name"`
	Region      Region     `json:"region" yaml:"region"`
	Archetype   string     `json:"archetype" yaml:"archetype"`
	Lat         float64    `json:"lat" yaml:"lat"`
	Lon         float64    `json:"lon" yaml:"lon"`
	Demand      DemandTier `json:"typical_demand" yaml:"typical_demand"`
	BasePrice   int64      `json:"base_price" yaml:"base_price"` // IQD
	Icon        string     `json:"icon" yaml:"icon"`
}

// Hotspot is a known congestion point shown on the dispatch map.
type Hotspot struct {
	Name       string   `json:"name" yaml:"name"`
	Lat        float64  `json:"lat" yaml:"lat"`
	Lon        float64  `json:"lon" yaml:"lon"`
	Congestion Severity `json:"congestion_level" yaml:"congestion_level"`
}
