package domain

import "time"

// RouteType distinguishes the two priced route options.
type RouteType string

const (
	RouteFastest  RouteType = "fastest"
	RouteEconomic RouteType = "economic"
)

// Quote is one priced route option.
type Quote struct {
	Price       int64   `json:"price"`
	TimeMinutes int     `json:"time_minutes"`
	DistanceKm  float64 `json:"distance_km"`
	Multiplier  float64 `json:"multiplier"`
}

// RouteQuote holds both route options for an origin/destination pair.
type RouteQuote struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Fastest     Quote   `json:"fastest"`
	Economic    Quote   `json:"economic"`
	DistanceKm  float64 `json:"distance_km"`
	BaseBlend   float64 `json:"base_price"`
}

// PricingRecord is a write-only audit row for a computed quote.
type PricingRecord struct {
	ID          int64
	Origin      string
	Destination string
	BasePrice   float64
	FinalPrice  float64
	RouteType   RouteType
	DistanceKm  float64
	Multiplier  float64
	Weather     Weather
	TimePeriod  TimePeriod
	CreatedAt   time.Time
}
