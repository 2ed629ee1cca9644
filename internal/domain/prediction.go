package domain

// RiskLevel is the predicted congestion risk for a zone.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Prediction is a rule-table traffic forecast for one zone.
type Prediction struct {
	Zone       string    `json:"zone"`
	Day        string    `json:"day"`
	Hour       int       `json:"hour"`
	RiskLevel  RiskLevel `json:"risk_level"`
	IsHighRisk bool      `json:"is_high_risk"`
	IsPeakTime bool      `json:"is_peak_time"`
	Warnings   []string  `json:"warnings"`
	Confidence int       `json:"confidence"`
}

// DemandPoint is the forecast demand index for one hour of the day.
type DemandPoint struct {
	Hour   int `json:"hour"`
	Demand int `json:"demand"`
}
