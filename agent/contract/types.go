package contract

import (
	statex "github.com/prajwalh/krishi-mitra/agent/state"
)

// Status is the uniform outcome tag every capability result carries.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Capability names as recorded in a turn's tools_used.
const (
	CapabilityDiseaseDetection = "disease_detection"
	CapabilityTreatmentPlan    = "treatment_plan"
	CapabilityMarketPrices     = "market_prices"
	CapabilitySchemeSearch     = "scheme_search"
	CapabilityWeather          = "weather"
)

// DetectionRequest carries only the session fields the detector needs,
// never the full session.
type DetectionRequest struct {
	ImageRef  string               `json:"image_ref"`
	PlantInfo map[string]string    `json:"plant_info"`
	Profile   statex.FarmerProfile `json:"profile"`
}

type DetectionResult struct {
	Status     Status           `json:"status"`
	Confidence float64          `json:"confidence,omitempty"`
	Diagnosis  statex.Diagnosis `json:"diagnosis"`
}

type TreatmentRequest struct {
	Diagnosis statex.Diagnosis     `json:"diagnosis"`
	Profile   statex.FarmerProfile `json:"profile"`
}

type TreatmentResult struct {
	Status     Status               `json:"status"`
	Confidence float64              `json:"confidence,omitempty"`
	Plan       statex.TreatmentPlan `json:"plan"`
}

type MarketRequest struct {
	Commodity string `json:"commodity"`
	Location  string `json:"location"`
}

type MarketResult struct {
	Status         Status  `json:"status"`
	Commodity      string  `json:"commodity"`
	Market         string  `json:"market"`
	ModalPrice     int     `json:"modal_price"`
	Unit           string  `json:"unit"`
	TrendPct       float64 `json:"trend_pct"`
	LastWeekPrice  int     `json:"last_week_price"`
	Recommendation string  `json:"recommendation,omitempty"`
}

type SchemeRequest struct {
	Query          string `json:"query"`
	FarmerCategory string `json:"farmer_category"`
}

type SchemeResult struct {
	Status           Status   `json:"status"`
	SchemeName       string   `json:"scheme_name"`
	Description      string   `json:"description"`
	Eligibility      []string `json:"eligibility,omitempty"`
	Benefits         []string `json:"benefits,omitempty"`
	ApplicationSteps []string `json:"application_steps,omitempty"`
	Documents        []string `json:"documents,omitempty"`
	ContactInfo      string   `json:"contact_info,omitempty"`
	ApplicationLink  string   `json:"application_link,omitempty"`
}

type DailyForecast struct {
	Date    string `json:"date"`
	Summary string `json:"summary"`
}

type WeatherRequest struct {
	City string `json:"city"`
}

type WeatherResult struct {
	Status   Status          `json:"status"`
	Report   string          `json:"report"`
	Forecast []DailyForecast `json:"forecast,omitempty"`
}
