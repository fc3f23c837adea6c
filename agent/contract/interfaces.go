package contract

import "context"

// Each capability is an opaque, possibly non-deterministic external function.
// Adapters must not read or write session state; the router alone persists
// results into session slots.

type DiseaseDetector interface {
	Detect(ctx context.Context, req DetectionRequest) (DetectionResult, error)
}

type TreatmentPlanner interface {
	Plan(ctx context.Context, req TreatmentRequest) (TreatmentResult, error)
}

type MarketAnalyzer interface {
	Prices(ctx context.Context, req MarketRequest) (MarketResult, error)
}

type SchemeFinder interface {
	Search(ctx context.Context, req SchemeRequest) (SchemeResult, error)
}

type WeatherReporter interface {
	Forecast(ctx context.Context, req WeatherRequest) (WeatherResult, error)
}

type Registry interface {
	DiseaseDetector() DiseaseDetector
	TreatmentPlanner() TreatmentPlanner
	MarketAnalyzer() MarketAnalyzer
	SchemeFinder() SchemeFinder
	WeatherReporter() WeatherReporter
}

type Transcriber interface {
	SpeechToText(ctx context.Context, audio []byte, language string) (string, error)
}

type Synthesizer interface {
	TextToSpeech(ctx context.Context, text string, language string) ([]byte, error)
}
