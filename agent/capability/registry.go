package capability

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/prajwalh/krishi-mitra/agent/contract"
	promptx "github.com/prajwalh/krishi-mitra/agent/prompt"
	geminix "github.com/prajwalh/krishi-mitra/pkg/gemini"
)

type RegistryConfig struct {
	LLM geminix.Config

	// Optional per-capability model overrides.
	DetectorModel  string `envconfig:"DETECTOR_MODEL" split_words:"true"`
	TreatmentModel string `envconfig:"TREATMENT_MODEL" split_words:"true"`

	Agmarknet AgmarknetConfig
	Weather   WeatherConfig
}

func (c RegistryConfig) Validate() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		return fmt.Errorf("%w: gemini api key is required", contractx.ErrValidation)
	}
	return nil
}

func (c RegistryConfig) llmFor(modelOverride string) geminix.Config {
	cfg := c.LLM
	if v := strings.TrimSpace(modelOverride); v != "" {
		cfg.Model = v
	}
	return cfg
}

type registryImpl struct {
	detector *Detector
	planner  *Planner
	market   *MarketClient
	schemes  *SchemeCatalog
	weather  *WeatherClient
}

func (r *registryImpl) DiseaseDetector() contractx.DiseaseDetector   { return r.detector }
func (r *registryImpl) TreatmentPlanner() contractx.TreatmentPlanner { return r.planner }
func (r *registryImpl) MarketAnalyzer() contractx.MarketAnalyzer     { return r.market }
func (r *registryImpl) SchemeFinder() contractx.SchemeFinder         { return r.schemes }
func (r *registryImpl) WeatherReporter() contractx.WeatherReporter   { return r.weather }

func NewRegistry(ctx context.Context, cfg RegistryConfig) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	prompts := promptx.LoadPromptSet()

	detectorModelCfg := cfg.llmFor(cfg.DetectorModel)
	detectorModel, err := detectorModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create detector model: %v", contractx.ErrModelInvoke, err)
	}
	treatmentModelCfg := cfg.llmFor(cfg.TreatmentModel)
	treatmentModel, err := treatmentModelCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create treatment model: %v", contractx.ErrModelInvoke, err)
	}

	detector, err := NewDetector(ctx, detectorModel, prompts.Detector)
	if err != nil {
		return nil, err
	}
	planner, err := NewPlanner(ctx, treatmentModel, prompts.Treatment)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		detector: detector,
		planner:  planner,
		market:   NewMarketClient(cfg.Agmarknet),
		schemes:  NewSchemeCatalog(),
		weather:  NewWeatherClient(cfg.Weather),
	}, nil
}
