package capability

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	contractx "github.com/prajwalh/krishi-mitra/agent/contract"
)

type detectorLLMOutput struct {
	DiseaseName string   `json:"disease_name"`
	Confidence  float64  `json:"confidence"`
	Severity    string   `json:"severity,omitempty"`
	Symptoms    []string `json:"symptoms,omitempty"`
}

// Detector diagnoses plant diseases from an image reference plus the
// gathered checklist, via a structured-output model graph.
type Detector struct {
	runner compose.Runnable[map[string]any, detectorLLMOutput]
}

func NewDetector(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*Detector, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: detector prompt", contractx.ErrPromptMissing)
	}
	runner, err := compileStructuredGraph[detectorLLMOutput](ctx, chatModel, systemPrompt, "capability.detector_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile detector graph: %v", contractx.ErrModelInvoke, err)
	}
	return &Detector{runner: runner}, nil
}

func (d *Detector) Detect(ctx context.Context, req contractx.DetectionRequest) (contractx.DetectionResult, error) {
	if strings.TrimSpace(req.ImageRef) == "" {
		return contractx.DetectionResult{Status: contractx.StatusError},
			fmt.Errorf("%w: image reference is required", contractx.ErrCapability)
	}

	payload := map[string]any{
		"image_ref":  req.ImageRef,
		"plant_info": req.PlantInfo,
		"profile":    req.Profile,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return contractx.DetectionResult{Status: contractx.StatusError},
			fmt.Errorf("%w: marshal detection payload: %v", contractx.ErrCapability, err)
	}

	out, err := d.runner.Invoke(ctx, map[string]any{"input": string(input)})
	if err != nil {
		return contractx.DetectionResult{Status: contractx.StatusError},
			fmt.Errorf("%w: detector invoke: %v", contractx.ErrCapability, err)
	}
	if strings.TrimSpace(out.DiseaseName) == "" {
		return contractx.DetectionResult{Status: contractx.StatusError},
			fmt.Errorf("%w: detector returned no disease name", contractx.ErrSchemaViolation)
	}

	result := contractx.DetectionResult{
		Status:     contractx.StatusSuccess,
		Confidence: out.Confidence,
	}
	result.Diagnosis.DiseaseName = strings.TrimSpace(out.DiseaseName)
	result.Diagnosis.Confidence = out.Confidence
	result.Diagnosis.Severity = strings.TrimSpace(out.Severity)
	result.Diagnosis.Symptoms = out.Symptoms
	return result, nil
}
