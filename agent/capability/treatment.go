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

type treatmentLLMOutput struct {
	ImmediateActions []string `json:"immediate_actions,omitempty"`
	Protocol         []string `json:"protocol"`
	Prevention       []string `json:"prevention,omitempty"`
}

// Planner turns a confirmed diagnosis into an actionable treatment plan.
type Planner struct {
	runner compose.Runnable[map[string]any, treatmentLLMOutput]
}

func NewPlanner(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*Planner, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return nil, fmt.Errorf("%w: treatment prompt", contractx.ErrPromptMissing)
	}
	runner, err := compileStructuredGraph[treatmentLLMOutput](ctx, chatModel, systemPrompt, "capability.treatment_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile treatment graph: %v", contractx.ErrModelInvoke, err)
	}
	return &Planner{runner: runner}, nil
}

func (p *Planner) Plan(ctx context.Context, req contractx.TreatmentRequest) (contractx.TreatmentResult, error) {
	if strings.TrimSpace(req.Diagnosis.DiseaseName) == "" {
		return contractx.TreatmentResult{Status: contractx.StatusError},
			fmt.Errorf("%w: diagnosis is required", contractx.ErrCapability)
	}

	payload := map[string]any{
		"diagnosis": req.Diagnosis,
		"profile":   req.Profile,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return contractx.TreatmentResult{Status: contractx.StatusError},
			fmt.Errorf("%w: marshal treatment payload: %v", contractx.ErrCapability, err)
	}

	out, err := p.runner.Invoke(ctx, map[string]any{"input": string(input)})
	if err != nil {
		return contractx.TreatmentResult{Status: contractx.StatusError},
			fmt.Errorf("%w: treatment invoke: %v", contractx.ErrCapability, err)
	}
	if len(out.Protocol) == 0 && len(out.ImmediateActions) == 0 {
		return contractx.TreatmentResult{Status: contractx.StatusError},
			fmt.Errorf("%w: treatment plan is empty", contractx.ErrSchemaViolation)
	}

	result := contractx.TreatmentResult{Status: contractx.StatusSuccess}
	result.Plan.ImmediateActions = out.ImmediateActions
	result.Plan.Protocol = out.Protocol
	result.Plan.Prevention = out.Prevention
	return result, nil
}
