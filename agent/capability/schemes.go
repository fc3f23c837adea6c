package capability

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/prajwalh/krishi-mitra/agent/contract"
)

// Scheme is one government support program in the embedded catalog.
type Scheme struct {
	Name             string
	Description      string
	Eligibility      []string
	Benefits         []string
	ApplicationSteps []string
	Documents        []string
	ContactInfo      string
	ApplicationLink  string
}

// SchemeCatalog answers scheme queries by keyword relevance over an
// embedded catalog. No network dependency: scheme data changes rarely and
// a stale answer beats no answer in the field.
type SchemeCatalog struct {
	schemes []Scheme
}

func NewSchemeCatalog() *SchemeCatalog {
	return &SchemeCatalog{schemes: defaultSchemes()}
}

func (c *SchemeCatalog) Search(ctx context.Context, req contractx.SchemeRequest) (contractx.SchemeResult, error) {
	if err := ctx.Err(); err != nil {
		return contractx.SchemeResult{Status: contractx.StatusError},
			fmt.Errorf("%w: %v", contractx.ErrCapability, err)
	}

	keywords := strings.Fields(strings.ToLower(req.Query))
	if len(keywords) == 0 {
		return contractx.SchemeResult{Status: contractx.StatusError},
			fmt.Errorf("%w: scheme query is empty", contractx.ErrCapability)
	}

	var best *Scheme
	bestScore := 0
	for i := range c.schemes {
		s := &c.schemes[i]
		text := strings.ToLower(s.Name + " " + s.Description)
		score := 0
		for _, kw := range keywords {
			if strings.Contains(text, kw) {
				score++
			}
		}
		if score > bestScore {
			best = s
			bestScore = score
		}
	}
	if best == nil {
		// Generic scheme questions still deserve the flagship program.
		best = &c.schemes[0]
	}

	return contractx.SchemeResult{
		Status:           contractx.StatusSuccess,
		SchemeName:       best.Name,
		Description:      best.Description,
		Eligibility:      best.Eligibility,
		Benefits:         best.Benefits,
		ApplicationSteps: best.ApplicationSteps,
		Documents:        best.Documents,
		ContactInfo:      best.ContactInfo,
		ApplicationLink:  best.ApplicationLink,
	}, nil
}

func defaultSchemes() []Scheme {
	return []Scheme{
		{
			Name:        "PM-KISAN",
			Description: "Pradhan Mantri Kisan Samman Nidhi: direct income support of Rs 6000 per year for landholding farmer families.",
			Eligibility: []string{
				"Landholding up to 2 hectares",
				"Aadhaar card required",
			},
			Benefits: []string{
				"Rs 6000 per year in three installments",
			},
			ApplicationSteps: []string{
				"Apply online at pmkisan.gov.in",
				"Or apply at the nearest CSC center",
			},
			Documents: []string{
				"Aadhaar card",
				"Land records",
				"Bank passbook",
			},
			ContactInfo:     "Toll free: 155261 / 1800115526",
			ApplicationLink: "https://pmkisan.gov.in",
		},
		{
			Name:        "Drip Irrigation Subsidy",
			Description: "Micro irrigation scheme: subsidy up to 90% on drip and sprinkler irrigation systems.",
			Eligibility: []string{
				"Farmers of any landholding size",
				"Land records required",
			},
			Benefits: []string{
				"SC/ST farmers: 90% subsidy",
				"Small and marginal farmers: 80% subsidy",
				"Other farmers: 70% subsidy",
			},
			ApplicationSteps: []string{
				"Apply at the agriculture department office",
				"Technical assessment of the plot",
			},
			Documents: []string{
				"Land records",
				"Aadhaar card",
				"Bank passbook",
				"Photograph",
			},
			ContactInfo: "District agriculture officer",
		},
	}
}
