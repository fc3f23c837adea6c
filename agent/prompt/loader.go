package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/detector.txt
	detectorRaw string

	//go:embed template/treatment.txt
	treatmentRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Detector  string
	Treatment string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// This is safe to call concurrently; the embed is compile-time, and trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Detector:  strings.TrimSpace(detectorRaw),
		Treatment: strings.TrimSpace(treatmentRaw),
	}
}
