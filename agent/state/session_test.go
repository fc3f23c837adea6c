package state

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestNewSessionDefaults(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewSession("farmer-1", now)

	if s.Stage != StageGatheringContext {
		t.Fatalf("Stage = %s, want %s", s.Stage, StageGatheringContext)
	}
	if s.ImageStatus != ImagePending {
		t.Fatalf("ImageStatus = %s, want %s", s.ImageStatus, ImagePending)
	}
	if s.ConversationID == "" {
		t.Fatal("ConversationID must be set")
	}
	if got := s.MissingChecklist(); len(got) != 3 {
		t.Fatalf("MissingChecklist() = %v, want all three fields", got)
	}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestMissingChecklistOrder(t *testing.T) {
	t.Parallel()

	s := NewSession("farmer-1", time.Now())
	if err := s.SetChecklistField(FieldDiseaseSymptoms, "yellow spots"); err != nil {
		t.Fatalf("SetChecklistField() error = %v", err)
	}

	missing := s.MissingChecklist()
	if len(missing) != 2 {
		t.Fatalf("MissingChecklist() = %v, want 2 fields", missing)
	}
	if missing[0] != FieldPlantName || missing[1] != FieldPesticidesUsed {
		t.Fatalf("unexpected order: %v", missing)
	}
}

func TestSetChecklistFieldUnknown(t *testing.T) {
	t.Parallel()

	s := NewSession("farmer-1", time.Now())
	err := s.SetChecklistField("soil_type", "clay")
	if !errors.Is(err, ErrUnknownField) {
		t.Fatalf("error = %v, want ErrUnknownField", err)
	}
}

func TestChecklistFrozenAfterDiagnosis(t *testing.T) {
	t.Parallel()

	s := NewSession("farmer-1", time.Now())
	if err := s.SetChecklistField(FieldPlantName, "tomato"); err != nil {
		t.Fatalf("SetChecklistField() error = %v", err)
	}

	// overwrite allowed before the freeze
	if err := s.SetChecklistField(FieldPlantName, "chili"); err != nil {
		t.Fatalf("overwrite before freeze error = %v", err)
	}
	if s.Checklist[FieldPlantName] != "chili" {
		t.Fatalf("checklist value = %q, want %q", s.Checklist[FieldPlantName], "chili")
	}

	s.ChecklistFrozen = true
	err := s.SetChecklistField(FieldPlantName, "rice")
	if !errors.Is(err, ErrChecklistFrozen) {
		t.Fatalf("error = %v, want ErrChecklistFrozen", err)
	}
}

func TestAppendTurnBoundsHistory(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := NewSession("farmer-1", now)
	for i := 0; i < HistoryLimit+7; i++ {
		s.AppendTurn("user", fmt.Sprintf("message %d", i), nil, now)
	}

	if len(s.History) != HistoryLimit {
		t.Fatalf("history length = %d, want %d", len(s.History), HistoryLimit)
	}
	// newest entry survives truncation
	last := s.History[len(s.History)-1]
	if last.Content != fmt.Sprintf("message %d", HistoryLimit+6) {
		t.Fatalf("last turn = %q", last.Content)
	}
	// oldest entries were evicted FIFO
	if s.History[0].Content != "message 7" {
		t.Fatalf("first turn = %q, want %q", s.History[0].Content, "message 7")
	}
}

func TestResetPipelineKeepsLastResults(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := NewSession("farmer-1", now)
	s.MarkImageUploaded("gs://bucket/leaf.jpg", now)
	for _, f := range ChecklistFields {
		if err := s.SetChecklistField(f, "x"); err != nil {
			t.Fatalf("SetChecklistField(%s) error = %v", f, err)
		}
	}
	s.Diagnosis = &Diagnosis{DiseaseName: "early blight", Confidence: 0.9}
	s.TreatmentPlan = &TreatmentPlan{Protocol: []string{"spray"}}
	s.ChecklistFrozen = true

	s.ResetPipeline(now)

	if s.ImageStatus != ImagePending {
		t.Fatalf("ImageStatus = %s, want %s", s.ImageStatus, ImagePending)
	}
	if s.Stage != StageGatheringContext {
		t.Fatalf("Stage = %s, want %s", s.Stage, StageGatheringContext)
	}
	if s.ChecklistFrozen {
		t.Fatal("ChecklistFrozen must be cleared")
	}
	if len(s.MissingChecklist()) != 3 {
		t.Fatalf("checklist not cleared: %v", s.Checklist)
	}
	if s.Diagnosis == nil || s.TreatmentPlan == nil {
		t.Fatal("last diagnosis/treatment must survive reset")
	}
}

func TestValidateStageInvariants(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := NewSession("farmer-1", now)
	s.Stage = StageAwaitingConfirm
	if err := s.Validate(); err == nil {
		t.Fatal("Validate() must reject AWAITING_CONFIRM without image/checklist/diagnosis")
	}

	s.MarkImageUploaded("gs://bucket/leaf.jpg", now)
	for _, f := range ChecklistFields {
		if err := s.SetChecklistField(f, "x"); err != nil {
			t.Fatalf("SetChecklistField(%s) error = %v", f, err)
		}
	}
	if err := s.Validate(); err == nil {
		t.Fatal("Validate() must reject AWAITING_CONFIRM without diagnosis")
	}

	s.Diagnosis = &Diagnosis{DiseaseName: "leaf rust", Confidence: 0.8}
	if err := s.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateTreatmentRequiresDiagnosis(t *testing.T) {
	t.Parallel()

	s := NewSession("farmer-1", time.Now())
	s.TreatmentPlan = &TreatmentPlan{Protocol: []string{"spray"}}
	if err := s.Validate(); err == nil {
		t.Fatal("Validate() must reject treatment plan without diagnosis")
	}
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := NewSession("farmer-1", now)
	s.SetChecklistField(FieldPlantName, "tomato")
	s.Diagnosis = &Diagnosis{DiseaseName: "blight", Symptoms: []string{"spots"}}
	s.AppendTurn("user", "hello", []string{"weather"}, now)

	c := s.Clone()
	c.Checklist[FieldPlantName] = "rice"
	c.Diagnosis.Symptoms[0] = "wilt"
	c.History[0].Content = "changed"

	if s.Checklist[FieldPlantName] != "tomato" {
		t.Fatal("clone shares checklist map")
	}
	if s.Diagnosis.Symptoms[0] != "spots" {
		t.Fatal("clone shares diagnosis symptoms")
	}
	if s.History[0].Content != "hello" {
		t.Fatal("clone shares history")
	}
}

func TestInDiagnosisFlow(t *testing.T) {
	t.Parallel()

	now := time.Now()
	s := NewSession("farmer-1", now)
	if s.InDiagnosisFlow() {
		t.Fatal("fresh session must not be in diagnosis flow")
	}

	s.SetChecklistField(FieldPlantName, "tomato")
	if !s.InDiagnosisFlow() {
		t.Fatal("partially filled checklist must count as in-flow")
	}

	s2 := NewSession("farmer-2", now)
	s2.MarkImageUploaded("gs://bucket/leaf.jpg", now)
	if !s2.InDiagnosisFlow() {
		t.Fatal("uploaded image must count as in-flow")
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Load(ctx, "farmer-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Load() error = %v, want ErrSessionNotFound", err)
	}

	now := time.Now()
	s := NewSession("farmer-1", now)
	s.SetChecklistField(FieldPlantName, "onion")
	if err := store.Save(ctx, s); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// post-save mutation must not leak into the store
	s.SetChecklistField(FieldPlantName, "rice")

	loaded, err := store.Load(ctx, "farmer-1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Checklist[FieldPlantName] != "onion" {
		t.Fatalf("stored checklist = %q, want %q", loaded.Checklist[FieldPlantName], "onion")
	}

	if err := store.Delete(ctx, "farmer-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("Len() = %d after delete", store.Len())
	}
}
