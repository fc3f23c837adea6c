package state

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Session is the persistent source-of-truth for one user's conversation.
// - Direct answers: Stage stays StageDirectAnswer / StageGatheringContext
// - Diagnosis pipeline: ImageStatus + Checklist + Stage drive the workflow
type Session struct {
	// Identity
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id"`

	Profile FarmerProfile `json:"profile"`

	// Diagnosis pipeline
	Stage           Stage             `json:"stage"`
	ImageStatus     ImageStatus       `json:"image_status"`
	ImageRef        string            `json:"image_ref,omitempty"`
	Checklist       map[string]string `json:"checklist,omitempty"`
	ChecklistFrozen bool              `json:"checklist_frozen,omitempty"`

	// Last structured results; survive pipeline reset so a follow-up can
	// still refer to them.
	Diagnosis     *Diagnosis     `json:"diagnosis,omitempty"`
	TreatmentPlan *TreatmentPlan `json:"treatment_plan,omitempty"`

	History []Turn `json:"history,omitempty"`

	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

type FarmerProfile struct {
	Name              string `json:"name,omitempty"`
	Location          string `json:"location,omitempty"`
	PreferredLanguage string `json:"preferred_language,omitempty"`
	LandSize          string `json:"land_size,omitempty"`
	FarmingType       string `json:"farming_type,omitempty"`
}

type Diagnosis struct {
	DiseaseName string   `json:"disease_name"`
	Confidence  float64  `json:"confidence"`
	Severity    string   `json:"severity,omitempty"`
	Symptoms    []string `json:"symptoms,omitempty"`
}

type TreatmentPlan struct {
	ImmediateActions []string `json:"immediate_actions,omitempty"`
	Protocol         []string `json:"protocol,omitempty"`
	Prevention       []string `json:"prevention,omitempty"`
}

type Turn struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	ToolsUsed []string  `json:"tools_used,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ImageStatus string

const (
	ImagePending  ImageStatus = "PENDING"
	ImageUploaded ImageStatus = "UPLOADED"
)

type Stage string

const (
	StageGatheringContext    Stage = "GATHERING_CONTEXT"
	StageAwaitingImage       Stage = "AWAITING_IMAGE"
	StageCollectingChecklist Stage = "COLLECTING_CHECKLIST"
	StageDiagnosing          Stage = "DIAGNOSING"
	StageAwaitingConfirm     Stage = "AWAITING_CONFIRM"
	StageTreating            Stage = "TREATING"
	StageDelivered           Stage = "DELIVERED"
	StageDirectAnswer        Stage = "DIRECT_ANSWER"
)

// Checklist fields required before a diagnosis may be requested, in the
// deterministic order missing-field questions are asked.
const (
	FieldPlantName       = "plant_name"
	FieldDiseaseSymptoms = "disease_symptoms"
	FieldPesticidesUsed  = "pesticides_used"
)

var ChecklistFields = []string{FieldPlantName, FieldDiseaseSymptoms, FieldPesticidesUsed}

// HistoryLimit bounds a session's turn history; oldest entries are evicted
// first once the bound is exceeded.
const HistoryLimit = 20

var (
	ErrInvalidUserID    = errors.New("user id is empty")
	ErrUnknownField     = errors.New("unknown checklist field")
	ErrChecklistFrozen  = errors.New("checklist is frozen for this cycle")
	ErrImageNotUploaded = errors.New("image has not been uploaded")
)

func NewSession(userID string, now time.Time) *Session {
	return &Session{
		UserID:         userID,
		ConversationID: uuid.NewString(),
		Stage:          StageGatheringContext,
		ImageStatus:    ImagePending,
		Checklist:      make(map[string]string, len(ChecklistFields)),
		CreatedAt:      now.UTC(),
		LastUpdated:    now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.LastUpdated = now.UTC()
}

// EnsureChecklist makes sure s.Checklist is initialized after decoding.
func (s *Session) EnsureChecklist() {
	if s.Checklist == nil {
		s.Checklist = make(map[string]string, len(ChecklistFields))
	}
}

// SetChecklistField stores one gathered field. Fields may be overwritten
// until a diagnosis succeeds, then they are frozen for the cycle.
func (s *Session) SetChecklistField(field, value string) error {
	if !isChecklistField(field) {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if s.ChecklistFrozen {
		return ErrChecklistFrozen
	}
	s.EnsureChecklist()
	s.Checklist[field] = value
	return nil
}

// MissingChecklist returns the absent fields in question order.
func (s *Session) MissingChecklist() []string {
	var missing []string
	for _, f := range ChecklistFields {
		if s.Checklist[f] == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

func (s *Session) ChecklistComplete() bool {
	return len(s.MissingChecklist()) == 0
}

// InDiagnosisFlow reports whether an image-diagnosis cycle is in progress.
func (s *Session) InDiagnosisFlow() bool {
	if s.ImageStatus == ImageUploaded {
		return true
	}
	for _, f := range ChecklistFields {
		if s.Checklist[f] != "" {
			return true
		}
	}
	switch s.Stage {
	case StageAwaitingImage, StageCollectingChecklist, StageDiagnosing, StageAwaitingConfirm, StageTreating:
		return true
	}
	return false
}

func (s *Session) MarkImageUploaded(ref string, now time.Time) {
	s.ImageStatus = ImageUploaded
	s.ImageRef = ref
	s.Touch(now)
}

// ResetPipeline clears the diagnosis cycle so a new one can start cleanly.
// The last diagnosis and treatment plan are kept.
func (s *Session) ResetPipeline(now time.Time) {
	s.Stage = StageGatheringContext
	s.ImageStatus = ImagePending
	s.ImageRef = ""
	s.Checklist = make(map[string]string, len(ChecklistFields))
	s.ChecklistFrozen = false
	s.Touch(now)
}

// AppendTurn records one turn and truncates history to the most recent
// HistoryLimit entries. Truncation never removes the turn just appended.
func (s *Session) AppendTurn(role, content string, toolsUsed []string, now time.Time) {
	s.History = append(s.History, Turn{
		Role:      role,
		Content:   content,
		ToolsUsed: toolsUsed,
		Timestamp: now.UTC(),
	})
	if len(s.History) > HistoryLimit {
		s.History = append([]Turn(nil), s.History[len(s.History)-HistoryLimit:]...)
	}
	s.Touch(now)
}

// Validate checks the pipeline invariants that must hold between turns.
func (s *Session) Validate() error {
	if s.UserID == "" {
		return ErrInvalidUserID
	}
	if len(s.History) > HistoryLimit {
		return fmt.Errorf("history exceeds %d entries", HistoryLimit)
	}
	switch s.Stage {
	case StageDiagnosing, StageAwaitingConfirm, StageTreating:
		if s.ImageStatus != ImageUploaded {
			return fmt.Errorf("stage %s requires an uploaded image", s.Stage)
		}
		if !s.ChecklistComplete() {
			return fmt.Errorf("stage %s requires a complete checklist", s.Stage)
		}
	}
	if s.Stage == StageAwaitingConfirm || s.Stage == StageTreating {
		if s.Diagnosis == nil {
			return fmt.Errorf("stage %s requires a diagnosis", s.Stage)
		}
	}
	if s.TreatmentPlan != nil && s.Diagnosis == nil {
		return errors.New("treatment plan present without diagnosis")
	}
	return nil
}

// Clone returns a deep copy, so stores can hand out sessions without
// sharing mutable slices and maps.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Checklist = make(map[string]string, len(s.Checklist))
	for k, v := range s.Checklist {
		out.Checklist[k] = v
	}
	if s.Diagnosis != nil {
		d := *s.Diagnosis
		d.Symptoms = append([]string(nil), s.Diagnosis.Symptoms...)
		out.Diagnosis = &d
	}
	if s.TreatmentPlan != nil {
		p := TreatmentPlan{
			ImmediateActions: append([]string(nil), s.TreatmentPlan.ImmediateActions...),
			Protocol:         append([]string(nil), s.TreatmentPlan.Protocol...),
			Prevention:       append([]string(nil), s.TreatmentPlan.Prevention...),
		}
		out.TreatmentPlan = &p
	}
	out.History = make([]Turn, len(s.History))
	for i, t := range s.History {
		t.ToolsUsed = append([]string(nil), t.ToolsUsed...)
		out.History[i] = t
	}
	return &out
}

func isChecklistField(field string) bool {
	for _, f := range ChecklistFields {
		if f == field {
			return true
		}
	}
	return false
}
