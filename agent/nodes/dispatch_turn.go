package routernode

import (
	"context"
	"fmt"
	"strings"
	"time"

	contractx "github.com/prajwalh/krishi-mitra/agent/contract"
	"github.com/prajwalh/krishi-mitra/agent/i18n"
	intentx "github.com/prajwalh/krishi-mitra/agent/intent"
	statex "github.com/prajwalh/krishi-mitra/agent/state"
)

// DispatchTurn routes one turn to the right capability. Priority is fixed:
// market beats scheme beats weather, direct intents beat the pipeline, and
// the pipeline beats the general fallback. An attached image is always
// retained for the diagnosis pipeline, but the pipeline only consumes the
// turn when no direct-answer vocabulary matched.
func DispatchTurn(
	ctx context.Context,
	in *GraphState,
	models contractx.Registry,
	classifier intentx.Classifier,
	timeout time.Duration,
) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}
	sess := in.Session

	if in.ImageRef != "" {
		sess.MarkImageUploaded(in.ImageRef, in.Now)
	}

	res := classifier.Classify(in.Text)
	switch res.Intent {
	case intentx.IntentMarket:
		return marketTurn(ctx, in, models.MarketAnalyzer(), res.Commodity, timeout)
	case intentx.IntentScheme:
		return schemeTurn(ctx, in, models.SchemeFinder(), timeout)
	case intentx.IntentWeather:
		return weatherTurn(ctx, in, models.WeatherReporter(), timeout)
	}

	if in.ImageRef != "" {
		if sess.ChecklistComplete() {
			return detectTurn(ctx, in, models.DiseaseDetector(), timeout)
		}
		sess.Stage = statex.StageCollectingChecklist
		return stageReply(in, sess.Stage, i18n.Render(checklistQuestion(sess.MissingChecklist()[0]), in.Lang)), nil
	}

	if sess.Stage == statex.StageAwaitingConfirm {
		return confirmTurn(ctx, in, models.TreatmentPlanner(), classifier, timeout)
	}
	if sess.InDiagnosisFlow() {
		return checklistTurn(ctx, in, models.DiseaseDetector(), timeout)
	}
	if res.Intent == intentx.IntentDiagnosis {
		sess.Stage = statex.StageAwaitingImage
		return stageReply(in, sess.Stage, i18n.Render(i18n.MsgAskImage, in.Lang)), nil
	}

	return stageReply(in, statex.StageDirectAnswer, i18n.Render(i18n.MsgGeneralAdvice, in.Lang)), nil
}

// checklistTurn consumes a text turn inside an open diagnosis cycle.
func checklistTurn(
	ctx context.Context,
	in *GraphState,
	detector contractx.DiseaseDetector,
	timeout time.Duration,
) (*GraphState, error) {
	sess := in.Session

	if sess.ImageStatus != statex.ImageUploaded {
		sess.Stage = statex.StageAwaitingImage
		return stageReply(in, sess.Stage, i18n.Render(i18n.MsgAskImage, in.Lang)), nil
	}

	if missing := sess.MissingChecklist(); len(missing) > 0 {
		if err := sess.SetChecklistField(missing[0], in.Text); err != nil {
			return nil, fmt.Errorf("%w: %v", contractx.ErrState, err)
		}
	}
	if missing := sess.MissingChecklist(); len(missing) > 0 {
		sess.Stage = statex.StageCollectingChecklist
		return stageReply(in, sess.Stage, i18n.Render(checklistQuestion(missing[0]), in.Lang)), nil
	}

	return detectTurn(ctx, in, detector, timeout)
}

func detectTurn(
	ctx context.Context,
	in *GraphState,
	detector contractx.DiseaseDetector,
	timeout time.Duration,
) (*GraphState, error) {
	sess := in.Session
	sess.Stage = statex.StageDiagnosing
	in.ToolsUsed = append(in.ToolsUsed, contractx.CapabilityDiseaseDetection)

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := detector.Detect(cctx, contractx.DetectionRequest{
		ImageRef:  sess.ImageRef,
		PlantInfo: copyChecklist(sess.Checklist),
		Profile:   sess.Profile,
	})
	if err != nil || res.Status != contractx.StatusSuccess {
		// Retryable: the gathered context is kept, the stage does not advance.
		sess.Stage = statex.StageCollectingChecklist
		return stageReply(in, sess.Stage, i18n.Render(i18n.MsgApology, in.Lang)), nil
	}

	diagnosis := res.Diagnosis
	if diagnosis.Confidence == 0 {
		diagnosis.Confidence = res.Confidence
	}
	sess.Diagnosis = &diagnosis
	sess.ChecklistFrozen = true
	sess.Stage = statex.StageAwaitingConfirm
	return stageReply(in, sess.Stage, i18n.Render(i18n.MsgDiagnosisReady, in.Lang, diagnosis.DiseaseName)), nil
}

// confirmTurn gates the treatment plan behind an explicit yes. Delivery
// resets the pipeline for the next cycle; the reported stage is DELIVERED.
func confirmTurn(
	ctx context.Context,
	in *GraphState,
	planner contractx.TreatmentPlanner,
	classifier intentx.Classifier,
	timeout time.Duration,
) (*GraphState, error) {
	sess := in.Session
	if sess.Diagnosis == nil {
		return nil, fmt.Errorf("%w: awaiting confirmation without a diagnosis", contractx.ErrState)
	}

	if !classifier.Affirmative(in.Text) {
		return stageReply(in, sess.Stage, i18n.Render(i18n.MsgConfirmRepeat, in.Lang, sess.Diagnosis.DiseaseName)), nil
	}

	sess.Stage = statex.StageTreating
	in.ToolsUsed = append(in.ToolsUsed, contractx.CapabilityTreatmentPlan)

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := planner.Plan(cctx, contractx.TreatmentRequest{
		Diagnosis: *sess.Diagnosis,
		Profile:   sess.Profile,
	})
	if err != nil || res.Status != contractx.StatusSuccess {
		sess.Stage = statex.StageAwaitingConfirm
		return stageReply(in, sess.Stage, i18n.Render(i18n.MsgApology, in.Lang)), nil
	}

	plan := res.Plan
	sess.TreatmentPlan = &plan

	steps := make([]string, 0, len(plan.ImmediateActions)+len(plan.Protocol))
	steps = append(steps, plan.ImmediateActions...)
	steps = append(steps, plan.Protocol...)
	reply := i18n.Render(i18n.MsgTreatmentIntro, in.Lang, strings.Join(steps, "; "))
	if len(plan.Prevention) > 0 {
		reply += " " + i18n.Render(i18n.MsgPreventionIntro, in.Lang, strings.Join(plan.Prevention, "; "))
	}

	sess.ResetPipeline(in.Now)
	return stageReply(in, statex.StageDelivered, reply), nil
}

func marketTurn(
	ctx context.Context,
	in *GraphState,
	analyzer contractx.MarketAnalyzer,
	commodity string,
	timeout time.Duration,
) (*GraphState, error) {
	in.ToolsUsed = append(in.ToolsUsed, contractx.CapabilityMarketPrices)

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := analyzer.Prices(cctx, contractx.MarketRequest{
		Commodity: commodity,
		Location:  in.Session.Profile.Location,
	})
	if err != nil || res.Status != contractx.StatusSuccess {
		return stageReply(in, statex.StageDirectAnswer, i18n.Render(i18n.MsgApology, in.Lang)), nil
	}

	reply := i18n.Render(i18n.MsgMarketReport, in.Lang,
		res.Commodity, res.Market, res.ModalPrice, res.TrendPct, res.Recommendation)
	return stageReply(in, statex.StageDirectAnswer, reply), nil
}

func schemeTurn(
	ctx context.Context,
	in *GraphState,
	finder contractx.SchemeFinder,
	timeout time.Duration,
) (*GraphState, error) {
	in.ToolsUsed = append(in.ToolsUsed, contractx.CapabilitySchemeSearch)

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := finder.Search(cctx, contractx.SchemeRequest{
		Query:          in.Text,
		FarmerCategory: in.Session.Profile.FarmingType,
	})
	if err != nil || res.Status != contractx.StatusSuccess {
		return stageReply(in, statex.StageDirectAnswer, i18n.Render(i18n.MsgApology, in.Lang)), nil
	}

	reply := i18n.Render(i18n.MsgSchemeReport, in.Lang, res.SchemeName, res.Description)
	return stageReply(in, statex.StageDirectAnswer, reply), nil
}

func weatherTurn(
	ctx context.Context,
	in *GraphState,
	reporter contractx.WeatherReporter,
	timeout time.Duration,
) (*GraphState, error) {
	in.ToolsUsed = append(in.ToolsUsed, contractx.CapabilityWeather)

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := reporter.Forecast(cctx, contractx.WeatherRequest{
		City: in.Session.Profile.Location,
	})
	if err != nil || res.Status != contractx.StatusSuccess {
		return stageReply(in, statex.StageDirectAnswer, i18n.Render(i18n.MsgApology, in.Lang)), nil
	}

	return stageReply(in, statex.StageDirectAnswer, i18n.Render(i18n.MsgWeatherReport, in.Lang, res.Report)), nil
}

func stageReply(in *GraphState, stage statex.Stage, reply string) *GraphState {
	in.ReplyStage = stage
	in.Reply = reply
	return in
}

func checklistQuestion(field string) i18n.MessageID {
	switch field {
	case statex.FieldPlantName:
		return i18n.MsgAskPlantName
	case statex.FieldDiseaseSymptoms:
		return i18n.MsgAskSymptoms
	case statex.FieldPesticidesUsed:
		return i18n.MsgAskPesticides
	default:
		return i18n.MsgApology
	}
}

func copyChecklist(src map[string]string) map[string]string {
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}
