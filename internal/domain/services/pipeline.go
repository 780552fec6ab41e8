package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"scambait/internal/config"
	"scambait/internal/domain/models"
	"scambait/internal/domain/services/ai"
	"scambait/pkg/logger"
)

// Detector runs the detection cascade over inbound messages. Stages
// execute in a fixed order; cheap local stages first, model-assisted
// stages only when the local evidence is inconclusive. No stage
// failure can fail detection as a whole.
type Detector struct {
	rules     *RuleEngine
	sigs      *SignatureIndex
	checker   *URLChecker
	completer ai.Completer
	cfg       config.DetectionConfig
	logger    *logger.Logger
}

func NewDetector(
	lib *PatternLibrary,
	checker *URLChecker,
	completer ai.Completer,
	cfg config.DetectionConfig,
	log *logger.Logger,
) *Detector {
	return &Detector{
		rules:     NewRuleEngine(lib),
		sigs:      NewSignatureIndex(lib, cfg.FuzzyMatchRatio, log),
		checker:   checker,
		completer: completer,
		cfg:       cfg,
		logger:    log.WithComponent("detector"),
	}
}

// modelVerdict is the JSON shape expected from the model stage.
type modelVerdict struct {
	IsScam     bool   `json:"is_scam"`
	Confidence int    `json:"confidence"`
	Category   string `json:"category"`
	Reasoning  string `json:"reasoning"`
}

// validatorVerdict is the JSON shape expected from the validation
// stage.
type validatorVerdict struct {
	Agrees     bool `json:"agrees"`
	Adjustment int  `json:"adjustment"`
}

// Detect classifies a message. History gives the model stage
// conversational context; it may be nil for a first message.
func (d *Detector) Detect(ctx context.Context, text string, history []models.Message) *models.DetectionResult {
	start := time.Now()
	result := &models.DetectionResult{Category: models.CategoryOther}

	// stage 1: weighted keywords and structure
	rule := d.rules.Evaluate(text)
	result.Confidence = rule.Score
	result.Category = rule.Category
	result.MatchedKeywords = rule.MatchedKeywords
	result.Reasoning = append(result.Reasoning, fmt.Sprintf("T1-Rules:+%d", rule.Score))

	if d.shortCircuit(text, rule) {
		// a blacklisted link is decisive even when the rules already
		// reached a verdict, so the URL stage still runs
		d.urlStage(ctx, text, result)
		return d.finish(result, start)
	}

	// stage 2: known-scam catalog
	if match := d.sigs.Lookup(text); match != nil {
		boost, category := match.Boost(d.cfg.DatasetBoostFactor)
		result.Confidence = clampScore(result.Confidence + boost)
		result.Category = category
		result.Reasoning = append(result.Reasoning, fmt.Sprintf("T2-Dataset:+%d", boost))
	}

	// stage 3: URL risk
	if terminal := d.urlStage(ctx, text, result); terminal {
		return d.finish(result, start)
	}

	// stages 4 and 5 run only inside the uncertainty band
	if d.completer != nil && result.Confidence > d.cfg.ModelBandLow && result.Confidence < d.cfg.ModelBandHigh {
		if delta, verdict := d.modelStage(ctx, text, history, result); verdict != nil {
			result.Confidence = clampScore(result.Confidence + delta)
			result.Reasoning = append(result.Reasoning, fmt.Sprintf("T4-Model:%+d", delta))

			if vdelta, ok := d.validatorStage(ctx, text, result, verdict); ok {
				result.Confidence = clampScore(result.Confidence + vdelta)
				result.Reasoning = append(result.Reasoning, fmt.Sprintf("T5-Validator:%+d", vdelta))
			}
		}
	}

	return d.finish(result, start)
}

// shortCircuit skips the expensive stages for short messages with an
// extreme rule score in either direction.
func (d *Detector) shortCircuit(text string, rule RuleResult) bool {
	if len([]rune(text)) >= d.cfg.ShortMessageRunes {
		return false
	}
	return rule.Score >= d.cfg.RuleShortCircuit ||
		(rule.Score == 0 && len(rule.MatchedKeywords) == 0)
}

// urlStage scores every URL in the message. A blacklisted URL is
// decisive on its own and terminates the cascade.
func (d *Detector) urlStage(ctx context.Context, text string, result *models.DetectionResult) bool {
	urls := d.lib().URLPattern.FindAllString(text, -1)
	if len(urls) == 0 {
		return false
	}

	maxRisk := 0
	for _, raw := range dedupe(urls) {
		raw = strings.TrimRight(raw, ".,;:!?)")
		if !plausibleURL(raw) {
			continue
		}
		intel := d.checker.Check(ctx, raw)
		result.URLs = append(result.URLs, intel)

		if intel.KnownPhishing {
			if result.Confidence < 95 {
				result.Confidence = 95
			}
			result.Category = models.CategoryPhishing
			result.Reasoning = append(result.Reasoning, "T3-URL:blacklisted")
			return true
		}
		if intel.Risk > maxRisk {
			maxRisk = intel.Risk
		}
	}

	if maxRisk > 0 {
		boost := maxRisk / 4
		result.Confidence = clampScore(result.Confidence + boost)
		result.Reasoning = append(result.Reasoning, fmt.Sprintf("T3-URL:+%d", boost))
		if maxRisk >= 60 && result.Category == models.CategoryOther {
			result.Category = models.CategoryPhishing
		}
	}
	return false
}

// modelStage asks the completion collaborator for an independent
// verdict and blends it in, halving the distance so the model can
// nudge but never override the local evidence. Collaborator failures
// skip the stage.
func (d *Detector) modelStage(ctx context.Context, text string, history []models.Message, result *models.DetectionResult) (int, *modelVerdict) {
	raw, err := d.completer.Complete(ctx, detectionSystemPrompt, d.buildDetectionPrompt(text, history, result))
	if err != nil {
		d.logger.Warn().Err(err).Msg("model stage skipped")
		return 0, nil
	}

	var verdict modelVerdict
	if err := ai.ExtractJSONObject(raw, &verdict); err != nil {
		d.logger.Warn().Err(err).Msg("model verdict unparseable, stage skipped")
		return 0, nil
	}
	verdict.Confidence = clampScore(verdict.Confidence)

	delta := (verdict.Confidence - result.Confidence) / 2
	return delta, &verdict
}

// validatorStage asks for a critique of the pending verdict and
// applies a small clamped correction.
func (d *Detector) validatorStage(ctx context.Context, text string, result *models.DetectionResult, verdict *modelVerdict) (int, bool) {
	raw, err := d.completer.Complete(ctx, validatorSystemPrompt, d.buildValidatorPrompt(text, result, verdict))
	if err != nil {
		d.logger.Warn().Err(err).Msg("validator stage skipped")
		return 0, false
	}

	var critique validatorVerdict
	if err := ai.ExtractJSONObject(raw, &critique); err != nil {
		d.logger.Warn().Err(err).Msg("validator verdict unparseable, stage skipped")
		return 0, false
	}

	adj := critique.Adjustment
	if adj < 0 {
		adj = -adj
	}
	if adj > d.cfg.ValidatorMaxAdjust {
		adj = d.cfg.ValidatorMaxAdjust
	}
	if !critique.Agrees {
		adj = -adj
	}
	return adj, true
}

func (d *Detector) finish(result *models.DetectionResult, start time.Time) *models.DetectionResult {
	result.Confidence = clampScore(result.Confidence)
	result.IsScam = result.Confidence >= d.cfg.DecisionThreshold
	result.DetectionTimeMS = time.Since(start).Milliseconds()
	return result
}

func (d *Detector) lib() *PatternLibrary {
	return d.rules.lib
}

const detectionSystemPrompt = `You are a fraud analyst reviewing suspicious text messages.
Classify the message and answer ONLY with a JSON object of this exact shape:
{"is_scam": boolean, "confidence": 0-100, "category": "lottery|prize|tech_support|job|romance|phishing|bank|other", "reasoning": "one sentence"}`

func (d *Detector) buildDetectionPrompt(text string, history []models.Message, result *models.DetectionResult) string {
	var sb strings.Builder
	sb.WriteString("Message under review:\n")
	sb.WriteString(text)
	sb.WriteString("\n\nHeuristic pre-screening scored it ")
	fmt.Fprintf(&sb, "%d/100 (category %s).\n", result.Confidence, result.Category)
	if len(history) > 0 {
		sb.WriteString("\nEarlier messages in this conversation:\n")
		for _, m := range history {
			fmt.Fprintf(&sb, "[%s] %s\n", m.Sender, m.Text)
		}
	}
	sb.WriteString("\nGive your independent verdict as JSON.")
	return sb.String()
}

const validatorSystemPrompt = `You are reviewing a colleague's fraud verdict for errors.
Answer ONLY with a JSON object: {"agrees": boolean, "adjustment": 0-10}
where adjustment is how strongly you would move the confidence.`

func (d *Detector) buildValidatorPrompt(text string, result *models.DetectionResult, verdict *modelVerdict) string {
	return fmt.Sprintf(
		"Message:\n%s\n\nVerdict under review: scam=%v confidence=%d category=%s\nAnalyst note: %s\n\nDo you agree? Answer as JSON.",
		text, verdict.IsScam, result.Confidence, result.Category, verdict.Reasoning,
	)
}
