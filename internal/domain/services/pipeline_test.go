package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scambait/internal/config"
	"scambait/internal/domain/models"
	"scambait/pkg/logger"
)

// completerFunc adapts a function to the ai.Completer interface.
type completerFunc func(ctx context.Context, system, user string) (string, error)

func (f completerFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

func testDetectionConfig() config.DetectionConfig {
	return config.DetectionConfig{
		DecisionThreshold:  70,
		RuleShortCircuit:   95,
		ShortMessageRunes:  80,
		ModelBandLow:       40,
		ModelBandHigh:      90,
		ValidatorMaxAdjust: 10,
		DatasetBoostFactor: 0.5,
		FuzzyMatchRatio:    0.8,
	}
}

func newTestDetector(t *testing.T, completer completerFunc) *Detector {
	t.Helper()
	lib := NewPatternLibrary()
	log := logger.NewDefault()
	checker := NewURLChecker(lib, log)
	if completer == nil {
		return NewDetector(lib, checker, nil, testDetectionConfig(), log)
	}
	return NewDetector(lib, checker, completer, testDetectionConfig(), log)
}

func TestDetectLotteryScam(t *testing.T) {
	d := newTestDetector(t, nil)

	msg := "Congratulations! You have won 2500000 in the lucky draw. Share the OTP and pay the registration fee to scammer@upi today"
	result := d.Detect(context.Background(), msg, nil)

	require.NotNil(t, result)
	assert.True(t, result.IsScam)
	assert.GreaterOrEqual(t, result.Confidence, 70)
	assert.Equal(t, models.CategoryLottery, result.Category)
	assert.NotEmpty(t, result.Reasoning)
	assert.Contains(t, result.Reasoning[0], "T1-Rules:+")
}

func TestDetectBenignMessage(t *testing.T) {
	d := newTestDetector(t, nil)

	result := d.Detect(context.Background(), "Hi, how are you?", nil)

	assert.False(t, result.IsScam)
	assert.LessOrEqual(t, result.Confidence, 10)
	assert.Equal(t, models.CategoryOther, result.Category)
}

func TestDetectBlacklistedURLIsTerminal(t *testing.T) {
	d := newTestDetector(t, nil)

	result := d.Detect(context.Background(), "please visit http://phishing-site.com/login for details", nil)

	assert.True(t, result.IsScam)
	assert.GreaterOrEqual(t, result.Confidence, 95)
	assert.Equal(t, models.CategoryPhishing, result.Category)
	assert.Contains(t, result.Reasoning, "T3-URL:blacklisted")
	require.NotEmpty(t, result.URLs)
	assert.True(t, result.URLs[0].KnownPhishing)
}

func TestDetectBlacklistOverridesRuleVerdict(t *testing.T) {
	d := newTestDetector(t, nil)

	// short enough to trip the rule short-circuit at full score; the
	// blacklisted link must still decide the category
	msg := "You won the lottery! OTP to claim at phishing-site.com"
	result := d.Detect(context.Background(), msg, nil)

	assert.True(t, result.IsScam)
	assert.GreaterOrEqual(t, result.Confidence, 95)
	assert.Equal(t, models.CategoryPhishing, result.Category)
	assert.Contains(t, result.Reasoning, "T3-URL:blacklisted")
	require.NotEmpty(t, result.URLs)
	assert.True(t, result.URLs[0].KnownPhishing)
}

func TestDetectSurvivesCompleterOutage(t *testing.T) {
	down := completerFunc(func(ctx context.Context, system, user string) (string, error) {
		return "", errors.New("connection refused")
	})
	d := newTestDetector(t, down)

	// scores into the uncertainty band so the model stage is attempted
	msg := "Your KYC verification is pending, complete the payment process soon"
	result := d.Detect(context.Background(), msg, nil)

	require.NotNil(t, result)
	assert.Greater(t, result.Confidence, 0)
	for _, r := range result.Reasoning {
		assert.NotContains(t, r, "T4-Model")
	}
}

func TestDetectModelStageBlendsHalfway(t *testing.T) {
	model := completerFunc(func(ctx context.Context, system, user string) (string, error) {
		if strings.Contains(system, "colleague") {
			return `{"agrees": true, "adjustment": 4}`, nil
		}
		return `{"is_scam": true, "confidence": 100, "category": "bank", "reasoning": "payment pressure"}`, nil
	})
	d := newTestDetector(t, model)

	// rules put this in the band; model at 100 can only close half the gap
	msg := "Your KYC verification is pending, complete the payment process soon"
	base := newTestDetector(t, nil).Detect(context.Background(), msg, nil)
	require.Greater(t, base.Confidence, 40)
	require.Less(t, base.Confidence, 90)

	result := d.Detect(context.Background(), msg, nil)

	expected := base.Confidence + (100-base.Confidence)/2 + 4
	if expected > 100 {
		expected = 100
	}
	assert.Equal(t, expected, result.Confidence)
	assert.Contains(t, result.Reasoning, "T5-Validator:+4")
}

func TestDetectDatasetSignatureBoost(t *testing.T) {
	d := newTestDetector(t, nil)

	// near-verbatim catalog entry with different amounts
	msg := "Congratulations! You have won Rs 9900000 in the KBC lucky draw. To claim your prize money send your bank account number and pay registration fee of Rs 900."
	result := d.Detect(context.Background(), msg, nil)

	assert.True(t, result.IsScam)
	assert.Equal(t, models.CategoryLottery, result.Category)

	found := false
	for _, r := range result.Reasoning {
		if strings.Contains(r, "T2-Dataset:+") {
			found = true
		}
	}
	assert.True(t, found, "expected a dataset stage contribution, got %v", result.Reasoning)
}
