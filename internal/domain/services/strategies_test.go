package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"scambait/internal/domain/models"
)

func TestStrategyForTurnProgression(t *testing.T) {
	tests := []struct {
		turn int
		want models.StrategyPhase
	}{
		{1, models.PhaseEngagement},
		{2, models.PhaseEngagement},
		{3, models.PhaseInitialExtraction},
		{6, models.PhaseDeepExtraction},
		{10, models.PhaseStalling},
		{13, models.PhaseExit},
	}
	for _, tt := range tests {
		got := StrategyFor(models.PhaseEngagement, tt.turn, 0)
		assert.Equal(t, tt.want, got.Phase, "turn %d", tt.turn)
	}
}

func TestStrategyForCompletenessJumps(t *testing.T) {
	got := StrategyFor(models.PhaseEngagement, 1, 40)
	assert.Equal(t, models.PhaseDeepExtraction, got.Phase,
		"a payment channel in hand skips the warmup phases")

	got = StrategyFor(models.PhaseEngagement, 1, 90)
	assert.Equal(t, models.PhaseStalling, got.Phase,
		"near-complete intelligence moves straight to stalling")
}

func TestStrategyForNeverMovesBackward(t *testing.T) {
	got := StrategyFor(models.PhaseStalling, 1, 0)
	assert.Equal(t, models.PhaseStalling, got.Phase)

	got = StrategyFor(models.PhaseDeepExtraction, 3, 0)
	assert.Equal(t, models.PhaseDeepExtraction, got.Phase)
}

func TestShouldExitOnSuspicion(t *testing.T) {
	why, exit := ShouldExit("I am going to report this to the police", 3, 0, 15, 90, 6)
	assert.True(t, exit)
	assert.Equal(t, "counterpart showed suspicion", why)

	_, exit = ShouldExit("are you a bot?", 1, 0, 15, 90, 6)
	assert.True(t, exit)
}

func TestShouldExitMatchesWholeWordsOnly(t *testing.T) {
	_, exit := ShouldExit("stop wasting my time", 3, 0, 15, 90, 6)
	assert.True(t, exit)

	// "stopped" and "repair" must not trip the suspicion check
	_, exit = ShouldExit("the bus stopped near my house, repair work going on", 3, 0, 15, 90, 6)
	assert.False(t, exit)
}

func TestShouldExitOnTurnLimit(t *testing.T) {
	_, exit := ShouldExit("ok sending now", 14, 0, 15, 90, 6)
	assert.False(t, exit)

	why, exit := ShouldExit("ok sending now", 15, 0, 15, 90, 6)
	assert.True(t, exit)
	assert.Equal(t, "turn limit reached", why)
}

func TestShouldExitWhenExtractionDone(t *testing.T) {
	// high completeness alone is not enough before the minimum turn count
	_, exit := ShouldExit("ok", 5, 90, 15, 90, 6)
	assert.False(t, exit)

	why, exit := ShouldExit("ok", 6, 90, 15, 90, 6)
	assert.True(t, exit)
	assert.Equal(t, "extraction goals met", why)

	// the slower threshold kicks in at ten turns with decent intel
	why, exit = ShouldExit("ok", 10, 70, 15, 90, 6)
	assert.True(t, exit)
	assert.Equal(t, "extraction goals met", why)
}
