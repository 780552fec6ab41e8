package services

import (
	"regexp"

	"scambait/internal/domain/models"
)

// Strategy describes one phase of the engagement arc: what the
// honeypot is trying to get out of the scammer and how to behave while
// getting it.
type Strategy struct {
	Phase         models.StrategyPhase
	Description   string
	Action        string
	TurnThreshold int
}

// strategyArc is ordered by phase index; selection walks it forward
// only.
var strategyArc = []Strategy{
	{
		Phase:         models.PhaseEngagement,
		Description:   "Build trust and show interest without asking for anything.",
		Action:        "Respond with curiosity and mild excitement. Ask one clarifying question about the offer. Do not mention payment details yet.",
		TurnThreshold: 2,
	},
	{
		Phase:         models.PhaseInitialExtraction,
		Description:   "Nudge the scammer toward revealing a payment channel.",
		Action:        "Agree to proceed but claim confusion about how to pay. Ask where exactly the money should be sent, a UPI ID or account number.",
		TurnThreshold: 5,
	},
	{
		Phase:         models.PhaseDeepExtraction,
		Description:   "Collect secondary artifacts: phone numbers, backup accounts, links.",
		Action:        "Claim the first payment method failed. Ask for an alternative account, a contact number to call, or a link to complete the process.",
		TurnThreshold: 8,
	},
	{
		Phase:         models.PhaseStalling,
		Description:   "Keep the scammer engaged and wasting time.",
		Action:        "Invent small believable obstacles: bank server down, OTP not arriving, need to ask a family member. Stay apologetic and keep promising to pay soon.",
		TurnThreshold: 12,
	},
	{
		Phase:         models.PhaseExit,
		Description:   "Wind the conversation down without revealing the honeypot.",
		Action:        "Politely disengage. Say you will finish this tomorrow or that something urgent came up. Do not accuse or confront.",
		TurnThreshold: 1 << 30,
	},
}

// suspicionPattern matches, on word boundaries, the terms a scammer
// uses once they suspect they are talking to a bot or baiter.
var suspicionPattern = regexp.MustCompile(`(?i)\b(police|fraud|report|scam|bot|ai|fake|stop|suspicious)\b`)

// StrategyFor selects the phase for the coming turn. The returned
// phase never precedes the session's current phase.
func StrategyFor(currentPhase models.StrategyPhase, turnCount, completeness int) Strategy {
	selected := strategyArc[len(strategyArc)-1]
	for _, s := range strategyArc {
		if turnCount <= s.TurnThreshold {
			selected = s
			break
		}
	}

	// progress can outrun the turn table: once a phase's goal is met
	// there is no point lingering in it
	if completeness >= 40 && models.PhaseIndex(selected.Phase) < models.PhaseIndex(models.PhaseDeepExtraction) {
		selected = strategyByPhase(models.PhaseDeepExtraction)
	}
	if completeness >= 90 && models.PhaseIndex(selected.Phase) < models.PhaseIndex(models.PhaseStalling) {
		selected = strategyByPhase(models.PhaseStalling)
	}

	if models.PhaseIndex(selected.Phase) < models.PhaseIndex(currentPhase) {
		return strategyByPhase(currentPhase)
	}
	return selected
}

// ShouldExit decides whether the session must terminate before this
// turn is answered. Returns the reason when it does.
func ShouldExit(text string, turnCount, completeness, maxTurns, earlyExitScore, earlyExitTurns int) (string, bool) {
	if suspicionPattern.MatchString(text) {
		return "counterpart showed suspicion", true
	}
	if turnCount >= maxTurns {
		return "turn limit reached", true
	}
	if completeness >= earlyExitScore && turnCount >= earlyExitTurns {
		return "extraction goals met", true
	}
	if completeness >= 70 && turnCount >= 10 {
		return "extraction goals met", true
	}
	return "", false
}

func strategyByPhase(phase models.StrategyPhase) Strategy {
	for _, s := range strategyArc {
		if s.Phase == phase {
			return s
		}
	}
	return strategyArc[0]
}
