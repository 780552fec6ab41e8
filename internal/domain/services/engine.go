package services

import (
	"context"
	"fmt"
	"strings"

	"scambait/internal/config"
	"scambait/internal/domain/models"
	"scambait/internal/domain/services/ai"
	"scambait/pkg/logger"
)

// fallbackReplies keeps the conversation alive when the completion
// collaborator is down. Selection is deterministic by turn so retries
// of the same turn produce the same reply.
var fallbackReplies = map[models.StrategyPhase][]string{
	models.PhaseEngagement: {
		"Oh really? Tell me more about this please.",
		"That sounds interesting. How does it work exactly?",
		"I was not expecting this message. What do I need to do?",
	},
	models.PhaseInitialExtraction: {
		"Okay I want to proceed. Where should I send the money exactly?",
		"I am ready to pay but I don't understand. Can you give me the account number or UPI ID?",
		"Which number or ID should I use for the payment?",
	},
	models.PhaseDeepExtraction: {
		"It says the payment failed. Do you have another account I can try?",
		"My bank is asking for more details. Can you share a phone number I can call?",
		"The link is not opening on my phone. Can you send it once more or a different one?",
	},
	models.PhaseStalling: {
		"The bank server is not working right now, I will try again in some time.",
		"The OTP has not come yet. Let me wait and try once more.",
		"I need to ask my son about this first, he handles my banking. Please give me a little time.",
	},
	models.PhaseExit: {
		"Something urgent has come up at home. I will finish this tomorrow morning for sure.",
		"I have to go now, my neighbour is calling me. We will complete this later.",
	},
}

// brushOff is the reply for messages the detector did not flag.
const brushOff = "Sorry, I think you have the wrong number."

// TurnReply is what the engine produced for one turn.
type TurnReply struct {
	Text     string
	Persona  models.PersonaID
	Phase    models.StrategyPhase
	Exited   bool
	ExitWhy  string
	Fallback bool
}

// Engine generates in-character replies that keep a scammer talking.
type Engine struct {
	completer ai.Completer
	cfg       config.EngageConfig
	logger    *logger.Logger
}

func NewEngine(completer ai.Completer, cfg config.EngageConfig, log *logger.Logger) *Engine {
	return &Engine{
		completer: completer,
		cfg:       cfg,
		logger:    log.WithComponent("engine"),
	}
}

// GenerateResponse produces the honeypot's reply for one turn. The
// session is read-only here; the orchestrator applies the resulting
// phase and exit flags. delta carries the artifacts just extracted
// from the incoming message, so strategy and exit decisions see them
// before the session itself is updated.
func (e *Engine) GenerateResponse(
	ctx context.Context,
	session *models.ConversationSession,
	detection *models.DetectionResult,
	delta models.IntelligenceDelta,
	incoming string,
) TurnReply {
	if !detection.IsScam && session.Persona == "" {
		return TurnReply{Text: brushOff, Phase: session.Phase}
	}

	persona := e.pinnedPersona(session, detection)
	turn := session.TurnCount + 1

	gathered := session.Intelligence
	gathered.Merge(delta)
	completeness := gathered.Completeness()

	if why, exit := ShouldExit(incoming, turn, completeness, e.cfg.MaxTurns, e.cfg.EarlyExitScore, e.cfg.EarlyExitTurns); exit {
		text, fellBack := e.reply(ctx, session, persona, strategyByPhase(models.PhaseExit), incoming, turn)
		return TurnReply{
			Text:     text,
			Persona:  persona.ID,
			Phase:    models.PhaseExit,
			Exited:   true,
			ExitWhy:  why,
			Fallback: fellBack,
		}
	}

	strategy := StrategyFor(session.Phase, turn, completeness)
	text, fellBack := e.reply(ctx, session, persona, strategy, incoming, turn)
	return TurnReply{
		Text:     text,
		Persona:  persona.ID,
		Phase:    strategy.Phase,
		Exited:   strategy.Phase == models.PhaseExit,
		ExitWhy:  exitWhyForPhase(strategy.Phase),
		Fallback: fellBack,
	}
}

func exitWhyForPhase(p models.StrategyPhase) string {
	if p == models.PhaseExit {
		return "engagement arc complete"
	}
	return ""
}

// pinnedPersona returns the session's persona, choosing one on the
// first flagged turn.
func (e *Engine) pinnedPersona(session *models.ConversationSession, detection *models.DetectionResult) Persona {
	if session.Persona != "" {
		return PersonaByID(session.Persona)
	}
	return PersonaFor(detection.Category)
}

// reply asks the collaborator for an in-character response, falling
// back to the canned table on any failure. The second return value is
// true when the canned table was used.
func (e *Engine) reply(
	ctx context.Context,
	session *models.ConversationSession,
	persona Persona,
	strategy Strategy,
	incoming string,
	turn int,
) (string, bool) {
	if e.completer == nil {
		return fallbackFor(strategy.Phase, turn), true
	}

	raw, err := e.completer.Complete(ctx, e.systemPrompt(persona, strategy), e.userPrompt(session, incoming))
	if err != nil {
		e.logger.Warn().Err(err).Str("phase", string(strategy.Phase)).Msg("generation failed, using fallback")
		return fallbackFor(strategy.Phase, turn), true
	}

	text := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"`))
	if text == "" {
		return fallbackFor(strategy.Phase, turn), true
	}
	return text, false
}

func fallbackFor(phase models.StrategyPhase, turn int) string {
	replies, ok := fallbackReplies[phase]
	if !ok || len(replies) == 0 {
		replies = fallbackReplies[models.PhaseEngagement]
	}
	return replies[turn%len(replies)]
}

func (e *Engine) systemPrompt(persona Persona, strategy Strategy) string {
	var sb strings.Builder
	sb.WriteString(persona.PromptContext())
	sb.WriteString("\nCurrent objective: ")
	sb.WriteString(strategy.Description)
	sb.WriteString("\n")
	sb.WriteString(strategy.Action)
	sb.WriteString("\nRules: stay in character, never reveal you are not real, never share real personal data, reply in 1-3 short sentences, plain text only.")
	return sb.String()
}

func (e *Engine) userPrompt(session *models.ConversationSession, incoming string) string {
	var sb strings.Builder
	history := session.History
	if len(history) > e.cfg.HistoryWindow {
		history = history[len(history)-e.cfg.HistoryWindow:]
	}
	if len(history) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, m := range history {
			fmt.Fprintf(&sb, "[%s] %s\n", m.Sender, m.Text)
		}
		sb.WriteString("\n")
	}
	sb.WriteString("They just sent:\n")
	sb.WriteString(incoming)
	sb.WriteString("\n\nYour reply:")
	return sb.String()
}
