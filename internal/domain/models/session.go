package models

import "time"

// PersonaID identifies a honeypot character.
type PersonaID string

const (
	PersonaElderly          PersonaID = "elderly_person"
	PersonaBusyProfessional PersonaID = "busy_professional"
	PersonaYoungEager       PersonaID = "young_eager_adult"
)

// StrategyPhase is one stage of the engagement plan. Phases only move
// forward over the life of a session.
type StrategyPhase string

const (
	PhaseEngagement        StrategyPhase = "engagement"
	PhaseInitialExtraction StrategyPhase = "initial_extraction"
	PhaseDeepExtraction    StrategyPhase = "deep_extraction"
	PhaseStalling          StrategyPhase = "stalling"
	PhaseExit              StrategyPhase = "exit"
)

// PhaseIndex returns the ordering rank of a phase. Unknown phases rank
// lowest so a corrupted session falls back to engagement.
func PhaseIndex(p StrategyPhase) int {
	switch p {
	case PhaseEngagement:
		return 0
	case PhaseInitialExtraction:
		return 1
	case PhaseDeepExtraction:
		return 2
	case PhaseStalling:
		return 3
	case PhaseExit:
		return 4
	default:
		return 0
	}
}

// SessionStatus is the lifecycle state of a conversation session.
type SessionStatus string

const (
	SessionActive SessionStatus = "active"
	SessionEnded  SessionStatus = "ended"
)

// ConversationSession is the full persisted state of one honeypot
// conversation with a scammer.
type ConversationSession struct {
	ID           string              `json:"id"`
	Status       SessionStatus       `json:"status"`
	Persona      PersonaID           `json:"persona"`
	Phase        StrategyPhase       `json:"phase"`
	Category     ScamCategory        `json:"category"`
	TurnCount    int                 `json:"turn_count"`
	Confidence   int                 `json:"confidence"`
	Intelligence Intelligence        `json:"intelligence"`
	History      []Message           `json:"history"`
	EndReason    string              `json:"end_reason,omitempty"`
	StartedAt    time.Time           `json:"started_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Snapshot returns the externally visible summary of a session.
func (s *ConversationSession) Snapshot() *SessionSnapshot {
	return &SessionSnapshot{
		ID:           s.ID,
		Status:       s.Status,
		Persona:      s.Persona,
		Phase:        s.Phase,
		Category:     s.Category,
		TurnCount:    s.TurnCount,
		Confidence:   s.Confidence,
		Completeness: s.Intelligence.Completeness(),
	}
}

// SessionSnapshot is a compact view of session progress for API
// responses, omitting the message history.
type SessionSnapshot struct {
	ID           string        `json:"id"`
	Status       SessionStatus `json:"status"`
	Persona      PersonaID     `json:"persona"`
	Phase        StrategyPhase `json:"phase"`
	Category     ScamCategory  `json:"category"`
	TurnCount    int           `json:"turn_count"`
	Confidence   int           `json:"confidence"`
	Completeness int           `json:"completeness"`
}
