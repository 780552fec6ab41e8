package models

import "time"

// TerminalReport is the final intelligence package emitted when a
// session ends. It is what gets posted to the reporting callback and
// archived for later review.
type TerminalReport struct {
	ReportID       string       `json:"report_id"`
	ConversationID string       `json:"conversation_id"`
	Category       ScamCategory `json:"category"`
	Confidence     int          `json:"confidence"`
	Persona        PersonaID    `json:"persona"`
	TurnCount      int          `json:"turn_count"`
	Completeness   int          `json:"completeness"`
	Intelligence   Intelligence `json:"intelligence"`
	EndReason      string       `json:"end_reason"`
	StartedAt      time.Time    `json:"started_at"`
	EndedAt        time.Time    `json:"ended_at"`
}
