package models

import "time"

// Sender identifies which side of a conversation produced a message.
type Sender string

const (
	SenderScammer  Sender = "scammer"
	SenderHoneypot Sender = "honeypot"
)

// Message is a single inbound or outbound conversation message.
type Message struct {
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// TurnRequest is the inbound payload for one conversation turn.
type TurnRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
	Channel        string `json:"channel,omitempty"`
}

// TurnResponse is what the honeypot sends back for one turn.
type TurnResponse struct {
	ConversationID string              `json:"conversation_id"`
	Reply          string              `json:"reply,omitempty"`
	ScamDetected   bool                `json:"scam_detected"`
	Detection      *DetectionResult    `json:"detection,omitempty"`
	Intelligence   *IntelligenceDelta  `json:"intelligence,omitempty"`
	Session        *SessionSnapshot    `json:"session,omitempty"`
	Ended          bool                `json:"ended"`
	EndReason      string              `json:"end_reason,omitempty"`
}
