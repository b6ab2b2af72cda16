package notifications

import (
	"encoding/json"
	"time"
)

// Event types pushed to clients over the notification channel.
const (
	EventMatchRequest  = "match_request"
	EventMatchAccepted = "match_accepted"
	EventMatchRejected = "match_rejected"
	EventMatchEnded    = "match_ended"
	EventChatMessage   = "chat_message"
	EventCheckinNudge  = "checkin_nudge"
)

// Event is the envelope every pushed notification uses.
type Event struct {
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// MatchEventPayload describes a match lifecycle change.
type MatchEventPayload struct {
	MatchID uint    `json:"match_id"`
	ActorID uint    `json:"actor_id"`
	Status  string  `json:"status"`
	Score   float64 `json:"score,omitempty"`
}

// ChatEventPayload describes a new chat message inside a match.
type ChatEventPayload struct {
	MatchID   uint   `json:"match_id"`
	MessageID uint   `json:"message_id"`
	SenderID  uint   `json:"sender_id"`
	Preview   string `json:"preview"`
}

// Encode wraps a payload in the event envelope and returns the JSON string.
func Encode(eventType string, payload interface{}) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	evt := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}
	out, err := json.Marshal(evt)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
