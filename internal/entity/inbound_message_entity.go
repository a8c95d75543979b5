package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Inbound message processing statuses.
const (
	InboundStatusPending   = "pending"
	InboundStatusProcessed = "processed"
	InboundStatusFailed    = "failed"
)

// InboundMessage is a raw channel message accepted by the webhook. Failed
// messages stay behind with their last error for inspection and replay.
type InboundMessage struct {
	Id             uuid.UUID
	Channel        string
	ConversationId string
	ExternalUserId string
	Text           string
	Payload        json.RawMessage
	Status         string
	Attempts       int
	LastError      string
	CreatedAt      time.Time
	ProcessedAt    *time.Time
}
