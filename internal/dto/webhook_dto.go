package dto

import "encoding/json"

// WebhookInbound is the normalized shape of one channel message. The raw
// provider payload rides along for the dead-letter table.
type WebhookInbound struct {
	Channel        string          `json:"channel" validate:"required"`
	ConversationId string          `json:"conversation_id" validate:"required"`
	ExternalUserId string          `json:"external_user_id" validate:"required"`
	Text           string          `json:"text" validate:"required"`
	Payload        json.RawMessage `json:"payload,omitempty"`
}

// QueuedInbound is what travels through the work queue: the persisted
// message id plus enough identity to process without another join.
type QueuedInbound struct {
	MessageId      string `json:"message_id"`
	Channel        string `json:"channel"`
	ConversationId string `json:"conversation_id"`
	ExternalUserId string `json:"external_user_id"`
	Text           string `json:"text"`
	TenantId       string `json:"tenant_id"`
	UserId         string `json:"user_id"`
}
