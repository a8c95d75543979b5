package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics
const (
	TopicDocumentCreated = "document.created"
	TopicDocumentEmail   = "document.email"
)

// DocumentCreated is published after a document's transaction commits. The
// payload is self-contained so consumers never need to re-read the database.
type DocumentCreated struct {
	DocumentID  uuid.UUID `json:"document_id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Number      string    `json:"number"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email,omitempty"`
	Total       string    `json:"total"`
	Currency    string    `json:"currency"`
	SendEmail   bool      `json:"send_email"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// DocumentEmailRequested asks the notifier to deliver a document by email.
type DocumentEmailRequested struct {
	DocumentID  uuid.UUID `json:"document_id"`
	TenantID    uuid.UUID `json:"tenant_id"`
	Number      string    `json:"number"`
	Type        string    `json:"type"`
	Title       string    `json:"title"`
	ClientName  string    `json:"client_name"`
	ClientEmail string    `json:"client_email"`
	Total       string    `json:"total"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}
