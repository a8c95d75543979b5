package dispatch

import "ai-invoicing-be/internal/entity"

// Result kinds
const (
	KindDocumentCreated = "document_created"
	KindStatusUpdated   = "status_updated"
	KindDocumentSent    = "document_sent"
	KindDocumentsListed = "documents_listed"
	KindClientsListed   = "clients_listed"
	// KindClientAmbiguous carries the candidate clients when a filter matched
	// several of them; the caller presents the choice instead of guessing.
	KindClientAmbiguous = "client_ambiguous"
)

// Result is the outcome of one dispatched intent. Kind selects which fields
// are populated.
type Result struct {
	Kind      string
	Document  *entity.Document
	Documents []*entity.Document
	Clients   []*entity.Client
	// NewClient is true when the creation upserted a client record that did
	// not exist before.
	NewClient bool
}
