package intent

import (
	"strings"

	"github.com/google/uuid"
)

// Action constants — the fixed intent vocabulary.
const (
	ActionCreateDocument = "create_document"
	ActionUpdateStatus   = "update_status"
	ActionSendDocument   = "send_document"
	ActionListDocuments  = "list_documents"
	ActionListClients    = "list_clients"
	ActionUnknown        = "unknown"
)

// Document type constants
const (
	DocTypeQuote   = "quote"
	DocTypeInvoice = "invoice"
)

// Status constants
const (
	StatusDraft    = "draft"
	StatusSent     = "sent"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
	StatusPaid     = "paid"
	StatusOverdue  = "overdue"
)

// LineItem is one billable line extracted from the message.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// Intent is the canonical, validated output of parsing. Each action uses only
// its own fields; Complete/Missing replace nulls-masquerading-as-values.
type Intent struct {
	Action       string     `json:"action"`
	DocumentType string     `json:"document_type,omitempty"`
	ClientName   string     `json:"client_name,omitempty"`
	ClientEmail  string     `json:"client_email,omitempty"`
	Title        string     `json:"title,omitempty"`
	Items        []LineItem `json:"items,omitempty"`
	Currency     string     `json:"currency,omitempty"`
	TaxRate      *float64   `json:"tax_rate,omitempty"`
	DocumentID   string     `json:"document_id,omitempty"`    // formatted number, or "last"
	TargetStatus string     `json:"target_status,omitempty"`
	ClientFilter string     `json:"client_filter,omitempty"`
	Limit        int        `json:"limit,omitempty"`
	SendEmail    bool       `json:"send_email,omitempty"`
	Confidence   float64    `json:"confidence"`
	Complete     bool       `json:"complete"`
	Missing      []string   `json:"missing,omitempty"`
}

// ClientRef is a known client surfaced to the parser for name matching.
type ClientRef struct {
	ID    uuid.UUID
	Name  string
	Email string
}

// DocumentRef is a recent document surfaced for deictic references
// ("the last one", "mark INV-0003 as paid").
type DocumentRef struct {
	ID     uuid.UUID
	Number string
	Type   string
	Status string
	Title  string
}

// TenantContext is everything the parser may read about the tenant. Parsing
// never writes.
type TenantContext struct {
	Clients         []ClientRef
	RecentDocuments []DocumentRef
}

// Finalize normalizes the variant and computes Complete/Missing. Every parsed
// payload goes through here before anything downstream touches it.
func (i *Intent) Finalize() {
	i.Action = strings.ToLower(strings.TrimSpace(i.Action))
	i.DocumentType = strings.ToLower(strings.TrimSpace(i.DocumentType))
	i.TargetStatus = NormalizeStatus(i.DocumentType, i.TargetStatus)
	i.Missing = nil

	switch i.Action {
	case ActionCreateDocument:
		if i.DocumentType != DocTypeQuote && i.DocumentType != DocTypeInvoice {
			i.Missing = append(i.Missing, "document_type")
		}
		if strings.TrimSpace(i.ClientName) == "" {
			i.Missing = append(i.Missing, "client_name")
		}
		if len(i.Items) == 0 {
			i.Missing = append(i.Missing, "items")
		}
		for idx := range i.Items {
			if i.Items[idx].Quantity <= 0 {
				i.Items[idx].Quantity = 1
			}
		}
	case ActionUpdateStatus:
		if i.DocumentID == "" {
			i.Missing = append(i.Missing, "document_id")
		}
		if i.TargetStatus == "" {
			i.Missing = append(i.Missing, "target_status")
		}
	case ActionSendDocument:
		if i.DocumentID == "" {
			i.Missing = append(i.Missing, "document_id")
		}
	case ActionListDocuments, ActionListClients:
		// Filters are optional; lists are always complete.
	default:
		i.Action = ActionUnknown
	}

	i.Complete = i.Action != ActionUnknown && len(i.Missing) == 0
}

// NormalizeStatus maps user wording onto the document's status vocabulary.
// Invoices have no "accepted" state, only "paid", so an accepted invoice is
// remapped before anything is persisted.
func NormalizeStatus(docType, status string) string {
	s := strings.ToLower(strings.TrimSpace(status))
	switch s {
	case "pagada", "pagado":
		s = StatusPaid
	case "aceptada", "aceptado":
		s = StatusAccepted
	case "rechazada", "rechazado":
		s = StatusRejected
	case "enviada", "enviado":
		s = StatusSent
	case "vencida", "vencido":
		s = StatusOverdue
	}
	if docType == DocTypeInvoice && s == StatusAccepted {
		return StatusPaid
	}
	return s
}
