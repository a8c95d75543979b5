package dto

import "time"

type DocumentItemResponse struct {
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	UnitPrice   string `json:"unit_price"`
	Amount      string `json:"amount"`
}

type DocumentResponse struct {
	Id         string                 `json:"id"`
	Number     string                 `json:"number"`
	Type       string                 `json:"type"`
	Title      string                 `json:"title"`
	Status     string                 `json:"status"`
	ClientName string                 `json:"client_name,omitempty"`
	Currency   string                 `json:"currency"`
	Subtotal   string                 `json:"subtotal"`
	TaxRate    string                 `json:"tax_rate"`
	TaxAmount  string                 `json:"tax_amount"`
	Total      string                 `json:"total"`
	Items      []DocumentItemResponse `json:"items,omitempty"`
	IssuedAt   time.Time              `json:"issued_at"`
}

type UpdateDocumentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
