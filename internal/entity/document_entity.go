package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Document struct {
	Id        uuid.UUID
	TenantId  uuid.UUID
	ClientId  uuid.UUID
	Number    string
	Type      string // "quote" | "invoice"
	Title     string
	Status    string
	Currency  string
	TaxRate   decimal.Decimal // percentage, e.g. 21
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
	Items     []DocumentItem
	IssuedAt  time.Time
	CreatedAt time.Time
	UpdatedAt *time.Time
}

type DocumentItem struct {
	Id          uuid.UUID
	DocumentId  uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	Position    int
}
