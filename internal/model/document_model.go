package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Document struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TenantId  uuid.UUID       `gorm:"type:uuid;not null;index:idx_documents_tenant_number,unique"`
	ClientId  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Number    string          `gorm:"type:varchar(50);not null;index:idx_documents_tenant_number,unique"`
	Type      string          `gorm:"type:varchar(20);not null"`
	Title     string          `gorm:"type:text;not null"`
	Status    string          `gorm:"type:varchar(20);not null"`
	Currency  string          `gorm:"type:varchar(3);not null;default:'EUR'"`
	TaxRate   decimal.Decimal `gorm:"type:numeric(5,2);not null"`
	Subtotal  decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	TaxAmount decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Total     decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Items     []DocumentItem  `gorm:"foreignKey:DocumentId;constraint:OnDelete:CASCADE"`
	IssuedAt  time.Time       `gorm:"not null"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt  `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}

type DocumentItem struct {
	Id          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentId  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:text;not null"`
	Quantity    decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null"`
	Position    int             `gorm:"not null;default:0"`
}

func (DocumentItem) TableName() string {
	return "document_items"
}
