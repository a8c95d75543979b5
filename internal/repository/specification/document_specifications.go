package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByNumber matches a document's human-facing sequence id (e.g. INV-0042).
type ByNumber struct {
	Number string
}

func (s ByNumber) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("number = ?", s.Number)
}

// ByType filters by document type ("quote" / "invoice").
type ByType struct {
	Type string
}

func (s ByType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type = ?", s.Type)
}

// ByStatus filters by lifecycle status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ForClient filters documents belonging to one client.
type ForClient struct {
	ClientID uuid.UUID
}

func (s ForClient) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("client_id = ?", s.ClientID)
}
