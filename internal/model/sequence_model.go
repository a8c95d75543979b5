package model

import (
	"time"

	"github.com/google/uuid"
)

// Sequence holds the monotonic per-tenant, per-document-type counter.
// Increments go through a single upsert so concurrent requests never
// observe the same value.
type Sequence struct {
	TenantId     uuid.UUID `gorm:"type:uuid;primaryKey"`
	DocType      string    `gorm:"type:varchar(20);primaryKey"`
	CurrentValue int64     `gorm:"not null;default:0"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Sequence) TableName() string {
	return "sequences"
}
