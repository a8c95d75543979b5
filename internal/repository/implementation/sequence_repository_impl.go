package implementation

import (
	"context"

	"ai-invoicing-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Single-statement upsert: the row is created on first use and atomically
// incremented afterwards, so two concurrent requests can never read the same
// value.
const sequenceIncrementSQL = `
INSERT INTO sequences (tenant_id, doc_type, current_value, updated_at)
VALUES (?, ?, 1, NOW())
ON CONFLICT (tenant_id, doc_type)
DO UPDATE SET current_value = sequences.current_value + 1, updated_at = NOW()
RETURNING current_value`

type SequenceRepositoryImpl struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) contract.SequenceRepository {
	return &SequenceRepositoryImpl{db: db}
}

func (r *SequenceRepositoryImpl) Increment(ctx context.Context, tenantID uuid.UUID, docType string) (int64, error) {
	var value int64
	err := r.db.WithContext(ctx).Raw(sequenceIncrementSQL, tenantID, docType).Scan(&value).Error
	if err != nil {
		return 0, err
	}
	return value, nil
}
