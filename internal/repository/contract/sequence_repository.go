package contract

import (
	"context"

	"github.com/google/uuid"
)

type SequenceRepository interface {
	// Increment advances the (tenant, docType) counter by one and returns the
	// new value. Safe under concurrent callers.
	Increment(ctx context.Context, tenantID uuid.UUID, docType string) (int64, error)
}
