package sequence

import (
	"context"
	"fmt"

	"ai-invoicing-be/pkg/apperrors"

	"github.com/google/uuid"
)

// Counter performs the atomic increment-or-create on the (tenant, docType)
// sequence row. The database implementation uses a single
// INSERT ... ON CONFLICT ... RETURNING statement so concurrent callers always
// observe distinct values.
type Counter interface {
	Increment(ctx context.Context, tenantID uuid.UUID, docType string) (int64, error)
}

// Generator mints human-readable document IDs from a per-tenant,
// per-document-type monotonic counter.
type Generator struct {
	counter Counter
}

func NewGenerator(counter Counter) *Generator {
	return &Generator{counter: counter}
}

// NextID increments the counter and formats the value as prefix + zero-padded
// number. If the increment fails no document may be created with a guessed
// value: an un-incremented counter must never back an issued ID.
func (g *Generator) NextID(ctx context.Context, tenantID uuid.UUID, docType, prefix string, padWidth int) (string, error) {
	value, err := g.counter.Increment(ctx, tenantID, docType)
	if err != nil {
		return "", apperrors.NewConflict("sequence", fmt.Errorf("increment %s/%s: %w", tenantID, docType, err))
	}
	return Format(prefix, value, padWidth), nil
}

// Format renders a counter value as a document number.
func Format(prefix string, value int64, padWidth int) string {
	return fmt.Sprintf("%s%0*d", prefix, padWidth, value)
}
