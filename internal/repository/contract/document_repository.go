package contract

import (
	"context"

	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/repository/specification"
)

type DocumentRepository interface {
	// Create persists the document together with its line items.
	Create(ctx context.Context, document *entity.Document) error
	Update(ctx context.Context, document *entity.Document) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
