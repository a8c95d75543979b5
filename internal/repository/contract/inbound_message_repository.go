package contract

import (
	"context"

	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/repository/specification"
)

type InboundMessageRepository interface {
	Create(ctx context.Context, message *entity.InboundMessage) error
	Update(ctx context.Context, message *entity.InboundMessage) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.InboundMessage, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.InboundMessage, error)
}
