package contract

import (
	"context"

	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/repository/specification"
)

type ChannelLinkRepository interface {
	Create(ctx context.Context, link *entity.ChannelLink) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChannelLink, error)
}
