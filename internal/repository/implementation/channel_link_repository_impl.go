package implementation

import (
	"context"
	"errors"

	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/mapper"
	"ai-invoicing-be/internal/model"
	"ai-invoicing-be/internal/repository/contract"
	"ai-invoicing-be/internal/repository/specification"

	"gorm.io/gorm"
)

type ChannelLinkRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChannelMapper
}

func NewChannelLinkRepository(db *gorm.DB) contract.ChannelLinkRepository {
	return &ChannelLinkRepositoryImpl{
		db:     db,
		mapper: mapper.NewChannelMapper(),
	}
}

func (r *ChannelLinkRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChannelLinkRepositoryImpl) Create(ctx context.Context, link *entity.ChannelLink) error {
	m := r.mapper.LinkToModel(link)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*link = *r.mapper.LinkToEntity(m)
	return nil
}

func (r *ChannelLinkRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ChannelLink, error) {
	var m model.ChannelLink
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.LinkToEntity(&m), nil
}
