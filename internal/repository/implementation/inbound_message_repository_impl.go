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

type InboundMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChannelMapper
}

func NewInboundMessageRepository(db *gorm.DB) contract.InboundMessageRepository {
	return &InboundMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewChannelMapper(),
	}
}

func (r *InboundMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *InboundMessageRepositoryImpl) Create(ctx context.Context, message *entity.InboundMessage) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *InboundMessageRepositoryImpl) Update(ctx context.Context, message *entity.InboundMessage) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *InboundMessageRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.InboundMessage, error) {
	var m model.InboundMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.MessageToEntity(&m), nil
}

func (r *InboundMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.InboundMessage, error) {
	var models []*model.InboundMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.MessagesToEntities(models), nil
}
