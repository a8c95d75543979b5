package mapper

import (
	"time"

	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/model"
)

type ClientMapper struct{}

func NewClientMapper() *ClientMapper {
	return &ClientMapper{}
}

func (m *ClientMapper) ToEntity(c *model.Client) *entity.Client {
	if c == nil {
		return nil
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Client{
		Id:        c.Id,
		TenantId:  c.TenantId,
		Name:      c.Name,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *ClientMapper) ToModel(c *entity.Client) *model.Client {
	if c == nil {
		return nil
	}
	return &model.Client{
		Id:       c.Id,
		TenantId: c.TenantId,
		Name:     c.Name,
		Email:    c.Email,
	}
}

func (m *ClientMapper) ToEntities(models []*model.Client) []*entity.Client {
	entities := make([]*entity.Client, 0, len(models))
	for _, c := range models {
		entities = append(entities, m.ToEntity(c))
	}
	return entities
}
