package mapper

import (
	"time"

	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}

	var updatedAt *time.Time
	if !d.UpdatedAt.IsZero() {
		t := d.UpdatedAt
		updatedAt = &t
	}

	items := make([]entity.DocumentItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, entity.DocumentItem{
			Id:          it.Id,
			DocumentId:  it.DocumentId,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
			Position:    it.Position,
		})
	}

	return &entity.Document{
		Id:        d.Id,
		TenantId:  d.TenantId,
		ClientId:  d.ClientId,
		Number:    d.Number,
		Type:      d.Type,
		Title:     d.Title,
		Status:    d.Status,
		Currency:  d.Currency,
		TaxRate:   d.TaxRate,
		Subtotal:  d.Subtotal,
		TaxAmount: d.TaxAmount,
		Total:     d.Total,
		Items:     items,
		IssuedAt:  d.IssuedAt,
		CreatedAt: d.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}

	items := make([]model.DocumentItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, model.DocumentItem{
			Id:          it.Id,
			DocumentId:  it.DocumentId,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Amount:      it.Amount,
			Position:    it.Position,
		})
	}

	return &model.Document{
		Id:        d.Id,
		TenantId:  d.TenantId,
		ClientId:  d.ClientId,
		Number:    d.Number,
		Type:      d.Type,
		Title:     d.Title,
		Status:    d.Status,
		Currency:  d.Currency,
		TaxRate:   d.TaxRate,
		Subtotal:  d.Subtotal,
		TaxAmount: d.TaxAmount,
		Total:     d.Total,
		Items:     items,
		IssuedAt:  d.IssuedAt,
	}
}

func (m *DocumentMapper) ToEntities(models []*model.Document) []*entity.Document {
	entities := make([]*entity.Document, 0, len(models))
	for _, d := range models {
		entities = append(entities, m.ToEntity(d))
	}
	return entities
}
