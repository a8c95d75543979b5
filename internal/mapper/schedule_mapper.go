package mapper

import (
	"encoding/json"
	"time"

	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/model"

	"gorm.io/datatypes"
)

type ScheduleMapper struct{}

func NewScheduleMapper() *ScheduleMapper {
	return &ScheduleMapper{}
}

func (m *ScheduleMapper) ToEntity(s *model.RecurringSchedule) *entity.RecurringSchedule {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	var items []entity.ScheduleItem
	if len(s.Items) > 0 {
		// Items were written by ToModel; a decode failure leaves them empty.
		_ = json.Unmarshal(s.Items, &items)
	}

	return &entity.RecurringSchedule{
		Id:           s.Id,
		TenantId:     s.TenantId,
		ClientId:     s.ClientId,
		DocumentType: s.DocumentType,
		Title:        s.Title,
		Items:        items,
		Currency:     s.Currency,
		TaxRate:      s.TaxRate,
		Frequency:    s.Frequency,
		Interval:     s.Interval,
		AnchorDay:    s.AnchorDay,
		NextRun:      s.NextRun,
		LastRun:      s.LastRun,
		EndDate:      s.EndDate,
		Active:       s.Active,
		SendEmail:    s.SendEmail,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *ScheduleMapper) ToModel(s *entity.RecurringSchedule) *model.RecurringSchedule {
	if s == nil {
		return nil
	}

	raw, _ := json.Marshal(s.Items)

	return &model.RecurringSchedule{
		Id:           s.Id,
		TenantId:     s.TenantId,
		ClientId:     s.ClientId,
		DocumentType: s.DocumentType,
		Title:        s.Title,
		Items:        datatypes.JSON(raw),
		Currency:     s.Currency,
		TaxRate:      s.TaxRate,
		Frequency:    s.Frequency,
		Interval:     s.Interval,
		AnchorDay:    s.AnchorDay,
		NextRun:      s.NextRun,
		LastRun:      s.LastRun,
		EndDate:      s.EndDate,
		Active:       s.Active,
		SendEmail:    s.SendEmail,
	}
}

func (m *ScheduleMapper) ToEntities(models []*model.RecurringSchedule) []*entity.RecurringSchedule {
	entities := make([]*entity.RecurringSchedule, 0, len(models))
	for _, s := range models {
		entities = append(entities, m.ToEntity(s))
	}
	return entities
}
