package contract

import (
	"context"

	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/repository/specification"
)

type ScheduleRepository interface {
	Create(ctx context.Context, schedule *entity.RecurringSchedule) error
	Update(ctx context.Context, schedule *entity.RecurringSchedule) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RecurringSchedule, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RecurringSchedule, error)
}
