package service

import (
	"context"
	"strings"

	"ai-invoicing-be/internal/dto"
	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/repository/specification"
	"ai-invoicing-be/internal/repository/unitofwork"
	"ai-invoicing-be/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IScheduleService interface {
	Create(ctx context.Context, tenantID uuid.UUID, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*dto.ScheduleResponse, error)
	Deactivate(ctx context.Context, tenantID, scheduleID uuid.UUID) error
}

type scheduleService struct {
	repoFactory unitofwork.RepositoryFactory
}

func NewScheduleService(repoFactory unitofwork.RepositoryFactory) IScheduleService {
	return &scheduleService{repoFactory: repoFactory}
}

func (s *scheduleService) Create(ctx context.Context, tenantID uuid.UUID, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	uow := s.repoFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback() }()

	clientRepo := uow.ClientRepository()
	client, err := clientRepo.FindOne(ctx,
		specification.TenantOwnedBy{TenantID: tenantID},
		specification.ByNameExact{Name: req.ClientName},
	)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &entity.Client{
			TenantId: tenantID,
			Name:     strings.TrimSpace(req.ClientName),
		}
		if err := clientRepo.Create(ctx, client); err != nil {
			return nil, err
		}
	}

	interval := req.Interval
	if interval <= 0 {
		interval = 1
	}
	currency := req.Currency
	if currency == "" {
		currency = "EUR"
	}
	taxRate := 21.0
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	sched := &entity.RecurringSchedule{
		TenantId:     tenantID,
		ClientId:     client.Id,
		DocumentType: req.DocumentType,
		Title:        req.Title,
		Items: lo.Map(req.Items, func(it dto.ScheduleItemRequest, _ int) entity.ScheduleItem {
			return entity.ScheduleItem{Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
		}),
		Currency:  currency,
		TaxRate:   taxRate,
		Frequency: req.Frequency,
		Interval:  interval,
		AnchorDay: req.StartDate.Day(),
		NextRun:   req.StartDate,
		EndDate:   req.EndDate,
		Active:    true,
		SendEmail: req.SendEmail,
	}
	if err := uow.ScheduleRepository().Create(ctx, sched); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return toScheduleResponse(sched, client.Name), nil
}

func (s *scheduleService) List(ctx context.Context, tenantID uuid.UUID) ([]*dto.ScheduleResponse, error) {
	uow := s.repoFactory.NewUnitOfWork(ctx)

	schedules, err := uow.ScheduleRepository().FindAll(ctx,
		specification.TenantOwnedBy{TenantID: tenantID},
		specification.OrderBy{Field: "next_run"},
	)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ScheduleResponse, 0, len(schedules))
	for _, sched := range schedules {
		name := ""
		if client, err := uow.ClientRepository().FindOne(ctx,
			specification.TenantOwnedBy{TenantID: tenantID},
			specification.ByID{ID: sched.ClientId},
		); err == nil && client != nil {
			name = client.Name
		}
		out = append(out, toScheduleResponse(sched, name))
	}
	return out, nil
}

func (s *scheduleService) Deactivate(ctx context.Context, tenantID, scheduleID uuid.UUID) error {
	uow := s.repoFactory.NewUnitOfWork(ctx)

	sched, err := uow.ScheduleRepository().FindOne(ctx,
		specification.TenantOwnedBy{TenantID: tenantID},
		specification.ByID{ID: scheduleID},
	)
	if err != nil {
		return err
	}
	if sched == nil {
		return apperrors.NewNotFound("schedule", scheduleID.String())
	}

	sched.Active = false
	return uow.ScheduleRepository().Update(ctx, sched)
}

func toScheduleResponse(sched *entity.RecurringSchedule, clientName string) *dto.ScheduleResponse {
	return &dto.ScheduleResponse{
		Id:           sched.Id.String(),
		ClientName:   clientName,
		DocumentType: sched.DocumentType,
		Title:        sched.Title,
		Frequency:    sched.Frequency,
		Interval:     sched.Interval,
		NextRun:      sched.NextRun,
		LastRun:      sched.LastRun,
		EndDate:      sched.EndDate,
		Active:       sched.Active,
	}
}
