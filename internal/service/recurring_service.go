package service

import (
	"context"
	"time"

	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/pkg/logger"
	"ai-invoicing-be/internal/repository/specification"
	"ai-invoicing-be/internal/repository/unitofwork"
	"ai-invoicing-be/pkg/dispatch"
	"ai-invoicing-be/pkg/intent"
	"ai-invoicing-be/pkg/schedule"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// intentDispatcher is the single write path shared with the chat channels.
type intentDispatcher interface {
	Dispatch(ctx context.Context, in *intent.Intent, tenantID, userID uuid.UUID) (*dispatch.Result, error)
}

type IRecurringService interface {
	// RunOnce creates documents for every schedule due at "now" and advances
	// each one. Returns how many documents were created.
	RunOnce(ctx context.Context, now time.Time) (int, error)
}

type recurringService struct {
	repoFactory unitofwork.RepositoryFactory
	dispatcher  intentDispatcher
	logger      logger.ILogger
}

func NewRecurringService(repoFactory unitofwork.RepositoryFactory, dispatcher intentDispatcher, log logger.ILogger) IRecurringService {
	return &recurringService{
		repoFactory: repoFactory,
		dispatcher:  dispatcher,
		logger:      log,
	}
}

func (s *recurringService) RunOnce(ctx context.Context, now time.Time) (int, error) {
	uow := s.repoFactory.NewUnitOfWork(ctx)

	due, err := uow.ScheduleRepository().FindAll(ctx,
		specification.ActiveOnly{},
		specification.DueBefore{At: now},
		specification.OrderBy{Field: "next_run"},
	)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, sched := range due {
		ok, err := s.runSchedule(ctx, uow, sched, now)
		if ok {
			created++
		}
		if err != nil {
			// One broken schedule must not starve the rest of the batch.
			s.logger.Error("recurring", "schedule run failed", map[string]interface{}{
				"schedule_id": sched.Id.String(),
				"tenant_id":   sched.TenantId.String(),
				"error":       err.Error(),
			})
		}
	}
	return created, nil
}

// runSchedule reports whether a document was created, separately from whether
// the run went clean: a creation whose bookkeeping failed is both.
func (s *recurringService) runSchedule(ctx context.Context, uow unitofwork.UnitOfWork, sched *entity.RecurringSchedule, now time.Time) (bool, error) {
	client, err := uow.ClientRepository().FindOne(ctx,
		specification.TenantOwnedBy{TenantID: sched.TenantId},
		specification.ByID{ID: sched.ClientId},
	)
	if err != nil {
		return false, err
	}
	if client == nil {
		// Client gone: stop the schedule rather than fail forever.
		sched.Active = false
		return false, uow.ScheduleRepository().Update(ctx, sched)
	}

	taxRate := sched.TaxRate
	in := &intent.Intent{
		Action:       intent.ActionCreateDocument,
		DocumentType: sched.DocumentType,
		ClientName:   client.Name,
		ClientEmail:  client.Email,
		Title:        sched.Title,
		Items: lo.Map(sched.Items, func(it entity.ScheduleItem, _ int) intent.LineItem {
			return intent.LineItem{Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
		}),
		Currency:   sched.Currency,
		TaxRate:    &taxRate,
		SendEmail:  sched.SendEmail,
		Confidence: 1.0,
	}
	in.Finalize()

	res, err := s.dispatcher.Dispatch(ctx, in, sched.TenantId, uuid.Nil)
	if err != nil {
		return false, err
	}

	next := schedule.Advance(schedule.Schedule{
		Frequency: sched.Frequency,
		Interval:  sched.Interval,
		AnchorDay: sched.AnchorDay,
		NextRun:   sched.NextRun,
	})
	runAt := now
	sched.LastRun = &runAt
	sched.NextRun = next
	if schedule.Expired(next, sched.EndDate) {
		sched.Active = false
	}
	if err := uow.ScheduleRepository().Update(ctx, sched); err != nil {
		// The document exists but NextRun did not move, so the next batch
		// will generate it again. Flag the duplicate hazard loudly.
		s.logger.Error("recurring", "advance failed after creation, next run will duplicate the document", map[string]interface{}{
			"schedule_id": sched.Id.String(),
			"document":    res.Document.Number,
			"error":       err.Error(),
		})
		return true, err
	}
	return true, nil
}
