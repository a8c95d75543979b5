package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"ai-invoicing-be/internal/dto"
	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/repository/contract"
	"ai-invoicing-be/internal/repository/specification"
	"ai-invoicing-be/internal/repository/unitofwork"
	"ai-invoicing-be/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClientRepo struct {
	clients []*entity.Client
}

func (r *fakeClientRepo) Create(_ context.Context, client *entity.Client) error {
	if client.Id == uuid.Nil {
		client.Id = uuid.New()
	}
	stored := *client
	r.clients = append(r.clients, &stored)
	return nil
}

func (r *fakeClientRepo) Update(_ context.Context, client *entity.Client) error {
	for i, c := range r.clients {
		if c.Id == client.Id {
			stored := *client
			r.clients[i] = &stored
		}
	}
	return nil
}

func (r *fakeClientRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Client, error) {
	for _, client := range r.clients {
		match := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.TenantOwnedBy:
				if client.TenantId != s.TenantID {
					match = false
				}
			case specification.ByNameExact:
				if !strings.EqualFold(client.Name, s.Name) {
					match = false
				}
			case specification.ByID:
				if client.Id != s.ID {
					match = false
				}
			}
		}
		if match {
			copied := *client
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeClientRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.Client, error) {
	return r.clients, nil
}

func (r *fakeClientRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(r.clients)), nil
}

type fakeScheduleRepo struct {
	schedules  []*entity.RecurringSchedule
	failUpdate error
}

func (r *fakeScheduleRepo) Create(_ context.Context, sched *entity.RecurringSchedule) error {
	if sched.Id == uuid.Nil {
		sched.Id = uuid.New()
	}
	stored := *sched
	r.schedules = append(r.schedules, &stored)
	return nil
}

func (r *fakeScheduleRepo) Update(_ context.Context, sched *entity.RecurringSchedule) error {
	if r.failUpdate != nil {
		return r.failUpdate
	}
	for i, s := range r.schedules {
		if s.Id == sched.Id {
			stored := *sched
			r.schedules[i] = &stored
		}
	}
	return nil
}

func (r *fakeScheduleRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.RecurringSchedule, error) {
	for _, sched := range r.schedules {
		match := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.TenantOwnedBy:
				if sched.TenantId != s.TenantID {
					match = false
				}
			case specification.ByID:
				if sched.Id != s.ID {
					match = false
				}
			}
		}
		if match {
			copied := *sched
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeScheduleRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.RecurringSchedule, error) {
	var out []*entity.RecurringSchedule
	for _, sched := range r.schedules {
		match := true
		for _, spec := range specs {
			switch s := spec.(type) {
			case specification.TenantOwnedBy:
				if sched.TenantId != s.TenantID {
					match = false
				}
			case specification.ActiveOnly:
				if !sched.Active {
					match = false
				}
			case specification.DueBefore:
				if sched.NextRun.After(s.At) {
					match = false
				}
			}
		}
		if match {
			out = append(out, sched)
		}
	}
	return out, nil
}

type scheduleFakeUoW struct {
	clients   *fakeClientRepo
	schedules *fakeScheduleRepo
}

func (u *scheduleFakeUoW) Begin(context.Context) error { return nil }
func (u *scheduleFakeUoW) Commit() error               { return nil }
func (u *scheduleFakeUoW) Rollback() error             { return nil }

func (u *scheduleFakeUoW) UserRepository() contract.UserRepository         { return nil }
func (u *scheduleFakeUoW) ClientRepository() contract.ClientRepository     { return u.clients }
func (u *scheduleFakeUoW) DocumentRepository() contract.DocumentRepository { return nil }
func (u *scheduleFakeUoW) SequenceRepository() contract.SequenceRepository { return nil }
func (u *scheduleFakeUoW) ScheduleRepository() contract.ScheduleRepository { return u.schedules }
func (u *scheduleFakeUoW) ChannelLinkRepository() contract.ChannelLinkRepository {
	return nil
}
func (u *scheduleFakeUoW) InboundMessageRepository() contract.InboundMessageRepository {
	return nil
}

type scheduleFakeFactory struct {
	uow *scheduleFakeUoW
}

func (f *scheduleFakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return f.uow }

func newScheduleHarness() (IScheduleService, *fakeClientRepo, *fakeScheduleRepo) {
	clients := &fakeClientRepo{}
	schedules := &fakeScheduleRepo{}
	svc := NewScheduleService(&scheduleFakeFactory{uow: &scheduleFakeUoW{clients: clients, schedules: schedules}})
	return svc, clients, schedules
}

func scheduleRequest() *dto.CreateScheduleRequest {
	return &dto.CreateScheduleRequest{
		ClientName:   "Acme",
		DocumentType: "invoice",
		Title:        "Mantenimiento mensual",
		Items: []dto.ScheduleItemRequest{
			{Description: "Mantenimiento", Quantity: 1, UnitPrice: 300},
		},
		Frequency: "monthly",
		StartDate: time.Date(2026, time.January, 31, 9, 0, 0, 0, time.UTC),
	}
}

func TestCreateScheduleDefaultsAndAnchor(t *testing.T) {
	svc, _, schedules := newScheduleHarness()
	tenantID := uuid.New()

	res, err := svc.Create(context.Background(), tenantID, scheduleRequest())
	require.NoError(t, err)

	require.Len(t, schedules.schedules, 1)
	sched := schedules.schedules[0]
	assert.Equal(t, "EUR", sched.Currency)
	assert.Equal(t, 21.0, sched.TaxRate)
	assert.Equal(t, 1, sched.Interval)
	assert.Equal(t, 31, sched.AnchorDay)
	assert.True(t, sched.Active)
	assert.Equal(t, sched.NextRun, res.NextRun)
}

func TestCreateScheduleReusesExistingClient(t *testing.T) {
	svc, clients, schedules := newScheduleHarness()
	tenantID := uuid.New()
	existing := &entity.Client{Id: uuid.New(), TenantId: tenantID, Name: "acme"}
	clients.clients = append(clients.clients, existing)

	_, err := svc.Create(context.Background(), tenantID, scheduleRequest())
	require.NoError(t, err)

	require.Len(t, clients.clients, 1)
	assert.Equal(t, existing.Id, schedules.schedules[0].ClientId)
}

func TestDeactivateScheduleIsTenantScoped(t *testing.T) {
	svc, _, schedules := newScheduleHarness()
	tenantID := uuid.New()
	sched := &entity.RecurringSchedule{Id: uuid.New(), TenantId: tenantID, Active: true}
	schedules.schedules = append(schedules.schedules, sched)

	err := svc.Deactivate(context.Background(), uuid.New(), sched.Id)
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, schedules.schedules[0].Active)

	require.NoError(t, svc.Deactivate(context.Background(), tenantID, sched.Id))
	assert.False(t, schedules.schedules[0].Active)
}
