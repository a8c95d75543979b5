package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/pkg/dispatch"
	"ai-invoicing-be/pkg/intent"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	errors []string
}

func (l *recordingLogger) Debug(string, string, map[string]interface{}) {}
func (l *recordingLogger) Info(string, string, map[string]interface{})  {}
func (l *recordingLogger) Warn(string, string, map[string]interface{})  {}
func (l *recordingLogger) Error(_ string, message string, _ map[string]interface{}) {
	l.errors = append(l.errors, message)
}
func (l *recordingLogger) Sync() error { return nil }

type fakeDispatcher struct {
	dispatched []*intent.Intent
	users      []uuid.UUID
	failFirst  bool
}

func (d *fakeDispatcher) Dispatch(_ context.Context, in *intent.Intent, _, userID uuid.UUID) (*dispatch.Result, error) {
	if d.failFirst {
		d.failFirst = false
		return nil, errors.New("dispatch exploded")
	}
	d.dispatched = append(d.dispatched, in)
	d.users = append(d.users, userID)
	return &dispatch.Result{
		Kind:     dispatch.KindDocumentCreated,
		Document: &entity.Document{Number: "INV-0042"},
	}, nil
}

type recurringHarness struct {
	svc        IRecurringService
	clients    *fakeClientRepo
	schedules  *fakeScheduleRepo
	dispatcher *fakeDispatcher
	logs       *recordingLogger
}

func newRecurringHarness() *recurringHarness {
	h := &recurringHarness{
		clients:    &fakeClientRepo{},
		schedules:  &fakeScheduleRepo{},
		dispatcher: &fakeDispatcher{},
		logs:       &recordingLogger{},
	}
	factory := &scheduleFakeFactory{uow: &scheduleFakeUoW{clients: h.clients, schedules: h.schedules}}
	h.svc = NewRecurringService(factory, h.dispatcher, h.logs)
	return h
}

func (h *recurringHarness) schedule(nextRun time.Time) *entity.RecurringSchedule {
	client := &entity.Client{Id: uuid.New(), TenantId: uuid.New(), Name: "Acme", Email: "billing@acme.example"}
	h.clients.clients = append(h.clients.clients, client)

	sched := &entity.RecurringSchedule{
		Id:           uuid.New(),
		TenantId:     client.TenantId,
		ClientId:     client.Id,
		DocumentType: "invoice",
		Title:        "Mantenimiento mensual",
		Items:        []entity.ScheduleItem{{Description: "Mantenimiento", Quantity: 1, UnitPrice: 300}},
		Currency:     "EUR",
		TaxRate:      21.0,
		Frequency:    "monthly",
		Interval:     1,
		AnchorDay:    31,
		NextRun:      nextRun,
		Active:       true,
	}
	h.schedules.schedules = append(h.schedules.schedules, sched)
	return sched
}

func TestRunOnceCreatesAndAdvancesDueSchedules(t *testing.T) {
	h := newRecurringHarness()
	sched := h.schedule(time.Date(2026, time.January, 31, 9, 0, 0, 0, time.UTC))
	now := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)

	created, err := h.svc.RunOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	require.Len(t, h.dispatcher.dispatched, 1)
	in := h.dispatcher.dispatched[0]
	assert.Equal(t, intent.ActionCreateDocument, in.Action)
	assert.Equal(t, "Acme", in.ClientName)
	// Schedule runs have no acting user.
	assert.Equal(t, uuid.Nil, h.dispatcher.users[0])

	// Day-31 anchor clamps to the end of February.
	assert.Equal(t, time.Date(2026, time.February, 28, 9, 0, 0, 0, time.UTC), sched.NextRun)
	require.NotNil(t, sched.LastRun)
	assert.Equal(t, now, *sched.LastRun)
	assert.True(t, sched.Active)
}

func TestRunOnceSkipsNotDueAndInactiveSchedules(t *testing.T) {
	h := newRecurringHarness()
	now := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	h.schedule(now.AddDate(0, 0, 7))
	inactive := h.schedule(now.AddDate(0, 0, -1))
	inactive.Active = false

	created, err := h.svc.RunOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Empty(t, h.dispatcher.dispatched)
}

func TestRunOnceDeactivatesWhenClientMissing(t *testing.T) {
	h := newRecurringHarness()
	now := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	sched := h.schedule(now.AddDate(0, 0, -1))
	sched.ClientId = uuid.New() // no such client

	created, err := h.svc.RunOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Empty(t, h.dispatcher.dispatched)
	assert.False(t, h.schedules.schedules[0].Active)
}

func TestRunOnceDeactivatesPastEndDate(t *testing.T) {
	h := newRecurringHarness()
	now := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	sched := h.schedule(now.AddDate(0, 0, -1))
	end := now.AddDate(0, 0, 7)
	sched.EndDate = &end

	created, err := h.svc.RunOnce(context.Background(), now)
	require.NoError(t, err)

	// The final document is still generated before the schedule stops.
	assert.Equal(t, 1, created)
	assert.False(t, sched.Active)
}

func TestRunOnceAdvanceFailureFlagsDuplicateHazard(t *testing.T) {
	h := newRecurringHarness()
	now := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	h.schedule(now.AddDate(0, 0, -1))
	h.schedules.failUpdate = errors.New("connection reset")

	created, err := h.svc.RunOnce(context.Background(), now)
	require.NoError(t, err)

	// The document was created even though the bookkeeping failed.
	assert.Equal(t, 1, created)
	require.Len(t, h.dispatcher.dispatched, 1)
	assert.Contains(t, strings.Join(h.logs.errors, "\n"), "duplicate")
}

func TestRunOnceOneFailingScheduleDoesNotStarveBatch(t *testing.T) {
	h := newRecurringHarness()
	now := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	h.schedule(now.AddDate(0, 0, -2))
	h.schedule(now.AddDate(0, 0, -1))
	h.dispatcher.failFirst = true

	created, err := h.svc.RunOnce(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, 1, created)
	require.Len(t, h.dispatcher.dispatched, 1)
}
