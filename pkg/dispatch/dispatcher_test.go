package dispatch

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/pkg/logger"
	"ai-invoicing-be/internal/repository/contract"
	"ai-invoicing-be/internal/repository/specification"
	"ai-invoicing-be/internal/repository/unitofwork"
	"ai-invoicing-be/pkg/apperrors"
	"ai-invoicing-be/pkg/events"
	"ai-invoicing-be/pkg/intent"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore backs all fake repositories of one test.
type memStore struct {
	clients     []*entity.Client
	documents   []*entity.Document
	sequences   map[string]int64
	seqFailures int
	clock       time.Time
}

func newMemStore() *memStore {
	return &memStore{
		sequences: make(map[string]int64),
		clock:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type fakeUnitOfWork struct {
	store *memStore
}

func (u *fakeUnitOfWork) Begin(context.Context) error { return nil }
func (u *fakeUnitOfWork) Commit() error               { return nil }
func (u *fakeUnitOfWork) Rollback() error             { return nil }

func (u *fakeUnitOfWork) UserRepository() contract.UserRepository { return nil }
func (u *fakeUnitOfWork) ClientRepository() contract.ClientRepository {
	return &fakeClientRepo{store: u.store}
}
func (u *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return &fakeDocumentRepo{store: u.store}
}
func (u *fakeUnitOfWork) SequenceRepository() contract.SequenceRepository {
	return &fakeSequenceRepo{store: u.store}
}
func (u *fakeUnitOfWork) ScheduleRepository() contract.ScheduleRepository           { return nil }
func (u *fakeUnitOfWork) ChannelLinkRepository() contract.ChannelLinkRepository     { return nil }
func (u *fakeUnitOfWork) InboundMessageRepository() contract.InboundMessageRepository { return nil }

type fakeFactory struct {
	store *memStore
}

func (f *fakeFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{store: f.store}
}

type fakeSequenceRepo struct {
	store *memStore
}

func (r *fakeSequenceRepo) Increment(_ context.Context, tenantID uuid.UUID, docType string) (int64, error) {
	if r.store.seqFailures > 0 {
		r.store.seqFailures--
		return 0, errors.New("could not serialize access due to concurrent update")
	}
	key := tenantID.String() + "/" + docType
	r.store.sequences[key]++
	return r.store.sequences[key], nil
}

type fakeClientRepo struct {
	store *memStore
}

func (r *fakeClientRepo) Create(_ context.Context, c *entity.Client) error {
	c.Id = uuid.New()
	c.CreatedAt = r.store.tick()
	clone := *c
	r.store.clients = append(r.store.clients, &clone)
	return nil
}

func (r *fakeClientRepo) Update(_ context.Context, c *entity.Client) error {
	for i, existing := range r.store.clients {
		if existing.Id == c.Id {
			clone := *c
			r.store.clients[i] = &clone
			return nil
		}
	}
	return nil
}

func (r *fakeClientRepo) matches(c *entity.Client, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.TenantOwnedBy:
			if c.TenantId != s.TenantID {
				return false
			}
		case specification.ByID:
			if c.Id != s.ID {
				return false
			}
		case specification.ByNameExact:
			if !strings.EqualFold(c.Name, s.Name) {
				return false
			}
		case specification.NameLike:
			if !strings.Contains(strings.ToLower(c.Name), strings.ToLower(s.Fragment)) {
				return false
			}
		}
	}
	return true
}

func (r *fakeClientRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Client, error) {
	for _, c := range r.store.clients {
		if r.matches(c, specs) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeClientRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Client, error) {
	var out []*entity.Client
	for _, c := range r.store.clients {
		if r.matches(c, specs) {
			clone := *c
			out = append(out, &clone)
		}
	}
	return applyLimit(out, specs), nil
}

func (r *fakeClientRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

type fakeDocumentRepo struct {
	store *memStore
}

func (r *fakeDocumentRepo) Create(_ context.Context, d *entity.Document) error {
	d.Id = uuid.New()
	d.CreatedAt = r.store.tick()
	for i := range d.Items {
		d.Items[i].Id = uuid.New()
		d.Items[i].DocumentId = d.Id
	}
	clone := *d
	r.store.documents = append(r.store.documents, &clone)
	return nil
}

func (r *fakeDocumentRepo) Update(_ context.Context, d *entity.Document) error {
	for i, existing := range r.store.documents {
		if existing.Id == d.Id {
			clone := *d
			clone.CreatedAt = existing.CreatedAt
			r.store.documents[i] = &clone
			return nil
		}
	}
	return nil
}

func (r *fakeDocumentRepo) matches(d *entity.Document, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.TenantOwnedBy:
			if d.TenantId != s.TenantID {
				return false
			}
		case specification.ByNumber:
			if !strings.EqualFold(d.Number, s.Number) {
				return false
			}
		case specification.ByType:
			if d.Type != s.Type {
				return false
			}
		case specification.ByStatus:
			if d.Status != s.Status {
				return false
			}
		case specification.ForClient:
			if d.ClientId != s.ClientID {
				return false
			}
		}
	}
	return true
}

func (r *fakeDocumentRepo) collect(specs []specification.Specification) []*entity.Document {
	var out []*entity.Document
	for _, d := range r.store.documents {
		if r.matches(d, specs) {
			clone := *d
			out = append(out, &clone)
		}
	}
	for _, spec := range specs {
		if s, ok := spec.(specification.OrderBy); ok && s.Field == "created_at" && s.Desc {
			sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
		}
	}
	return out
}

func (r *fakeDocumentRepo) FindOne(_ context.Context, specs ...specification.Specification) (*entity.Document, error) {
	out := r.collect(specs)
	if len(out) == 0 {
		return nil, nil
	}
	return out[0], nil
}

func (r *fakeDocumentRepo) FindAll(_ context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	return applyLimit(r.collect(specs), specs), nil
}

func (r *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func applyLimit[T any](items []T, specs []specification.Specification) []T {
	for _, spec := range specs {
		if s, ok := spec.(specification.Limit); ok && s.N > 0 && len(items) > s.N {
			return items[:s.N]
		}
	}
	return items
}

type capturingPublisher struct {
	created []*events.DocumentCreated
	emails  []*events.DocumentEmailRequested
}

func (p *capturingPublisher) PublishDocumentCreated(_ context.Context, evt *events.DocumentCreated) error {
	p.created = append(p.created, evt)
	return nil
}

func (p *capturingPublisher) PublishDocumentEmail(_ context.Context, evt *events.DocumentEmailRequested) error {
	p.emails = append(p.emails, evt)
	return nil
}

func newTestDispatcher() (*Dispatcher, *memStore, *capturingPublisher) {
	store := newMemStore()
	pub := &capturingPublisher{}
	return NewDispatcher(&fakeFactory{store: store}, pub, logger.Nop{}), store, pub
}

func creationIntent(docType, clientName string, price float64) *intent.Intent {
	in := &intent.Intent{
		Action:       intent.ActionCreateDocument,
		DocumentType: docType,
		ClientName:   clientName,
		Items:        []intent.LineItem{{Description: "hosting", Quantity: 1, UnitPrice: price}},
	}
	in.Finalize()
	return in
}

func TestCreateDocumentComputesTotalsAndNumber(t *testing.T) {
	d, store, pub := newTestDispatcher()
	tenantID := uuid.New()

	res, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeInvoice, "Acme", 500), tenantID, uuid.New())
	require.NoError(t, err)
	require.Equal(t, KindDocumentCreated, res.Kind)

	doc := res.Document
	assert.Equal(t, "INV-0001", doc.Number)
	assert.Equal(t, "500", doc.Subtotal.String())
	assert.Equal(t, "105", doc.TaxAmount.String())
	assert.Equal(t, "605.00", doc.Total.StringFixed(2))
	assert.Equal(t, "EUR", doc.Currency)
	assert.Equal(t, intent.StatusDraft, doc.Status)

	// The unknown client was created in the same dispatch.
	assert.True(t, res.NewClient)
	require.Len(t, store.clients, 1)
	assert.Equal(t, "Acme", store.clients[0].Name)

	require.Len(t, pub.created, 1)
	assert.Equal(t, "605.00", pub.created[0].Total)
}

func TestCreateDocumentSequenceAdvancesPerType(t *testing.T) {
	d, _, _ := newTestDispatcher()
	tenantID := uuid.New()

	first, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeInvoice, "Acme", 100), tenantID, uuid.New())
	require.NoError(t, err)
	second, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeInvoice, "Acme", 100), tenantID, uuid.New())
	require.NoError(t, err)
	quote, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeQuote, "Acme", 100), tenantID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", first.Document.Number)
	assert.Equal(t, "INV-0002", second.Document.Number)
	// Quotes have their own counter.
	assert.Equal(t, "QUO-0001", quote.Document.Number)
}

func TestCreateDocumentReusesClientCaseInsensitively(t *testing.T) {
	d, store, _ := newTestDispatcher()
	tenantID := uuid.New()

	_, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeInvoice, "Acme", 100), tenantID, uuid.New())
	require.NoError(t, err)

	in := creationIntent(intent.DocTypeInvoice, "acme", 200)
	in.ClientEmail = "billing@acme.example"
	res, err := d.Dispatch(context.Background(), in, tenantID, uuid.New())
	require.NoError(t, err)

	assert.False(t, res.NewClient)
	require.Len(t, store.clients, 1)
	// The email was backfilled onto the existing record.
	assert.Equal(t, "billing@acme.example", store.clients[0].Email)

	// A different email on a later creation replaces the stored one.
	in = creationIntent(intent.DocTypeInvoice, "Acme", 300)
	in.ClientEmail = "accounts@acme.example"
	_, err = d.Dispatch(context.Background(), in, tenantID, uuid.New())
	require.NoError(t, err)

	require.Len(t, store.clients, 1)
	assert.Equal(t, "accounts@acme.example", store.clients[0].Email)
}

func TestCreateDocumentRetriesOnceOnSequenceConflict(t *testing.T) {
	d, store, _ := newTestDispatcher()
	tenantID := uuid.New()
	store.seqFailures = 1

	res, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeInvoice, "Acme", 100), tenantID, uuid.New())
	require.NoError(t, err)

	assert.Equal(t, "INV-0001", res.Document.Number)
	require.Len(t, store.documents, 1)
}

func TestCreateDocumentSurfacesConflictAfterRetry(t *testing.T) {
	d, store, _ := newTestDispatcher()
	tenantID := uuid.New()
	store.seqFailures = 2

	_, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeInvoice, "Acme", 100), tenantID, uuid.New())

	assert.True(t, apperrors.IsConflict(err))
	assert.Empty(t, store.documents)
}

func TestCreateDocumentRejectsIncompleteIntent(t *testing.T) {
	d, _, _ := newTestDispatcher()

	in := &intent.Intent{Action: intent.ActionCreateDocument, DocumentType: intent.DocTypeInvoice}
	in.Finalize()

	_, err := d.Dispatch(context.Background(), in, uuid.New(), uuid.New())
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateStatusRemapsAcceptedInvoiceToPaid(t *testing.T) {
	d, store, _ := newTestDispatcher()
	tenantID := uuid.New()

	created, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeInvoice, "Acme", 100), tenantID, uuid.New())
	require.NoError(t, err)

	in := &intent.Intent{
		Action:       intent.ActionUpdateStatus,
		DocumentID:   created.Document.Number,
		TargetStatus: "aceptada",
	}
	in.Finalize()

	res, err := d.Dispatch(context.Background(), in, tenantID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, intent.StatusPaid, res.Document.Status)
	assert.Equal(t, intent.StatusPaid, store.documents[0].Status)
}

func TestUpdateStatusOtherTenantIsNotFound(t *testing.T) {
	d, _, _ := newTestDispatcher()
	tenantID := uuid.New()

	created, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeInvoice, "Acme", 100), tenantID, uuid.New())
	require.NoError(t, err)

	in := &intent.Intent{
		Action:       intent.ActionUpdateStatus,
		DocumentID:   created.Document.Number,
		TargetStatus: intent.StatusPaid,
	}
	in.Finalize()

	_, err = d.Dispatch(context.Background(), in, uuid.New(), uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateStatusRejectsInvalidStatusForType(t *testing.T) {
	d, _, _ := newTestDispatcher()
	tenantID := uuid.New()

	created, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeQuote, "Acme", 100), tenantID, uuid.New())
	require.NoError(t, err)

	// Quotes are never "paid".
	in := &intent.Intent{
		Action:       intent.ActionUpdateStatus,
		DocumentID:   created.Document.Number,
		TargetStatus: intent.StatusPaid,
	}
	in.Finalize()

	_, err = d.Dispatch(context.Background(), in, tenantID, uuid.New())
	assert.True(t, apperrors.IsValidation(err))
}

func TestLastReferenceResolvesNewestDocument(t *testing.T) {
	d, _, _ := newTestDispatcher()
	tenantID := uuid.New()

	_, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeInvoice, "Acme", 100), tenantID, uuid.New())
	require.NoError(t, err)
	_, err = d.Dispatch(context.Background(), creationIntent(intent.DocTypeInvoice, "Acme", 200), tenantID, uuid.New())
	require.NoError(t, err)

	in := &intent.Intent{
		Action:       intent.ActionUpdateStatus,
		DocumentID:   "última",
		TargetStatus: intent.StatusPaid,
	}
	in.Finalize()

	res, err := d.Dispatch(context.Background(), in, tenantID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, "INV-0002", res.Document.Number)
}

func TestSendDocumentRequiresClientEmail(t *testing.T) {
	d, _, pub := newTestDispatcher()
	tenantID := uuid.New()

	created, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeInvoice, "Acme", 100), tenantID, uuid.New())
	require.NoError(t, err)

	in := &intent.Intent{Action: intent.ActionSendDocument, DocumentID: created.Document.Number}
	in.Finalize()

	_, err = d.Dispatch(context.Background(), in, tenantID, uuid.New())
	assert.True(t, apperrors.IsValidation(err))
	assert.Empty(t, pub.emails)
}

func TestSendDocumentMarksSentAndPublishesEmail(t *testing.T) {
	d, store, pub := newTestDispatcher()
	tenantID := uuid.New()

	create := creationIntent(intent.DocTypeInvoice, "Acme", 100)
	create.ClientEmail = "billing@acme.example"
	created, err := d.Dispatch(context.Background(), create, tenantID, uuid.New())
	require.NoError(t, err)

	in := &intent.Intent{Action: intent.ActionSendDocument, DocumentID: created.Document.Number}
	in.Finalize()

	res, err := d.Dispatch(context.Background(), in, tenantID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, KindDocumentSent, res.Kind)
	assert.Equal(t, intent.StatusSent, store.documents[0].Status)
	require.Len(t, pub.emails, 1)
	assert.Equal(t, "billing@acme.example", pub.emails[0].ClientEmail)
}

func TestListDocumentsFiltersByClientAndCapsLimit(t *testing.T) {
	d, _, _ := newTestDispatcher()
	tenantID := uuid.New()

	for i := 0; i < 12; i++ {
		_, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeInvoice, "Acme", 100), tenantID, uuid.New())
		require.NoError(t, err)
	}
	_, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeInvoice, "Cranealo", 100), tenantID, uuid.New())
	require.NoError(t, err)

	in := &intent.Intent{Action: intent.ActionListDocuments}
	in.Finalize()
	res, err := d.Dispatch(context.Background(), in, tenantID, uuid.New())
	require.NoError(t, err)
	// Default page size, newest first. The newest document is Cranealo's.
	assert.Len(t, res.Documents, 10)
	assert.Equal(t, "INV-0013", res.Documents[0].Number)

	filtered := &intent.Intent{Action: intent.ActionListDocuments, ClientFilter: "Cranealo"}
	filtered.Finalize()
	res, err = d.Dispatch(context.Background(), filtered, tenantID, uuid.New())
	require.NoError(t, err)
	assert.Len(t, res.Documents, 1)
}

func TestListDocumentsAmbiguousClientFilterPresentsCandidates(t *testing.T) {
	d, _, _ := newTestDispatcher()
	tenantID := uuid.New()

	for _, name := range []string{"Cranealo S.A.", "Cranealo Studio", "Acme"} {
		_, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeInvoice, name, 100), tenantID, uuid.New())
		require.NoError(t, err)
	}

	in := &intent.Intent{Action: intent.ActionListDocuments, ClientFilter: "Cranealo"}
	in.Finalize()

	// The filter fits two clients: no documents, only the choice.
	res, err := d.Dispatch(context.Background(), in, tenantID, uuid.New())
	require.NoError(t, err)
	require.Equal(t, KindClientAmbiguous, res.Kind)
	assert.Len(t, res.Clients, 2)
	assert.Empty(t, res.Documents)

	// An exact name resolves and filters normally.
	exact := &intent.Intent{Action: intent.ActionListDocuments, ClientFilter: "cranealo studio"}
	exact.Finalize()
	res, err = d.Dispatch(context.Background(), exact, tenantID, uuid.New())
	require.NoError(t, err)
	require.Equal(t, KindDocumentsListed, res.Kind)
	assert.Len(t, res.Documents, 1)
}

func TestListClientsAppliesNameFilter(t *testing.T) {
	d, _, _ := newTestDispatcher()
	tenantID := uuid.New()

	for _, name := range []string{"Acme", "Cranealo S.A.", "Cranealo Studio"} {
		_, err := d.Dispatch(context.Background(), creationIntent(intent.DocTypeInvoice, name, 100), tenantID, uuid.New())
		require.NoError(t, err)
	}

	in := &intent.Intent{Action: intent.ActionListClients, ClientFilter: "cranealo"}
	in.Finalize()

	res, err := d.Dispatch(context.Background(), in, tenantID, uuid.New())
	require.NoError(t, err)
	require.Equal(t, KindClientsListed, res.Kind)
	assert.Len(t, res.Clients, 2)
}

func TestUnknownActionIsRejected(t *testing.T) {
	d, _, _ := newTestDispatcher()

	in := &intent.Intent{Action: "destroy_everything"}
	in.Finalize()

	_, err := d.Dispatch(context.Background(), in, uuid.New(), uuid.New())
	assert.True(t, apperrors.IsValidation(err))
}
