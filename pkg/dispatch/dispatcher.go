package dispatch

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/pkg/logger"
	"ai-invoicing-be/internal/repository/specification"
	"ai-invoicing-be/internal/repository/unitofwork"
	"ai-invoicing-be/pkg/apperrors"
	"ai-invoicing-be/pkg/events"
	"ai-invoicing-be/pkg/intent"
	"ai-invoicing-be/pkg/sequence"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const (
	defaultCurrency = "EUR"
	defaultTaxRate  = 21.0

	numberPadWidth = 4

	defaultDocumentLimit = 10
	maxDocumentLimit     = 100
	defaultClientLimit   = 100
)

var numberPrefixes = map[string]string{
	intent.DocTypeQuote:   "QUO-",
	intent.DocTypeInvoice: "INV-",
}

var allowedStatuses = map[string][]string{
	intent.DocTypeQuote:   {intent.StatusDraft, intent.StatusSent, intent.StatusAccepted, intent.StatusRejected},
	intent.DocTypeInvoice: {intent.StatusDraft, intent.StatusSent, intent.StatusPaid, intent.StatusOverdue},
}

// EventPublisher hands committed-document events to the async pipeline
// (notifier, bot replies). Publish failures are logged, never surfaced: the
// document is already committed.
type EventPublisher interface {
	PublishDocumentCreated(ctx context.Context, evt *events.DocumentCreated) error
	PublishDocumentEmail(ctx context.Context, evt *events.DocumentEmailRequested) error
}

// Dispatcher executes validated intents against the database. It is the only
// write path: web requests, channel messages and recurring schedules all end
// up here.
type Dispatcher struct {
	repoFactory unitofwork.RepositoryFactory
	publisher   EventPublisher
	logger      logger.ILogger
}

func NewDispatcher(repoFactory unitofwork.RepositoryFactory, publisher EventPublisher, log logger.ILogger) *Dispatcher {
	return &Dispatcher{
		repoFactory: repoFactory,
		publisher:   publisher,
		logger:      log,
	}
}

// Dispatch routes one intent to its handler. The intent must have gone
// through Finalize; incomplete intents are rejected, they are the state
// machine's problem.
func (d *Dispatcher) Dispatch(ctx context.Context, in *intent.Intent, tenantID, userID uuid.UUID) (*Result, error) {
	switch in.Action {
	case intent.ActionCreateDocument:
		return d.createDocument(ctx, in, tenantID)
	case intent.ActionUpdateStatus:
		return d.updateStatus(ctx, in, tenantID)
	case intent.ActionSendDocument:
		return d.sendDocument(ctx, in, tenantID)
	case intent.ActionListDocuments:
		return d.listDocuments(ctx, in, tenantID)
	case intent.ActionListClients:
		return d.listClients(ctx, in, tenantID)
	default:
		return nil, apperrors.NewValidation("action", fmt.Sprintf("no handler for action %q", in.Action))
	}
}

// createDocument retries once on write contention (sequence or persistence
// conflict) with a fresh unit of work, then surfaces the conflict.
func (d *Dispatcher) createDocument(ctx context.Context, in *intent.Intent, tenantID uuid.UUID) (*Result, error) {
	if !in.Complete {
		return nil, apperrors.NewValidation("intent", fmt.Sprintf("missing fields: %s", strings.Join(in.Missing, ", ")))
	}

	res, err := d.createDocumentOnce(ctx, in, tenantID)
	if err == nil || !apperrors.IsConflict(err) {
		return res, err
	}
	d.logger.Warn("dispatch", "write conflict, retrying with fresh state", map[string]interface{}{
		"tenant_id": tenantID.String(),
		"error":     err.Error(),
	})
	return d.createDocumentOnce(ctx, in, tenantID)
}

func (d *Dispatcher) createDocumentOnce(ctx context.Context, in *intent.Intent, tenantID uuid.UUID) (*Result, error) {
	uow := d.repoFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback() }()

	client, created, err := d.upsertClient(ctx, uow, tenantID, in.ClientName, in.ClientEmail)
	if err != nil {
		return nil, err
	}

	gen := sequence.NewGenerator(uow.SequenceRepository())
	number, err := gen.NextID(ctx, tenantID, in.DocumentType, numberPrefixes[in.DocumentType], numberPadWidth)
	if err != nil {
		return nil, err
	}

	taxRate := decimal.NewFromFloat(defaultTaxRate)
	if in.TaxRate != nil {
		taxRate = decimal.NewFromFloat(*in.TaxRate)
	}
	currency := in.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	items := make([]entity.DocumentItem, 0, len(in.Items))
	subtotal := decimal.Zero
	for idx, li := range in.Items {
		qty := decimal.NewFromFloat(li.Quantity)
		price := decimal.NewFromFloat(li.UnitPrice)
		amount := qty.Mul(price).Round(2)
		subtotal = subtotal.Add(amount)
		items = append(items, entity.DocumentItem{
			Description: li.Description,
			Quantity:    qty,
			UnitPrice:   price,
			Amount:      amount,
			Position:    idx + 1,
		})
	}
	taxAmount := subtotal.Mul(taxRate).Div(decimal.NewFromInt(100)).Round(2)
	total := subtotal.Add(taxAmount)

	doc := &entity.Document{
		TenantId:  tenantID,
		ClientId:  client.Id,
		Number:    number,
		Type:      in.DocumentType,
		Title:     d.documentTitle(in),
		Status:    intent.StatusDraft,
		Currency:  currency,
		TaxRate:   taxRate,
		Subtotal:  subtotal,
		TaxAmount: taxAmount,
		Total:     total,
		Items:     items,
		IssuedAt:  time.Now(),
	}
	if err := uow.DocumentRepository().Create(ctx, doc); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	d.logger.Info("dispatch", "document created", map[string]interface{}{
		"tenant_id": tenantID.String(),
		"number":    doc.Number,
		"type":      doc.Type,
		"total":     doc.Total.String(),
	})
	d.publishCreated(ctx, doc, client, in.SendEmail)

	return &Result{Kind: KindDocumentCreated, Document: doc, NewClient: created}, nil
}

func (d *Dispatcher) updateStatus(ctx context.Context, in *intent.Intent, tenantID uuid.UUID) (*Result, error) {
	if !in.Complete {
		return nil, apperrors.NewValidation("intent", fmt.Sprintf("missing fields: %s", strings.Join(in.Missing, ", ")))
	}

	uow := d.repoFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback() }()

	doc, err := d.findDocument(ctx, uow, tenantID, in.DocumentID)
	if err != nil {
		return nil, err
	}

	target := intent.NormalizeStatus(doc.Type, in.TargetStatus)
	if !lo.Contains(allowedStatuses[doc.Type], target) {
		return nil, apperrors.NewValidation("target_status",
			fmt.Sprintf("%q is not a valid status for a %s", in.TargetStatus, doc.Type))
	}

	doc.Status = target
	if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	d.logger.Info("dispatch", "status updated", map[string]interface{}{
		"tenant_id": tenantID.String(),
		"number":    doc.Number,
		"status":    doc.Status,
	})
	return &Result{Kind: KindStatusUpdated, Document: doc}, nil
}

func (d *Dispatcher) sendDocument(ctx context.Context, in *intent.Intent, tenantID uuid.UUID) (*Result, error) {
	if !in.Complete {
		return nil, apperrors.NewValidation("intent", fmt.Sprintf("missing fields: %s", strings.Join(in.Missing, ", ")))
	}

	uow := d.repoFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = uow.Rollback() }()

	doc, err := d.findDocument(ctx, uow, tenantID, in.DocumentID)
	if err != nil {
		return nil, err
	}

	client, err := uow.ClientRepository().FindOne(ctx,
		specification.TenantOwnedBy{TenantID: tenantID},
		specification.ByID{ID: doc.ClientId},
	)
	if err != nil {
		return nil, err
	}
	if client == nil || strings.TrimSpace(client.Email) == "" {
		return nil, apperrors.NewValidation("client_email",
			fmt.Sprintf("client for %s has no email address on file", doc.Number))
	}

	if doc.Status == intent.StatusDraft {
		doc.Status = intent.StatusSent
		if err := uow.DocumentRepository().Update(ctx, doc); err != nil {
			return nil, err
		}
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	if d.publisher != nil {
		evt := &events.DocumentEmailRequested{
			DocumentID:  doc.Id,
			TenantID:    tenantID,
			Number:      doc.Number,
			Type:        doc.Type,
			Title:       doc.Title,
			ClientName:  client.Name,
			ClientEmail: client.Email,
			Total:       doc.Total.StringFixed(2),
			Currency:    doc.Currency,
			OccurredAt:  time.Now(),
		}
		if err := d.publisher.PublishDocumentEmail(ctx, evt); err != nil {
			d.logger.Error("dispatch", "publish email event failed", map[string]interface{}{
				"number": doc.Number,
				"error":  err.Error(),
			})
		}
	}

	return &Result{Kind: KindDocumentSent, Document: doc}, nil
}

func (d *Dispatcher) listDocuments(ctx context.Context, in *intent.Intent, tenantID uuid.UUID) (*Result, error) {
	uow := d.repoFactory.NewUnitOfWork(ctx)

	limit := in.Limit
	if limit <= 0 {
		limit = defaultDocumentLimit
	}
	if limit > maxDocumentLimit {
		limit = maxDocumentLimit
	}

	specs := []specification.Specification{
		specification.TenantOwnedBy{TenantID: tenantID},
	}
	if in.DocumentType == intent.DocTypeQuote || in.DocumentType == intent.DocTypeInvoice {
		specs = append(specs, specification.ByType{Type: in.DocumentType})
	}
	if filter := strings.TrimSpace(in.ClientFilter); filter != "" {
		clients, err := uow.ClientRepository().FindAll(ctx,
			specification.TenantOwnedBy{TenantID: tenantID},
			specification.NameLike{Fragment: filter},
		)
		if err != nil {
			return nil, err
		}
		if len(clients) == 0 {
			return &Result{Kind: KindDocumentsListed}, nil
		}
		refs := lo.Map(clients, func(c *entity.Client, _ int) intent.ClientRef {
			return intent.ClientRef{ID: c.Id, Name: c.Name, Email: c.Email}
		})
		resolved := intent.ResolveClient(filter, refs)
		if resolved.Match == nil {
			// The reference fits several clients: surface the choice instead
			// of silently narrowing the listing to all of them.
			return &Result{Kind: KindClientAmbiguous, Clients: clients}, nil
		}
		specs = append(specs, specification.ForClient{ClientID: resolved.Match.ID})
	}
	specs = append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{N: limit},
	)

	docs, err := uow.DocumentRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	return &Result{Kind: KindDocumentsListed, Documents: docs}, nil
}

func (d *Dispatcher) listClients(ctx context.Context, in *intent.Intent, tenantID uuid.UUID) (*Result, error) {
	uow := d.repoFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.TenantOwnedBy{TenantID: tenantID},
	}
	if filter := strings.TrimSpace(in.ClientFilter); filter != "" {
		specs = append(specs, specification.NameLike{Fragment: filter})
	}
	specs = append(specs,
		specification.OrderBy{Field: "name"},
		specification.Limit{N: defaultClientLimit},
	)

	clients, err := uow.ClientRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	return &Result{Kind: KindClientsListed, Clients: clients}, nil
}

// upsertClient finds the tenant's client by exact name or creates it. A
// fresh email on the intent replaces whatever the record held before, so the
// next send goes to the address the user just gave.
func (d *Dispatcher) upsertClient(ctx context.Context, uow unitofwork.UnitOfWork, tenantID uuid.UUID, name, email string) (*entity.Client, bool, error) {
	repo := uow.ClientRepository()
	client, err := repo.FindOne(ctx,
		specification.TenantOwnedBy{TenantID: tenantID},
		specification.ByNameExact{Name: name},
	)
	if err != nil {
		return nil, false, err
	}
	if client != nil {
		if email != "" && !strings.EqualFold(client.Email, email) {
			client.Email = email
			if err := repo.Update(ctx, client); err != nil {
				return nil, false, err
			}
		}
		return client, false, nil
	}

	client = &entity.Client{
		TenantId: tenantID,
		Name:     strings.TrimSpace(name),
		Email:    email,
	}
	if err := repo.Create(ctx, client); err != nil {
		return nil, false, err
	}
	return client, true, nil
}

func (d *Dispatcher) findDocument(ctx context.Context, uow unitofwork.UnitOfWork, tenantID uuid.UUID, ref string) (*entity.Document, error) {
	repo := uow.DocumentRepository()
	specs := []specification.Specification{
		specification.TenantOwnedBy{TenantID: tenantID},
	}
	if isLastRef(ref) {
		specs = append(specs, specification.OrderBy{Field: "created_at", Desc: true})
	} else {
		specs = append(specs, specification.ByNumber{Number: strings.ToUpper(strings.TrimSpace(ref))})
	}

	doc, err := repo.FindOne(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.NewNotFound("document", ref)
	}
	return doc, nil
}

func (d *Dispatcher) documentTitle(in *intent.Intent) string {
	if strings.TrimSpace(in.Title) != "" {
		return in.Title
	}
	if len(in.Items) > 0 {
		return in.Items[0].Description
	}
	return ""
}

func (d *Dispatcher) publishCreated(ctx context.Context, doc *entity.Document, client *entity.Client, sendEmail bool) {
	if d.publisher == nil {
		return
	}
	evt := &events.DocumentCreated{
		DocumentID:  doc.Id,
		TenantID:    doc.TenantId,
		Number:      doc.Number,
		Type:        doc.Type,
		Title:       doc.Title,
		ClientName:  client.Name,
		ClientEmail: client.Email,
		Total:       doc.Total.StringFixed(2),
		Currency:    doc.Currency,
		SendEmail:   sendEmail,
		OccurredAt:  time.Now(),
	}
	if err := d.publisher.PublishDocumentCreated(ctx, evt); err != nil {
		d.logger.Error("dispatch", "publish created event failed", map[string]interface{}{
			"number": doc.Number,
			"error":  err.Error(),
		})
	}
}

func isLastRef(ref string) bool {
	ref = strings.ToLower(strings.TrimSpace(ref))
	return ref == "last" || ref == "última" || ref == "ultima"
}
