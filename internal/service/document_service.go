package service

import (
	"context"
	"fmt"
	"strings"

	"ai-invoicing-be/internal/dto"
	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/repository/specification"
	"ai-invoicing-be/internal/repository/unitofwork"
	"ai-invoicing-be/pkg/apperrors"
	"ai-invoicing-be/pkg/dispatch"
	"ai-invoicing-be/pkg/intent"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IDocumentService interface {
	List(ctx context.Context, tenantID uuid.UUID, docType, clientFilter string, limit int) ([]*dto.DocumentResponse, error)
	Get(ctx context.Context, tenantID uuid.UUID, number string) (*dto.DocumentResponse, error)
	UpdateStatus(ctx context.Context, tenantID, userID uuid.UUID, number, status string) (*dto.DocumentResponse, error)
	Send(ctx context.Context, tenantID, userID uuid.UUID, number string) (*dto.DocumentResponse, error)
	ListClients(ctx context.Context, tenantID uuid.UUID, filter string) ([]*dto.ClientResponse, error)
}

// documentService is the REST face of the same operations the assistant
// drives conversationally. Writes go through the dispatcher so both surfaces
// share one code path.
type documentService struct {
	repoFactory unitofwork.RepositoryFactory
	dispatcher  *dispatch.Dispatcher
}

func NewDocumentService(repoFactory unitofwork.RepositoryFactory, dispatcher *dispatch.Dispatcher) IDocumentService {
	return &documentService{
		repoFactory: repoFactory,
		dispatcher:  dispatcher,
	}
}

func (s *documentService) List(ctx context.Context, tenantID uuid.UUID, docType, clientFilter string, limit int) ([]*dto.DocumentResponse, error) {
	in := &intent.Intent{
		Action:       intent.ActionListDocuments,
		DocumentType: docType,
		ClientFilter: clientFilter,
		Limit:        limit,
	}
	in.Finalize()

	res, err := s.dispatcher.Dispatch(ctx, in, tenantID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if res.Kind == dispatch.KindClientAmbiguous {
		names := lo.Map(res.Clients, func(c *entity.Client, _ int) string { return c.Name })
		return nil, apperrors.NewValidation("client",
			fmt.Sprintf("client filter matches several clients: %s", strings.Join(names, ", ")))
	}
	return lo.Map(res.Documents, func(d *entity.Document, _ int) *dto.DocumentResponse {
		return s.toResponse(ctx, tenantID, d, false)
	}), nil
}

func (s *documentService) Get(ctx context.Context, tenantID uuid.UUID, number string) (*dto.DocumentResponse, error) {
	uow := s.repoFactory.NewUnitOfWork(ctx)

	doc, err := uow.DocumentRepository().FindOne(ctx,
		specification.TenantOwnedBy{TenantID: tenantID},
		specification.ByNumber{Number: strings.ToUpper(strings.TrimSpace(number))},
	)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, apperrors.NewNotFound("document", number)
	}
	return s.toResponse(ctx, tenantID, doc, true), nil
}

func (s *documentService) UpdateStatus(ctx context.Context, tenantID, userID uuid.UUID, number, status string) (*dto.DocumentResponse, error) {
	in := &intent.Intent{
		Action:       intent.ActionUpdateStatus,
		DocumentID:   number,
		TargetStatus: status,
	}
	in.Finalize()

	res, err := s.dispatcher.Dispatch(ctx, in, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, tenantID, res.Document, true), nil
}

func (s *documentService) Send(ctx context.Context, tenantID, userID uuid.UUID, number string) (*dto.DocumentResponse, error) {
	in := &intent.Intent{
		Action:     intent.ActionSendDocument,
		DocumentID: number,
	}
	in.Finalize()

	res, err := s.dispatcher.Dispatch(ctx, in, tenantID, userID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, tenantID, res.Document, true), nil
}

func (s *documentService) ListClients(ctx context.Context, tenantID uuid.UUID, filter string) ([]*dto.ClientResponse, error) {
	in := &intent.Intent{
		Action:       intent.ActionListClients,
		ClientFilter: filter,
	}
	in.Finalize()

	res, err := s.dispatcher.Dispatch(ctx, in, tenantID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	return lo.Map(res.Clients, func(c *entity.Client, _ int) *dto.ClientResponse {
		return &dto.ClientResponse{
			Id:        c.Id.String(),
			Name:      c.Name,
			Email:     c.Email,
			CreatedAt: c.CreatedAt,
		}
	}), nil
}

func (s *documentService) toResponse(ctx context.Context, tenantID uuid.UUID, d *entity.Document, withItems bool) *dto.DocumentResponse {
	clientName := ""
	uow := s.repoFactory.NewUnitOfWork(ctx)
	if client, err := uow.ClientRepository().FindOne(ctx,
		specification.TenantOwnedBy{TenantID: tenantID},
		specification.ByID{ID: d.ClientId},
	); err == nil && client != nil {
		clientName = client.Name
	}

	resp := &dto.DocumentResponse{
		Id:         d.Id.String(),
		Number:     d.Number,
		Type:       d.Type,
		Title:      d.Title,
		Status:     d.Status,
		ClientName: clientName,
		Currency:   d.Currency,
		Subtotal:   d.Subtotal.StringFixed(2),
		TaxRate:    d.TaxRate.StringFixed(2),
		TaxAmount:  d.TaxAmount.StringFixed(2),
		Total:      d.Total.StringFixed(2),
		IssuedAt:   d.IssuedAt,
	}
	if withItems {
		resp.Items = lo.Map(d.Items, func(it entity.DocumentItem, _ int) dto.DocumentItemResponse {
			return dto.DocumentItemResponse{
				Description: it.Description,
				Quantity:    it.Quantity.String(),
				UnitPrice:   it.UnitPrice.StringFixed(2),
				Amount:      it.Amount.StringFixed(2),
			}
		})
	}
	return resp
}
