package service

import (
	"context"
	"fmt"
	"strings"

	"ai-invoicing-be/internal/dto"
	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/pkg/logger"
	"ai-invoicing-be/internal/repository/specification"
	"ai-invoicing-be/internal/repository/unitofwork"
	"ai-invoicing-be/pkg/conversation"
	"ai-invoicing-be/pkg/dispatch"
	"ai-invoicing-be/pkg/intent"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

type IAssistantService interface {
	HandleMessage(ctx context.Context, tenantID, userID uuid.UUID, channel, conversationID, text string) (*dto.ChatResponse, error)
}

type assistantService struct {
	parser      *intent.Parser
	engine      *conversation.Engine
	sessions    conversation.Store
	locker      conversation.Locker
	dispatcher  *dispatch.Dispatcher
	repoFactory unitofwork.RepositoryFactory
	logger      logger.ILogger
}

func NewAssistantService(
	parser *intent.Parser,
	sessions conversation.Store,
	locker conversation.Locker,
	dispatcher *dispatch.Dispatcher,
	repoFactory unitofwork.RepositoryFactory,
	log logger.ILogger,
) IAssistantService {
	return &assistantService{
		parser:      parser,
		engine:      conversation.NewEngine(),
		sessions:    sessions,
		locker:      locker,
		dispatcher:  dispatcher,
		repoFactory: repoFactory,
		logger:      log,
	}
}

func (s *assistantService) HandleMessage(ctx context.Context, tenantID, userID uuid.UUID, channel, conversationID, text string) (*dto.ChatResponse, error) {
	key := conversation.SessionKey(channel, conversationID)

	// Turns of one conversation run strictly one at a time, across every
	// instance sharing the session store.
	release, err := s.locker.Acquire(ctx, key)
	if err != nil {
		return nil, err
	}
	defer release()

	sess, err := s.sessions.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		sess = conversation.NewSession(channel, conversationID, tenantID, userID)
	}

	tenantCtx, clientRefs, err := s.loadTenantContext(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	out := s.runTurn(ctx, sess, text, tenantCtx, clientRefs)

	reply := out.Reply
	docNumber := ""
	if out.Dispatch != nil {
		result, dispatchErr := s.dispatcher.Dispatch(ctx, out.Dispatch, tenantID, userID)
		if dispatchErr != nil {
			// The draft survives a failed dispatch so the user can retry or
			// cancel; only success clears it.
			s.logger.Warn("assistant", "dispatch failed", map[string]interface{}{
				"session": key,
				"action":  out.Dispatch.Action,
				"error":   dispatchErr.Error(),
			})
			reply = renderDispatchError(dispatchErr)
		} else {
			sess.Reset()
			reply = renderResult(result)
			if result.Document != nil {
				docNumber = result.Document.Number
			}
		}
	}

	sess.LastInput = text
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	return &dto.ChatResponse{
		Reply:          reply,
		ConversationId: conversationID,
		State:          sess.State,
		DocumentNumber: docNumber,
	}, nil
}

// runTurn routes a message to the state machine. Idle sessions get a full
// parse; mid-flow messages are slot answers, except an unmistakable creation
// command, which must hit the resume-or-cancel guard instead of being
// swallowed as a title or item line.
func (s *assistantService) runTurn(ctx context.Context, sess *conversation.Session, text string, tenantCtx intent.TenantContext, clientRefs []intent.ClientRef) conversation.Outcome {
	if sess.State == conversation.StateIdle {
		in := s.parser.Parse(ctx, text, tenantCtx)
		return s.engine.HandleIntent(sess, in, clientRefs)
	}

	if !conversation.IsCancel(text) && hasCreationVerb(text) {
		if probe := intent.FallbackParse(text, tenantCtx); probe.Action == intent.ActionCreateDocument {
			return s.engine.HandleIntent(sess, probe, clientRefs)
		}
	}
	return s.engine.HandleTurn(sess, text, clientRefs)
}

// hasCreationVerb gates the mid-flow probe: only an explicit command may
// interrupt slot-filling, a line item that merely mentions "factura" may not.
func hasCreationVerb(text string) bool {
	lower := strings.ToLower(text)
	for _, verb := range []string{"crea", "crear", "create", "genera", "generar", "hazme"} {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

// loadTenantContext fetches what the parser may know about the tenant: the
// client list for name resolution and a few recent documents for deictic
// references ("la última").
func (s *assistantService) loadTenantContext(ctx context.Context, tenantID uuid.UUID) (intent.TenantContext, []intent.ClientRef, error) {
	uow := s.repoFactory.NewUnitOfWork(ctx)

	clients, err := uow.ClientRepository().FindAll(ctx,
		specification.TenantOwnedBy{TenantID: tenantID},
		specification.OrderBy{Field: "name"},
		specification.Limit{N: 100},
	)
	if err != nil {
		return intent.TenantContext{}, nil, err
	}

	docs, err := uow.DocumentRepository().FindAll(ctx,
		specification.TenantOwnedBy{TenantID: tenantID},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Limit{N: 5},
	)
	if err != nil {
		return intent.TenantContext{}, nil, err
	}

	clientRefs := lo.Map(clients, func(c *entity.Client, _ int) intent.ClientRef {
		return intent.ClientRef{ID: c.Id, Name: c.Name, Email: c.Email}
	})
	docRefs := lo.Map(docs, func(d *entity.Document, _ int) intent.DocumentRef {
		return intent.DocumentRef{ID: d.Id, Number: d.Number, Type: d.Type, Status: d.Status, Title: d.Title}
	})

	return intent.TenantContext{Clients: clientRefs, RecentDocuments: docRefs}, clientRefs, nil
}

var statusLabels = map[string]string{
	intent.StatusDraft:    "borrador",
	intent.StatusSent:     "enviada",
	intent.StatusAccepted: "aceptada",
	intent.StatusRejected: "rechazada",
	intent.StatusPaid:     "pagada",
	intent.StatusOverdue:  "vencida",
}

func docLabel(docType string) string {
	if docType == intent.DocTypeInvoice {
		return "factura"
	}
	return "cotización"
}

func renderResult(res *dispatch.Result) string {
	switch res.Kind {
	case dispatch.KindDocumentCreated:
		d := res.Document
		reply := fmt.Sprintf("He creado la %s %s por %s %s.", docLabel(d.Type), d.Number, d.Total.StringFixed(2), d.Currency)
		if res.NewClient {
			reply += " También he dado de alta al cliente."
		}
		return reply

	case dispatch.KindStatusUpdated:
		d := res.Document
		return fmt.Sprintf("La %s %s ahora está %s.", docLabel(d.Type), d.Number, statusLabels[d.Status])

	case dispatch.KindDocumentSent:
		d := res.Document
		return fmt.Sprintf("He enviado la %s %s por correo.", docLabel(d.Type), d.Number)

	case dispatch.KindDocumentsListed:
		if len(res.Documents) == 0 {
			return "No he encontrado documentos con esos criterios."
		}
		var b strings.Builder
		b.WriteString("Esto es lo que tengo:\n")
		for _, d := range res.Documents {
			fmt.Fprintf(&b, "• %s · %s · %s %s · %s\n", d.Number, d.Title, d.Total.StringFixed(2), d.Currency, statusLabels[d.Status])
		}
		return strings.TrimRight(b.String(), "\n")

	case dispatch.KindClientAmbiguous:
		var b strings.Builder
		b.WriteString("¿A qué cliente te refieres? He encontrado varios:\n")
		for i, c := range res.Clients {
			fmt.Fprintf(&b, "%d. %s\n", i+1, c.Name)
		}
		b.WriteString("Repite la consulta con el nombre completo.")
		return b.String()

	case dispatch.KindClientsListed:
		if len(res.Clients) == 0 {
			return "Todavía no tienes clientes registrados."
		}
		var b strings.Builder
		b.WriteString("Tus clientes:\n")
		for _, c := range res.Clients {
			if c.Email != "" {
				fmt.Fprintf(&b, "• %s (%s)\n", c.Name, c.Email)
			} else {
				fmt.Fprintf(&b, "• %s\n", c.Name)
			}
		}
		return strings.TrimRight(b.String(), "\n")

	default:
		return "Hecho."
	}
}

func renderDispatchError(err error) string {
	return fmt.Sprintf("No he podido completar la operación: %s. Puedes intentarlo de nuevo o escribir \"cancela\".", err.Error())
}
