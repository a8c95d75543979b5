package service

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"time"

	"ai-invoicing-be/internal/dto"
	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/pkg/logger"
	"ai-invoicing-be/internal/repository/specification"
	"ai-invoicing-be/internal/repository/unitofwork"
	"ai-invoicing-be/pkg/apperrors"
	natsq "ai-invoicing-be/pkg/nats"

	"github.com/google/uuid"
)

// A message is retried a couple of times before it is parked as failed with
// its last error. Failed rows stay queryable for inspection and replay.
const maxProcessAttempts = 3

// QueuePublisher abstracts the inbound work queue for tests.
type QueuePublisher interface {
	Publish(ctx context.Context, channel string, data []byte) error
}

// QueueSubscriber abstracts queue consumption for tests.
type QueueSubscriber interface {
	Subscribe(subject, durableName string, handler natsq.MessageHandler) error
}

// BotTransport delivers the assistant's reply back to the channel.
type BotTransport interface {
	SendMessage(ctx context.Context, channel, conversationID, text string) error
}

type IWebhookService interface {
	// VerifySecret checks the shared webhook secret in constant time.
	VerifySecret(provided string) bool
	// Enqueue validates identity, persists the message and queues it. The
	// webhook endpoint stays fast: all heavy work happens in the worker.
	Enqueue(ctx context.Context, in *dto.WebhookInbound) error
	// StartWorker begins consuming the queue. Call once per process.
	StartWorker() error
}

type webhookService struct {
	secret      string
	repoFactory unitofwork.RepositoryFactory
	publisher   QueuePublisher
	subscriber  QueueSubscriber
	assistant   IAssistantService
	transport   BotTransport
	logger      logger.ILogger
}

func NewWebhookService(
	secret string,
	repoFactory unitofwork.RepositoryFactory,
	publisher QueuePublisher,
	subscriber QueueSubscriber,
	assistant IAssistantService,
	transport BotTransport,
	log logger.ILogger,
) IWebhookService {
	return &webhookService{
		secret:      secret,
		repoFactory: repoFactory,
		publisher:   publisher,
		subscriber:  subscriber,
		assistant:   assistant,
		transport:   transport,
		logger:      log,
	}
}

func (s *webhookService) VerifySecret(provided string) bool {
	if s.secret == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(provided), []byte(s.secret)) == 1
}

func (s *webhookService) Enqueue(ctx context.Context, in *dto.WebhookInbound) error {
	uow := s.repoFactory.NewUnitOfWork(ctx)

	// An unlinked sender is a clean rejection; a storage failure is not. The
	// repository contract keeps the two apart: (nil, nil) vs (nil, err).
	link, err := uow.ChannelLinkRepository().FindOne(ctx, specification.ByChannelIdentity{
		Channel:        in.Channel,
		ExternalUserID: in.ExternalUserId,
	})
	if err != nil {
		return err
	}
	if link == nil {
		// Best effort: tell the sender how to get linked before rejecting.
		if err := s.transport.SendMessage(ctx, in.Channel, in.ConversationId,
			"Tu cuenta aún no está vinculada. Entra en la aplicación web y conecta este canal desde ajustes."); err != nil {
			s.logger.Warn("webhook", "onboarding reply failed", map[string]interface{}{
				"channel": in.Channel,
				"error":   err.Error(),
			})
		}
		return apperrors.NewNotFound("channel_link", in.Channel+"/"+in.ExternalUserId)
	}

	msg := &entity.InboundMessage{
		Channel:        in.Channel,
		ConversationId: in.ConversationId,
		ExternalUserId: in.ExternalUserId,
		Text:           in.Text,
		Payload:        in.Payload,
		Status:         entity.InboundStatusPending,
	}
	if err := uow.InboundMessageRepository().Create(ctx, msg); err != nil {
		return err
	}

	queued := dto.QueuedInbound{
		MessageId:      msg.Id.String(),
		Channel:        in.Channel,
		ConversationId: in.ConversationId,
		ExternalUserId: in.ExternalUserId,
		Text:           in.Text,
		TenantId:       link.TenantId.String(),
		UserId:         link.UserId.String(),
	}
	data, err := json.Marshal(queued)
	if err != nil {
		return err
	}

	if err := s.publisher.Publish(ctx, in.Channel, data); err != nil {
		s.markFailed(ctx, msg.Id, "queue publish failed: "+err.Error())
		return apperrors.NewProvider("nats", err)
	}
	return nil
}

func (s *webhookService) StartWorker() error {
	return s.subscriber.Subscribe(natsq.InboundSubject("*"), "webhook-worker", s.process)
}

func (s *webhookService) process(ctx context.Context, data []byte) error {
	var queued dto.QueuedInbound
	if err := json.Unmarshal(data, &queued); err != nil {
		// A malformed payload never gets better; swallow it.
		s.logger.Error("webhook", "unmarshal queued message failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil
	}

	messageID, err := uuid.Parse(queued.MessageId)
	if err != nil {
		s.logger.Error("webhook", "bad message id on queued message", map[string]interface{}{
			"message_id": queued.MessageId,
		})
		return nil
	}
	tenantID, err1 := uuid.Parse(queued.TenantId)
	userID, err2 := uuid.Parse(queued.UserId)
	if err1 != nil || err2 != nil {
		s.markFailed(ctx, messageID, "corrupt identity on queued message")
		return nil
	}

	res, err := s.assistant.HandleMessage(ctx, tenantID, userID, queued.Channel, queued.ConversationId, queued.Text)
	if err != nil {
		return s.handleFailure(ctx, messageID, err)
	}

	if err := s.transport.SendMessage(ctx, queued.Channel, queued.ConversationId, res.Reply); err != nil {
		return s.handleFailure(ctx, messageID, err)
	}

	s.markProcessed(ctx, messageID)
	return nil
}

// handleFailure counts the attempt and decides between redelivery and
// parking. Returning an error NAKs the message.
func (s *webhookService) handleFailure(ctx context.Context, messageID uuid.UUID, cause error) error {
	uow := s.repoFactory.NewUnitOfWork(ctx)
	repo := uow.InboundMessageRepository()

	msg, err := repo.FindOne(ctx, specification.ByID{ID: messageID})
	if err != nil || msg == nil {
		s.logger.Error("webhook", "failed message not found for bookkeeping", map[string]interface{}{
			"message_id": messageID.String(),
		})
		return cause
	}

	msg.Attempts++
	msg.LastError = cause.Error()
	if msg.Attempts >= maxProcessAttempts {
		msg.Status = entity.InboundStatusFailed
		if err := repo.Update(ctx, msg); err != nil {
			s.logger.Error("webhook", "parking failed message failed", map[string]interface{}{
				"message_id": messageID.String(),
				"error":      err.Error(),
			})
		}
		s.logger.Warn("webhook", "message parked after repeated failures", map[string]interface{}{
			"message_id": messageID.String(),
			"attempts":   msg.Attempts,
			"last_error": msg.LastError,
		})
		return nil // ack: the dead letter lives in the database now
	}

	if err := repo.Update(ctx, msg); err != nil {
		s.logger.Error("webhook", "recording attempt failed", map[string]interface{}{
			"message_id": messageID.String(),
			"error":      err.Error(),
		})
	}
	return cause // nack: let the queue redeliver
}

func (s *webhookService) markProcessed(ctx context.Context, messageID uuid.UUID) {
	uow := s.repoFactory.NewUnitOfWork(ctx)
	repo := uow.InboundMessageRepository()

	msg, err := repo.FindOne(ctx, specification.ByID{ID: messageID})
	if err != nil || msg == nil {
		return
	}
	now := time.Now()
	msg.Status = entity.InboundStatusProcessed
	msg.ProcessedAt = &now
	if err := repo.Update(ctx, msg); err != nil {
		s.logger.Error("webhook", "marking message processed failed", map[string]interface{}{
			"message_id": messageID.String(),
			"error":      err.Error(),
		})
	}
}

func (s *webhookService) markFailed(ctx context.Context, messageID uuid.UUID, reason string) {
	uow := s.repoFactory.NewUnitOfWork(ctx)
	repo := uow.InboundMessageRepository()

	msg, err := repo.FindOne(ctx, specification.ByID{ID: messageID})
	if err != nil || msg == nil {
		return
	}
	msg.Status = entity.InboundStatusFailed
	msg.LastError = reason
	if err := repo.Update(ctx, msg); err != nil {
		s.logger.Error("webhook", "marking message failed failed", map[string]interface{}{
			"message_id": messageID.String(),
			"error":      err.Error(),
		})
	}
}
