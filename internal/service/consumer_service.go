package service

import (
	"context"
	"encoding/json"

	"ai-invoicing-be/internal/pkg/logger"
	"ai-invoicing-be/internal/pkg/mailer"
	"ai-invoicing-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService delivers document emails off the request path. Creation
// events with send_email set and explicit send requests both end here.
type consumerService struct {
	pubSub *gochannel.GoChannel
	mailer mailer.IEmailService
	logger logger.ILogger
}

func NewConsumerService(pubSub *gochannel.GoChannel, emailService mailer.IEmailService, log logger.ILogger) IConsumerService {
	return &consumerService{
		pubSub: pubSub,
		mailer: emailService,
		logger: log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	createdMessages, err := cs.pubSub.Subscribe(ctx, events.TopicDocumentCreated)
	if err != nil {
		return err
	}
	emailMessages, err := cs.pubSub.Subscribe(ctx, events.TopicDocumentEmail)
	if err != nil {
		return err
	}

	go func() {
		for msg := range createdMessages {
			cs.processCreated(msg)
		}
	}()
	go func() {
		for msg := range emailMessages {
			cs.processEmail(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processCreated(msg *message.Message) {
	var evt events.DocumentCreated
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		cs.logger.Error("consumer", "unmarshal created event failed", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed payloads never get better
		return
	}

	if !evt.SendEmail || evt.ClientEmail == "" {
		msg.Ack()
		return
	}

	if err := cs.mailer.SendDocument(evt.ClientEmail, evt.ClientName, evt.Type, evt.Number, evt.Title, evt.Total, evt.Currency); err != nil {
		cs.logger.Error("consumer", "send created-document email failed", map[string]interface{}{
			"number": evt.Number,
			"error":  err.Error(),
		})
		msg.Nack()
		return
	}
	msg.Ack()
}

func (cs *consumerService) processEmail(msg *message.Message) {
	var evt events.DocumentEmailRequested
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		cs.logger.Error("consumer", "unmarshal email event failed", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	if err := cs.mailer.SendDocument(evt.ClientEmail, evt.ClientName, evt.Type, evt.Number, evt.Title, evt.Total, evt.Currency); err != nil {
		cs.logger.Error("consumer", "send document email failed", map[string]interface{}{
			"number": evt.Number,
			"error":  err.Error(),
		})
		msg.Nack()
		return
	}
	msg.Ack()
}
