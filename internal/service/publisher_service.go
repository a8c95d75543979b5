package service

import (
	"context"
	"encoding/json"

	"ai-invoicing-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// publisherService bridges the dispatcher to the in-process pub/sub bus.
type publisherService struct {
	pubSub *gochannel.GoChannel
}

func NewPublisherService(pubSub *gochannel.GoChannel) *publisherService {
	return &publisherService{pubSub: pubSub}
}

func (p *publisherService) PublishDocumentCreated(_ context.Context, evt *events.DocumentCreated) error {
	return p.publish(events.TopicDocumentCreated, evt)
}

func (p *publisherService) PublishDocumentEmail(_ context.Context, evt *events.DocumentEmailRequested) error {
	return p.publish(events.TopicDocumentEmail, evt)
}

func (p *publisherService) publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return p.pubSub.Publish(topic, message.NewMessage(watermill.NewUUID(), data))
}
