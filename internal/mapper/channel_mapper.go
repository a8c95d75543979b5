package mapper

import (
	"encoding/json"

	"ai-invoicing-be/internal/entity"
	"ai-invoicing-be/internal/model"

	"gorm.io/datatypes"
)

type ChannelMapper struct{}

func NewChannelMapper() *ChannelMapper {
	return &ChannelMapper{}
}

func (m *ChannelMapper) LinkToEntity(l *model.ChannelLink) *entity.ChannelLink {
	if l == nil {
		return nil
	}
	return &entity.ChannelLink{
		Id:             l.Id,
		Channel:        l.Channel,
		ExternalUserId: l.ExternalUserId,
		UserId:         l.UserId,
		TenantId:       l.TenantId,
		CreatedAt:      l.CreatedAt,
	}
}

func (m *ChannelMapper) LinkToModel(l *entity.ChannelLink) *model.ChannelLink {
	if l == nil {
		return nil
	}
	return &model.ChannelLink{
		Id:             l.Id,
		Channel:        l.Channel,
		ExternalUserId: l.ExternalUserId,
		UserId:         l.UserId,
		TenantId:       l.TenantId,
	}
}

func (m *ChannelMapper) MessageToEntity(msg *model.InboundMessage) *entity.InboundMessage {
	if msg == nil {
		return nil
	}
	return &entity.InboundMessage{
		Id:             msg.Id,
		Channel:        msg.Channel,
		ConversationId: msg.ConversationId,
		ExternalUserId: msg.ExternalUserId,
		Text:           msg.Text,
		Payload:        json.RawMessage(msg.Payload),
		Status:         msg.Status,
		Attempts:       msg.Attempts,
		LastError:      msg.LastError,
		CreatedAt:      msg.CreatedAt,
		ProcessedAt:    msg.ProcessedAt,
	}
}

func (m *ChannelMapper) MessageToModel(msg *entity.InboundMessage) *model.InboundMessage {
	if msg == nil {
		return nil
	}
	return &model.InboundMessage{
		Id:             msg.Id,
		Channel:        msg.Channel,
		ConversationId: msg.ConversationId,
		ExternalUserId: msg.ExternalUserId,
		Text:           msg.Text,
		Payload:        datatypes.JSON(msg.Payload),
		Status:         msg.Status,
		Attempts:       msg.Attempts,
		LastError:      msg.LastError,
		ProcessedAt:    msg.ProcessedAt,
	}
}

func (m *ChannelMapper) MessagesToEntities(models []*model.InboundMessage) []*entity.InboundMessage {
	entities := make([]*entity.InboundMessage, 0, len(models))
	for _, msg := range models {
		entities = append(entities, m.MessageToEntity(msg))
	}
	return entities
}
