package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type InboundMessage struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Channel        string         `gorm:"type:varchar(20);not null"`
	ConversationId string         `gorm:"type:varchar(255);not null;index"`
	ExternalUserId string         `gorm:"type:varchar(255);not null"`
	Text           string         `gorm:"type:text;not null"`
	Payload        datatypes.JSON `gorm:"type:jsonb"`
	Status         string         `gorm:"type:varchar(20);not null;default:'pending';index"`
	Attempts       int            `gorm:"not null;default:0"`
	LastError      string         `gorm:"type:text"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	ProcessedAt    *time.Time
}

func (InboundMessage) TableName() string {
	return "inbound_messages"
}
