package model

import (
	"time"

	"github.com/google/uuid"
)

type ChannelLink struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Channel        string    `gorm:"type:varchar(20);not null;index:idx_channel_links_identity,unique"`
	ExternalUserId string    `gorm:"type:varchar(255);not null;index:idx_channel_links_identity,unique"`
	UserId         uuid.UUID `gorm:"type:uuid;not null"`
	TenantId       uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (ChannelLink) TableName() string {
	return "channel_links"
}
