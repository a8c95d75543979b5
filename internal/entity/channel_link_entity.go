package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChannelLink maps a messaging-channel user (e.g. a WhatsApp phone id) to an
// internal user and tenant.
type ChannelLink struct {
	Id             uuid.UUID
	Channel        string
	ExternalUserId string
	UserId         uuid.UUID
	TenantId       uuid.UUID
	CreatedAt      time.Time
}
