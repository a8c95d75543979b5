package specification

import "gorm.io/gorm"

// ByChannelIdentity matches a channel link by channel + external user id.
type ByChannelIdentity struct {
	Channel        string
	ExternalUserID string
}

func (s ByChannelIdentity) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("channel = ? AND external_user_id = ?", s.Channel, s.ExternalUserID)
}
