package unitofwork

import (
	"context"

	"ai-invoicing-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ClientRepository() contract.ClientRepository
	DocumentRepository() contract.DocumentRepository
	SequenceRepository() contract.SequenceRepository
	ScheduleRepository() contract.ScheduleRepository
	ChannelLinkRepository() contract.ChannelLinkRepository
	InboundMessageRepository() contract.InboundMessageRepository
}
