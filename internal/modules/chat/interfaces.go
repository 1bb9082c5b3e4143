package chat

import (
	"context"

	"montafacil/internal/domain"
)

type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	GetByService(ctx context.Context, serviceID int64) ([]domain.Message, error)
	MarkRead(ctx context.Context, serviceID, userID int64) error
	CountUnreadForService(ctx context.Context, serviceID, userID int64) (int64, error)
	CountTotalUnread(ctx context.Context, userID int64) (int64, error)
}

type ServiceReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
}

type StoreReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Store, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Store, error)
}

type AssemblerReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Assembler, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Assembler, error)
}

type ApplicationReader interface {
	GetByServiceAndAssembler(ctx context.Context, serviceID, assemblerID int64) (*domain.Application, error)
	GetAccepted(ctx context.Context, serviceID int64) (*domain.Application, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type NotificationSender interface {
	NotifyNewMessage(ctx context.Context, recipientID, serviceID, messageID, senderID int64, senderName, preview string) error
}
