package payment

import (
	"context"

	"montafacil/internal/domain"
)

type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	SetPaymentPending(ctx context.Context, id int64, reference string) error
	SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error
	MarkPaidAndComplete(ctx context.Context, id int64, receipts []domain.Message) (bool, error)
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
	GetAccepted(ctx context.Context, serviceID int64) (*domain.Application, error)
}

type BankAccountReader interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.BankAccount, error)
}

type MessageWriter interface {
	Create(ctx context.Context, m *domain.Message) error
}

type NotificationSender interface {
	NotifyPaymentConfirmed(ctx context.Context, userID, serviceID int64, reference string) error
	NotifyPaymentProof(ctx context.Context, userID, serviceID int64) error
}
