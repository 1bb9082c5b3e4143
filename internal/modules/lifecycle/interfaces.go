package lifecycle

import (
	"context"

	"montafacil/internal/domain"
)

// ServiceRepository defines the service-posting persistence contract.
type ServiceRepository interface {
	Create(ctx context.Context, s *domain.Service) error
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	ListOpen(ctx context.Context, specialties []string) ([]domain.Service, error)
	ListByStore(ctx context.Context, storeID int64) ([]domain.Service, error)
	SetPaymentReady(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
}

// ApplicationRepository defines the application persistence contract,
// including the atomic accept-one-reject-siblings primitive.
type ApplicationRepository interface {
	Create(ctx context.Context, a *domain.Application) error
	GetByID(ctx context.Context, id int64) (*domain.Application, error)
	GetByServiceAndAssembler(ctx context.Context, serviceID, assemblerID int64) (*domain.Application, error)
	GetAccepted(ctx context.Context, serviceID int64) (*domain.Application, error)
	ListByService(ctx context.Context, serviceID int64) ([]domain.Application, error)
	ListByAssembler(ctx context.Context, assemblerID int64) ([]domain.Application, error)
	AcceptAndRejectSiblings(ctx context.Context, applicationID, serviceID int64) error
}

type StoreReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Store, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Store, error)
}

type AssemblerReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Assembler, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Assembler, error)
}

type UserReader interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
}

type MessageWriter interface {
	Create(ctx context.Context, m *domain.Message) error
}

// NotificationSender is the injected bus; every call is best-effort and
// must never fail the lifecycle operation that triggered it.
type NotificationSender interface {
	NotifyNewApplication(ctx context.Context, storeUserID, serviceID, applicationID int64, assemblerName string) error
	NotifyApplicationAccepted(ctx context.Context, assemblerUserID, serviceID int64, serviceTitle string) error
	NotifyServiceConfirmed(ctx context.Context, storeUserID, serviceID int64) error
	NotifyServiceCompleted(ctx context.Context, userID, serviceID int64) error
}
