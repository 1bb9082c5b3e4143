package rating

import (
	"context"

	"montafacil/internal/domain"
)

type RatingRepository interface {
	Create(ctx context.Context, rating *domain.Rating) error
	Exists(ctx context.Context, serviceID, fromUserID, toUserID int64) (bool, error)
	ListByService(ctx context.Context, serviceID int64) ([]domain.Rating, error)
	MeanForUser(ctx context.Context, toUserID int64) (float64, int, error)
}

type ServiceRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Service, error)
	SetRatingCompleted(ctx context.Context, id int64, byStore bool) (*domain.Service, error)
}

type StoreReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Store, error)
}

type AssemblerReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Assembler, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Assembler, error)
	UpdateCachedRating(ctx context.Context, assemblerID int64, mean float64, count int) error
}

type ApplicationReader interface {
	GetAccepted(ctx context.Context, serviceID int64) (*domain.Application, error)
}

type NotificationSender interface {
	NotifyRatingReceived(ctx context.Context, rateeUserID, serviceID int64, score int) error
}
