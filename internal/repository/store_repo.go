package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"montafacil/internal/domain"
)

type StoreRepository struct {
	db *gorm.DB
}

func NewStoreRepository(db *gorm.DB) *StoreRepository {
	return &StoreRepository{db: db}
}

func (r *StoreRepository) Create(ctx context.Context, s *domain.Store) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *StoreRepository) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	var s domain.Store
	err := r.db.WithContext(ctx).First(&s, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *StoreRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Store, error) {
	var s domain.Store
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}
