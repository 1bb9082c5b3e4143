package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"montafacil/internal/domain"
)

type AssemblerRepository struct {
	db *gorm.DB
}

func NewAssemblerRepository(db *gorm.DB) *AssemblerRepository {
	return &AssemblerRepository{db: db}
}

func (r *AssemblerRepository) Create(ctx context.Context, a *domain.Assembler) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *AssemblerRepository) GetByID(ctx context.Context, id int64) (*domain.Assembler, error) {
	var a domain.Assembler
	err := r.db.WithContext(ctx).First(&a, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AssemblerRepository) GetByUserID(ctx context.Context, userID int64) (*domain.Assembler, error) {
	var a domain.Assembler
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// UpdateCachedRating refreshes the denormalized mean kept on the profile.
func (r *AssemblerRepository) UpdateCachedRating(ctx context.Context, assemblerID int64, mean float64, count int) error {
	return r.db.WithContext(ctx).
		Model(&domain.Assembler{}).
		Where("id = ?", assemblerID).
		Updates(map[string]interface{}{
			"rating":       mean,
			"rating_count": count,
		}).Error
}
