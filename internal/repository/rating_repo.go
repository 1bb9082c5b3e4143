package repository

import (
	"context"

	"gorm.io/gorm"

	"montafacil/internal/domain"
)

type RatingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create relies on the unique (service, from, to) index as the last line of
// defense against concurrent duplicate submissions; a constraint hit comes
// back as ErrDuplicate, a recoverable conflict.
func (r *RatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	err := r.db.WithContext(ctx).Create(rating).Error
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *RatingRepository) Exists(ctx context.Context, serviceID, fromUserID, toUserID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Rating{}).
		Where("service_id = ? AND from_user_id = ? AND to_user_id = ?", serviceID, fromUserID, toUserID).
		Count(&count).Error
	return count > 0, err
}

func (r *RatingRepository) ListByService(ctx context.Context, serviceID int64) ([]domain.Rating, error) {
	var ratings []domain.Rating
	err := r.db.WithContext(ctx).
		Preload("FromUser").
		Where("service_id = ?", serviceID).
		Order("created_at ASC").
		Find(&ratings).Error
	return ratings, err
}

// MeanForUser recomputes the received-rating mean used for the assembler's
// cached score.
func (r *RatingRepository) MeanForUser(ctx context.Context, toUserID int64) (float64, int, error) {
	var result struct {
		Mean  float64
		Count int
	}
	err := r.db.WithContext(ctx).
		Model(&domain.Rating{}).
		Select("COALESCE(AVG(score), 0) AS mean, COUNT(*) AS count").
		Where("to_user_id = ?", toUserID).
		Scan(&result).Error
	return result.Mean, result.Count, err
}
