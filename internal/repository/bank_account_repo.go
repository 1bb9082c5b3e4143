package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"montafacil/internal/domain"
)

type BankAccountRepository struct {
	db *gorm.DB
}

func NewBankAccountRepository(db *gorm.DB) *BankAccountRepository {
	return &BankAccountRepository{db: db}
}

func (r *BankAccountRepository) GetByUserID(ctx context.Context, userID int64) (*domain.BankAccount, error) {
	var b domain.BankAccount
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Upsert keeps one bank account per user, replacing settlement details on
// conflict.
func (r *BankAccountRepository) Upsert(ctx context.Context, b *domain.BankAccount) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(b).Error
}
