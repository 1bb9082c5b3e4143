package repository

import (
	"context"

	"gorm.io/gorm"

	"montafacil/internal/domain"
)

// RegistrationRepository creates a user together with its role profile.
// Both rows go into one transaction; a profile failure leaves no orphan
// user behind.
type RegistrationRepository struct {
	db *gorm.DB
}

func NewRegistrationRepository(db *gorm.DB) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func (r *RegistrationRepository) CreateStoreOwner(ctx context.Context, u *domain.User, s *domain.Store) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUser(tx, u); err != nil {
			return err
		}
		s.UserID = u.ID
		return tx.Create(s).Error
	})
}

func (r *RegistrationRepository) CreateAssembler(ctx context.Context, u *domain.User, a *domain.Assembler) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createUser(tx, u); err != nil {
			return err
		}
		a.UserID = u.ID
		return tx.Create(a).Error
	})
}

// createUser maps the email unique index to ErrDuplicate so a racing
// registration for the same address surfaces as a duplicate, not a 500.
func createUser(tx *gorm.DB, u *domain.User) error {
	if err := tx.Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}
