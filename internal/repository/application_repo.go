package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"montafacil/internal/domain"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *domain.Application) error {
	err := r.db.WithContext(ctx).Create(a).Error
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

func (r *ApplicationRepository) GetByID(ctx context.Context, id int64) (*domain.Application, error) {
	var a domain.Application
	err := r.db.WithContext(ctx).Preload("Assembler").First(&a, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// GetByServiceAndAssembler returns nil, nil when no application exists.
func (r *ApplicationRepository) GetByServiceAndAssembler(ctx context.Context, serviceID, assemblerID int64) (*domain.Application, error) {
	var a domain.Application
	err := r.db.WithContext(ctx).
		Where("service_id = ? AND assembler_id = ?", serviceID, assemblerID).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepository) ListByService(ctx context.Context, serviceID int64) ([]domain.Application, error) {
	var apps []domain.Application
	err := r.db.WithContext(ctx).
		Preload("Assembler").
		Preload("Assembler.User").
		Where("service_id = ?", serviceID).
		Order("created_at ASC").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) ListByAssembler(ctx context.Context, assemblerID int64) ([]domain.Application, error) {
	var apps []domain.Application
	err := r.db.WithContext(ctx).
		Preload("Service").
		Where("assembler_id = ?", assemblerID).
		Order("created_at DESC").
		Find(&apps).Error
	return apps, err
}

// GetAccepted returns the single accepted application for a service, or
// nil, nil when none has been accepted yet.
func (r *ApplicationRepository) GetAccepted(ctx context.Context, serviceID int64) (*domain.Application, error) {
	var a domain.Application
	err := r.db.WithContext(ctx).
		Preload("Assembler").
		Where("service_id = ? AND status = ?", serviceID, domain.ApplicationAccepted).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// AcceptAndRejectSiblings is the single serialization point of the
// lifecycle: one transaction accepts the target application, rejects every
// pending sibling and moves the service to in-progress. Each step carries
// its own precondition in the WHERE clause, so of two concurrent accepts
// exactly one succeeds and the other gets ErrConflict.
func (r *ApplicationRepository) AcceptAndRejectSiblings(ctx context.Context, applicationID, serviceID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&domain.Application{}).
			Where("id = ? AND service_id = ? AND status = ?", applicationID, serviceID, domain.ApplicationPending).
			Update("status", domain.ApplicationAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if err := tx.Model(&domain.Application{}).
			Where("service_id = ? AND id <> ? AND status = ?", serviceID, applicationID, domain.ApplicationPending).
			Update("status", domain.ApplicationRejected).Error; err != nil {
			return err
		}

		res = tx.Model(&domain.Service{}).
			Where("id = ? AND status = ?", serviceID, domain.ServiceOpen).
			Update("status", domain.ServiceInProgress)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return nil
	})
}
