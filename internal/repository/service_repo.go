package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"montafacil/internal/domain"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(ctx context.Context, s *domain.Service) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	var s domain.Service
	err := r.db.WithContext(ctx).Preload("Store").First(&s, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ListOpen returns open services, narrowed by material specialties when the
// caller declares any.
func (r *ServiceRepository) ListOpen(ctx context.Context, specialties []string) ([]domain.Service, error) {
	q := r.db.WithContext(ctx).
		Preload("Store").
		Where("status = ?", domain.ServiceOpen)
	if len(specialties) > 0 {
		q = q.Where("material_type IN ?", specialties)
	}

	var services []domain.Service
	err := q.Order("created_at DESC").Find(&services).Error
	return services, err
}

func (r *ServiceRepository) ListByStore(ctx context.Context, storeID int64) ([]domain.Service, error) {
	var services []domain.Service
	err := r.db.WithContext(ctx).
		Where("store_id = ?", storeID).
		Order("created_at DESC").
		Find(&services).Error
	return services, err
}

// SetPaymentReady flips the assembler-confirmed flag that unblocks charge
// creation. The lifecycle status itself is untouched.
func (r *ServiceRepository) SetPaymentReady(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Service{}).
		Where("id = ? AND status = ?", id, domain.ServiceInProgress).
		Update("payment_ready", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// SetPaymentPending persists the gateway correlation reference before the
// charge response is returned to the caller, so a webhook can be matched
// even if the HTTP response is lost.
func (r *ServiceRepository) SetPaymentPending(ctx context.Context, id int64, reference string) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Service{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"payment_status":    domain.PaymentPending,
			"payment_reference": reference,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ServiceRepository) SetPaymentStatus(ctx context.Context, id int64, status domain.PaymentStatus) error {
	res := r.db.WithContext(ctx).
		Model(&domain.Service{}).
		Where("id = ?", id).
		Update("payment_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Complete transitions in-progress -> completed and arms the mutual-rating
// requirement. The status check lives inside the same UPDATE so a losing
// concurrent request gets ErrConflict instead of clobbering state.
func (r *ServiceRepository) Complete(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&domain.Service{}).
		Where("id = ? AND status = ?", id, domain.ServiceInProgress).
		Updates(map[string]interface{}{
			"status":                     domain.ServiceCompleted,
			"completed_at":               now,
			"rating_required":            true,
			"store_rating_completed":     false,
			"assembler_rating_completed": false,
			"both_ratings_completed":     false,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}

// MarkPaidAndComplete is the webhook reconciliation primitive: one
// transaction moves the service to completed/paid and appends the two
// receipt messages. Redelivery of the same webhook is a no-op (changed ==
// false) because the payment_status guard is part of the UPDATE.
func (r *ServiceRepository) MarkPaidAndComplete(ctx context.Context, id int64, receipts []domain.Message) (bool, error) {
	changed := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		res := tx.Model(&domain.Service{}).
			Where("id = ? AND payment_status <> ?", id, domain.PaymentCompleted).
			Updates(map[string]interface{}{
				"payment_status":             domain.PaymentCompleted,
				"status":                     domain.ServiceCompleted,
				"completed_at":               now,
				"rating_required":            true,
				"store_rating_completed":     false,
				"assembler_rating_completed": false,
				"both_ratings_completed":     false,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil // already completed, keep idempotent
		}
		changed = true

		for i := range receipts {
			if err := tx.Create(&receipts[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return changed, err
}

// SetRatingCompleted records one side's rating flag and derives
// both_ratings_completed from the pair inside the same transaction, so the
// gate can never be observed true with a side still false.
func (r *ServiceRepository) SetRatingCompleted(ctx context.Context, id int64, byStore bool) (*domain.Service, error) {
	column := "assembler_rating_completed"
	if byStore {
		column = "store_rating_completed"
	}

	var s domain.Service
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Service{}).
			Where("id = ?", id).
			Update(column, true).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Service{}).
			Where("id = ? AND store_rating_completed AND assembler_rating_completed", id).
			Update("both_ratings_completed", true).Error; err != nil {
			return err
		}
		return tx.First(&s, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Delete removes an open service and everything hanging off it. Deletion of
// an in-progress or completed service is refused to protect conversation and
// payment history.
func (r *ServiceRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND status = ?", id, domain.ServiceOpen).
			Delete(&domain.Service{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if err := tx.Where("message_id IN (?)",
			tx.Session(&gorm.Session{NewDB: true}).
				Model(&domain.Message{}).
				Select("id").
				Where("service_id = ?", id),
		).Delete(&domain.MessageRead{}).Error; err != nil {
			return err
		}
		if err := tx.Where("service_id = ?", id).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("service_id = ?", id).Delete(&domain.Application{}).Error; err != nil {
			return err
		}
		return tx.Where("service_id = ?", id).Delete(&domain.Rating{}).Error
	})
}
