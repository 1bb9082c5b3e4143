package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"montafacil/internal/domain"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *MessageRepository) GetByService(ctx context.Context, serviceID int64) ([]domain.Message, error) {
	var messages []domain.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("service_id = ?", serviceID).
		Order("created_at ASC").
		Find(&messages).Error
	return messages, err
}

// MarkRead inserts a read marker for every message in the service not
// authored by the reader. Re-reading is idempotent: existing markers are
// left untouched.
func (r *MessageRepository) MarkRead(ctx context.Context, serviceID, userID int64) error {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Select("id").
		Where("service_id = ? AND sender_id <> ?", serviceID, userID).
		Find(&ids).Error
	if err != nil || len(ids) == 0 {
		return err
	}

	now := time.Now().UTC()
	reads := make([]domain.MessageRead, 0, len(ids))
	for _, id := range ids {
		reads = append(reads, domain.MessageRead{MessageID: id, UserID: userID, ReadAt: now})
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&reads).Error
}

// CountUnreadForService counts messages addressed to the user that lack a
// read marker.
func (r *MessageRepository) CountUnreadForService(ctx context.Context, serviceID, userID int64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("service_id = ? AND sender_id <> ?", serviceID, userID).
		Where("NOT EXISTS (SELECT 1 FROM message_reads WHERE message_reads.message_id = messages.id AND message_reads.user_id = ?)", userID).
		Count(&count).Error
	return count, err
}

// CountTotalUnread sums unread messages over every service the user
// participates in, as store owner or as an applicant of any status.
func (r *MessageRepository) CountTotalUnread(ctx context.Context, userID int64) (int64, error) {
	storeServices := r.db.
		Model(&domain.Service{}).
		Select("services.id").
		Joins("JOIN stores ON stores.id = services.store_id").
		Where("stores.user_id = ?", userID)

	appliedServices := r.db.
		Model(&domain.Application{}).
		Select("applications.service_id").
		Joins("JOIN assemblers ON assemblers.id = applications.assembler_id").
		Where("assemblers.user_id = ?", userID)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("sender_id <> ?", userID).
		Where("service_id IN (?) OR service_id IN (?)", storeServices, appliedServices).
		Where("NOT EXISTS (SELECT 1 FROM message_reads WHERE message_reads.message_id = messages.id AND message_reads.user_id = ?)", userID).
		Count(&count).Error
	return count, err
}
