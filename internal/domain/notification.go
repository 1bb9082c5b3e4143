package domain

import "time"

type NotificationType string

const (
	NotifNewApplication      NotificationType = "new_application"
	NotifApplicationAccepted NotificationType = "application_accepted"
	NotifServiceConfirmed    NotificationType = "service_confirmed"
	NotifServiceCompleted    NotificationType = "service_completed"
	NotifPaymentConfirmed    NotificationType = "payment_confirmed"
	NotifPaymentProof        NotificationType = "payment_proof"
	NotifNewMessage          NotificationType = "new_message"
	NotifRatingReceived      NotificationType = "rating_received"
)

// Notification is the persisted form of a push event, so users who were
// offline when it fired can still see it.
type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"user_id" gorm:"index"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message" gorm:"type:text"`
	Data      map[string]any   `json:"data,omitempty" gorm:"serializer:json"`
	IsRead    bool             `json:"is_read"`
	CreatedAt time.Time        `json:"created_at"`
}
