package domain

import "time"

type MessageType string

const (
	MessageTypeText           MessageType = "text"
	MessageTypePaymentProof   MessageType = "payment_proof"
	MessageTypePaymentReceipt MessageType = "payment_receipt"
)

// Message belongs to a service conversation between the owning store's user
// and the accepted assembler's user. Append-only: messages are never
// deleted, they are the dispute/audit history.
type Message struct {
	ID            int64       `json:"id"`
	ServiceID     int64       `json:"service_id" gorm:"index"`
	SenderID      int64       `json:"sender_id"`
	Content       string      `json:"content" gorm:"type:text"`
	MessageType   MessageType `json:"message_type"`
	AttachmentURL *string     `json:"attachment_url,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`

	Sender *User `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
}

// MessageRead marks that a user has seen a message. One row per
// (message, user); inserts are idempotent.
type MessageRead struct {
	MessageID int64     `json:"message_id" gorm:"primaryKey"`
	UserID    int64     `json:"user_id" gorm:"primaryKey"`
	ReadAt    time.Time `json:"read_at"`
}
