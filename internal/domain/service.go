package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ServiceStatus string

const (
	ServiceOpen       ServiceStatus = "open"
	ServiceInProgress ServiceStatus = "in-progress"
	ServiceCompleted  ServiceStatus = "completed"
	ServiceCancelled  ServiceStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentNone           PaymentStatus = ""
	PaymentPending        PaymentStatus = "pending"
	PaymentProofSubmitted PaymentStatus = "proof_submitted"
	PaymentConfirmed      PaymentStatus = "confirmed"
	PaymentRejected       PaymentStatus = "rejected"
	PaymentCompleted      PaymentStatus = "completed"
)

// Service is a job posting owned by a store. Once it leaves "open" it is
// never hard-deleted, to protect conversation and payment history.
type Service struct {
	ID           int64           `json:"id"`
	StoreID      int64           `json:"store_id" validate:"required"`
	Title        string          `json:"title" validate:"required"`
	Description  string          `json:"description,omitempty" gorm:"type:text"`
	Location     string          `json:"location" validate:"required"`
	Address      string          `json:"address,omitempty"`
	City         string          `json:"city,omitempty"`
	State        string          `json:"state,omitempty"`
	PostalCode   string          `json:"postal_code,omitempty"`
	Latitude     *float64        `json:"latitude,omitempty"`
	Longitude    *float64        `json:"longitude,omitempty"`
	StartDate    time.Time       `json:"start_date" validate:"required"`
	EndDate      time.Time       `json:"end_date" validate:"required"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(12,2)"`
	MaterialType string          `json:"material_type" validate:"required"`
	ProjectFiles []string        `json:"project_files,omitempty" gorm:"serializer:json"`

	Status           ServiceStatus `json:"status"`
	PaymentStatus    PaymentStatus `json:"payment_status,omitempty"`
	PaymentReference string        `json:"payment_reference,omitempty" gorm:"index"`
	PaymentReady     bool          `json:"payment_ready"`

	RatingRequired           bool       `json:"rating_required"`
	StoreRatingCompleted     bool       `json:"store_rating_completed"`
	AssemblerRatingCompleted bool       `json:"assembler_rating_completed"`
	BothRatingsCompleted     bool       `json:"both_ratings_completed"`
	CompletedAt              *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Store *Store `json:"store,omitempty" gorm:"foreignKey:StoreID"`
}
