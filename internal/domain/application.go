package domain

import "time"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "pending"
	ApplicationAccepted ApplicationStatus = "accepted"
	ApplicationRejected ApplicationStatus = "rejected"
)

// Application links one assembler to one service. For a given service at
// most one application may hold "accepted"; accepting one rejects all
// sibling pending applications in the same transaction.
type Application struct {
	ID          int64             `json:"id"`
	ServiceID   int64             `json:"service_id" gorm:"uniqueIndex:idx_application_service_assembler"`
	AssemblerID int64             `json:"assembler_id" gorm:"uniqueIndex:idx_application_service_assembler"`
	Status      ApplicationStatus `json:"status"`
	Note        string            `json:"note,omitempty" gorm:"type:text"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`

	Service   *Service   `json:"service,omitempty" gorm:"foreignKey:ServiceID"`
	Assembler *Assembler `json:"assembler,omitempty" gorm:"foreignKey:AssemblerID"`
}
