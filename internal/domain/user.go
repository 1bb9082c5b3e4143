package domain

import "time"

type UserRole string

const (
	RoleStoreOwner UserRole = "store-owner"
	RoleAssembler  UserRole = "assembler"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email" gorm:"uniqueIndex" validate:"required,email"`
	PasswordHash string    `json:"-"`
	Role         UserRole  `json:"role"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Store is the retail-side profile. Exactly one per store-owner user,
// created at registration and never re-created.
type Store struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id" gorm:"uniqueIndex"`
	Name         string    `json:"name" validate:"required"`
	DocumentType string    `json:"document_type"` // cpf or cnpj
	Document     string    `json:"document"`
	Address      string    `json:"address,omitempty"`
	City         string    `json:"city,omitempty"`
	State        string    `json:"state,omitempty"`
	PostalCode   string    `json:"postal_code,omitempty"`
	Specialties  []string  `json:"specialties,omitempty" gorm:"serializer:json"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// Assembler is the contractor-side profile. The cached Rating is the
// denormalized mean of received ratings, refreshed after each new one.
type Assembler struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id" gorm:"uniqueIndex"`
	Document       string    `json:"document"`
	Address        string    `json:"address,omitempty"`
	City           string    `json:"city,omitempty"`
	State          string    `json:"state,omitempty"`
	PostalCode     string    `json:"postal_code,omitempty"`
	Specialties    []string  `json:"specialties,omitempty" gorm:"serializer:json"`
	ServiceRadius  float64   `json:"service_radius_km,omitempty"`
	DocumentURLs   []string  `json:"document_urls,omitempty" gorm:"serializer:json"`
	Rating         float64   `json:"rating"`
	RatingCount    int       `json:"rating_count"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// BankAccount holds settlement details used to resolve the payer identity
// for PIX charge creation. Not part of the lifecycle state machine.
type BankAccount struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id" gorm:"uniqueIndex"`
	BankName      string    `json:"bank_name"`
	Agency        string    `json:"agency,omitempty"`
	AccountNumber string    `json:"account_number,omitempty"`
	DocumentType  string    `json:"document_type,omitempty"`
	Document      string    `json:"document,omitempty"`
	PixKey        string    `json:"pix_key,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
