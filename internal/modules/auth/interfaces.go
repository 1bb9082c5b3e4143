package auth

import (
	"context"

	"montafacil/internal/domain"
)

// Registrar persists a user and its role profile atomically.
type Registrar interface {
	CreateStoreOwner(ctx context.Context, u *domain.User, s *domain.Store) error
	CreateAssembler(ctx context.Context, u *domain.User, a *domain.Assembler) error
}

type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

type StoreRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.Store, error)
}

type AssemblerRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.Assembler, error)
}

type BankAccountRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.BankAccount, error)
	Upsert(ctx context.Context, b *domain.BankAccount) error
}
