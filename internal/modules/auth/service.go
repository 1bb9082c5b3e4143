package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"montafacil/internal/domain"
	"montafacil/internal/repository"
)

type jwtService interface {
	GenerateToken(userID int64, role string) (string, error)
}

// Service handles registration, login and the payer-side bank account.
// Registration creates the user and its role profile together; a user is
// never left without a profile.
type Service struct {
	users        UserRepository
	stores       StoreRepository
	assemblers   AssemblerRepository
	bankAccounts BankAccountRepository
	registrar    Registrar
	jwt          jwtService
}

type LoginResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

// MeResult is the authenticated user plus whichever role profile exists.
type MeResult struct {
	User      *domain.User      `json:"user"`
	Store     *domain.Store     `json:"store,omitempty"`
	Assembler *domain.Assembler `json:"assembler,omitempty"`
}

func NewService(
	users UserRepository,
	stores StoreRepository,
	assemblers AssemblerRepository,
	bankAccounts BankAccountRepository,
	registrar Registrar,
	jwt jwtService,
) *Service {
	return &Service{
		users:        users,
		stores:       stores,
		assemblers:   assemblers,
		bankAccounts: bankAccounts,
		registrar:    registrar,
		jwt:          jwt,
	}
}

func (s *Service) RegisterStore(ctx context.Context, req RegisterStoreRequest) (*domain.User, error) {
	if err := s.validateEmailUnique(ctx, req.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hashedPassword,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         domain.RoleStoreOwner,
	}
	store := &domain.Store{
		Name:         req.StoreName,
		DocumentType: req.DocumentType,
		Document:     req.Document,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		PostalCode:   req.PostalCode,
		Specialties:  req.Specialties,
	}
	if err := s.registrar.CreateStoreOwner(ctx, user, store); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *Service) RegisterAssembler(ctx context.Context, req RegisterAssemblerRequest) (*domain.User, error) {
	if err := s.validateEmailUnique(ctx, req.Email); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        normalizeEmail(req.Email),
		PasswordHash: hashedPassword,
		Name:         req.Name,
		Phone:        req.Phone,
		Role:         domain.RoleAssembler,
	}
	assembler := &domain.Assembler{
		Document:      req.Document,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		PostalCode:    req.PostalCode,
		Specialties:   req.Specialties,
		ServiceRadius: req.ServiceRadius,
		DocumentURLs:  req.DocumentURLs,
	}
	if err := s.registrar.CreateAssembler(ctx, user, assembler); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{User: user, Token: token}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*MeResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user.PasswordHash = ""

	result := &MeResult{User: user}
	switch user.Role {
	case domain.RoleStoreOwner:
		if store, err := s.stores.GetByUserID(ctx, userID); err == nil {
			result.Store = store
		}
	case domain.RoleAssembler:
		if assembler, err := s.assemblers.GetByUserID(ctx, userID); err == nil {
			result.Assembler = assembler
		}
	}
	return result, nil
}

func (s *Service) UpsertBankAccount(ctx context.Context, userID int64, req BankAccountRequest) (*domain.BankAccount, error) {
	account := &domain.BankAccount{
		UserID:        userID,
		BankName:      req.BankName,
		Agency:        req.Agency,
		AccountNumber: req.AccountNumber,
		DocumentType:  req.DocumentType,
		Document:      req.Document,
		PixKey:        req.PixKey,
	}
	if err := s.bankAccounts.Upsert(ctx, account); err != nil {
		return nil, err
	}
	return s.bankAccounts.GetByUserID(ctx, userID)
}

func (s *Service) GetBankAccount(ctx context.Context, userID int64) (*domain.BankAccount, error) {
	account, err := s.bankAccounts.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoBankAccount
		}
		return nil, err
	}
	return account, nil
}

func (s *Service) validateEmailUnique(ctx context.Context, email string) error {
	_, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err == nil {
		return ErrEmailAlreadyExists
	}
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
