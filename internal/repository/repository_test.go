package repository

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"montafacil/internal/database"
	"montafacil/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	require.NoError(t, err)

	// One in-memory database per connection; pin the pool to a single one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

type seeded struct {
	storeUser     domain.User
	assemblerUser domain.User
	otherUser     domain.User
	store         domain.Store
	assembler     domain.Assembler
	other         domain.Assembler
	service       domain.Service
}

func seed(t *testing.T, db *gorm.DB) *seeded {
	t.Helper()
	s := &seeded{
		storeUser:     domain.User{Email: "loja@example.com", Role: domain.RoleStoreOwner, Name: "Loja Central"},
		assemblerUser: domain.User{Email: "montador@example.com", Role: domain.RoleAssembler, Name: "João"},
		otherUser:     domain.User{Email: "outro@example.com", Role: domain.RoleAssembler, Name: "Maria"},
	}
	require.NoError(t, db.Create(&s.storeUser).Error)
	require.NoError(t, db.Create(&s.assemblerUser).Error)
	require.NoError(t, db.Create(&s.otherUser).Error)

	s.store = domain.Store{UserID: s.storeUser.ID, Name: "Loja Central"}
	require.NoError(t, db.Create(&s.store).Error)

	s.assembler = domain.Assembler{UserID: s.assemblerUser.ID}
	require.NoError(t, db.Create(&s.assembler).Error)
	s.other = domain.Assembler{UserID: s.otherUser.ID}
	require.NoError(t, db.Create(&s.other).Error)

	s.service = domain.Service{
		StoreID:      s.store.ID,
		Title:        "Montagem de guarda-roupa",
		Location:     "São Paulo - SP",
		StartDate:    time.Now().Add(24 * time.Hour),
		EndDate:      time.Now().Add(48 * time.Hour),
		Price:        decimal.RequireFromString("350.00"),
		MaterialType: "mdf",
		Status:       domain.ServiceOpen,
	}
	require.NoError(t, db.Create(&s.service).Error)
	return s
}

func TestApplicationRepository_AcceptAndRejectSiblings(t *testing.T) {
	db := newTestDB(t)
	data := seed(t, db)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	first := &domain.Application{ServiceID: data.service.ID, AssemblerID: data.assembler.ID, Status: domain.ApplicationPending}
	second := &domain.Application{ServiceID: data.service.ID, AssemblerID: data.other.ID, Status: domain.ApplicationPending}
	require.NoError(t, repo.Create(ctx, first))
	require.NoError(t, repo.Create(ctx, second))

	require.NoError(t, repo.AcceptAndRejectSiblings(ctx, first.ID, data.service.ID))

	accepted, err := repo.GetAccepted(ctx, data.service.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, accepted.ID)

	sibling, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationRejected, sibling.Status)

	var svc domain.Service
	require.NoError(t, db.First(&svc, data.service.ID).Error)
	assert.Equal(t, domain.ServiceInProgress, svc.Status)

	// The losing concurrent accept finds no pending row and no open service.
	assert.ErrorIs(t, repo.AcceptAndRejectSiblings(ctx, second.ID, data.service.ID), ErrConflict)
}

func TestApplicationRepository_DuplicateApplication(t *testing.T) {
	db := newTestDB(t)
	data := seed(t, db)
	repo := NewApplicationRepository(db)
	ctx := context.Background()

	first := &domain.Application{ServiceID: data.service.ID, AssemblerID: data.assembler.ID, Status: domain.ApplicationPending}
	require.NoError(t, repo.Create(ctx, first))

	dup := &domain.Application{ServiceID: data.service.ID, AssemblerID: data.assembler.ID, Status: domain.ApplicationPending}
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrDuplicate)

	existing, err := repo.GetByServiceAndAssembler(ctx, data.service.ID, data.assembler.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, existing.ID)
}

func TestRatingRepository_UniqueDirection(t *testing.T) {
	db := newTestDB(t)
	data := seed(t, db)
	repo := NewRatingRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Rating{
		ServiceID: data.service.ID, FromUserID: data.storeUser.ID, ToUserID: data.assemblerUser.ID, Score: 5,
	}))

	// Same direction again hits the constraint.
	assert.ErrorIs(t, repo.Create(ctx, &domain.Rating{
		ServiceID: data.service.ID, FromUserID: data.storeUser.ID, ToUserID: data.assemblerUser.ID, Score: 1,
	}), ErrDuplicate)

	// Opposite direction is a different pair and goes through.
	require.NoError(t, repo.Create(ctx, &domain.Rating{
		ServiceID: data.service.ID, FromUserID: data.assemblerUser.ID, ToUserID: data.storeUser.ID, Score: 4,
	}))

	mean, count, err := repo.MeanForUser(ctx, data.assemblerUser.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, mean)
	assert.Equal(t, 1, count)
}

func TestServiceRepository_MarkPaidAndCompleteIdempotent(t *testing.T) {
	db := newTestDB(t)
	data := seed(t, db)
	repo := NewServiceRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Model(&domain.Service{}).Where("id = ?", data.service.ID).
		Updates(map[string]interface{}{"status": domain.ServiceInProgress, "payment_status": domain.PaymentPending}).Error)

	receipts := []domain.Message{
		{ServiceID: data.service.ID, SenderID: data.storeUser.ID, Content: "Pagamento confirmado", MessageType: domain.MessageTypeText},
		{ServiceID: data.service.ID, SenderID: data.storeUser.ID, Content: "Comprovante", MessageType: domain.MessageTypePaymentReceipt},
	}

	changed, err := repo.MarkPaidAndComplete(ctx, data.service.ID, receipts)
	require.NoError(t, err)
	assert.True(t, changed)

	svc, err := repo.GetByID(ctx, data.service.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ServiceCompleted, svc.Status)
	assert.Equal(t, domain.PaymentCompleted, svc.PaymentStatus)
	assert.True(t, svc.RatingRequired)
	assert.NotNil(t, svc.CompletedAt)

	// Redelivery: no state change, no second receipt pair.
	again := []domain.Message{
		{ServiceID: data.service.ID, SenderID: data.storeUser.ID, Content: "Pagamento confirmado", MessageType: domain.MessageTypeText},
		{ServiceID: data.service.ID, SenderID: data.storeUser.ID, Content: "Comprovante", MessageType: domain.MessageTypePaymentReceipt},
	}
	changed, err = repo.MarkPaidAndComplete(ctx, data.service.ID, again)
	require.NoError(t, err)
	assert.False(t, changed)

	var count int64
	require.NoError(t, db.Model(&domain.Message{}).Where("service_id = ?", data.service.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestServiceRepository_SetRatingCompletedDerivesBoth(t *testing.T) {
	db := newTestDB(t)
	data := seed(t, db)
	repo := NewServiceRepository(db)
	ctx := context.Background()

	svc, err := repo.SetRatingCompleted(ctx, data.service.ID, true)
	require.NoError(t, err)
	assert.True(t, svc.StoreRatingCompleted)
	assert.False(t, svc.BothRatingsCompleted)

	svc, err = repo.SetRatingCompleted(ctx, data.service.ID, false)
	require.NoError(t, err)
	assert.True(t, svc.AssemblerRatingCompleted)
	assert.True(t, svc.BothRatingsCompleted)
}

func TestServiceRepository_CompleteRequiresInProgress(t *testing.T) {
	db := newTestDB(t)
	data := seed(t, db)
	repo := NewServiceRepository(db)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Complete(ctx, data.service.ID), ErrConflict)

	require.NoError(t, db.Model(&domain.Service{}).Where("id = ?", data.service.ID).
		Update("status", domain.ServiceInProgress).Error)
	require.NoError(t, repo.Complete(ctx, data.service.ID))

	// A second completion races against nothing; the guard rejects it.
	assert.ErrorIs(t, repo.Complete(ctx, data.service.ID), ErrConflict)
}

func TestServiceRepository_DeleteCascadesWhenOpen(t *testing.T) {
	db := newTestDB(t)
	data := seed(t, db)
	serviceRepo := NewServiceRepository(db)
	appRepo := NewApplicationRepository(db)
	msgRepo := NewMessageRepository(db)
	ctx := context.Background()

	app := &domain.Application{ServiceID: data.service.ID, AssemblerID: data.assembler.ID, Status: domain.ApplicationPending}
	require.NoError(t, appRepo.Create(ctx, app))
	require.NoError(t, msgRepo.Create(ctx, &domain.Message{
		ServiceID: data.service.ID, SenderID: data.assemblerUser.ID, Content: "Olá", MessageType: domain.MessageTypeText,
	}))
	require.NoError(t, msgRepo.MarkRead(ctx, data.service.ID, data.storeUser.ID))

	require.NoError(t, serviceRepo.Delete(ctx, data.service.ID))

	_, err := serviceRepo.GetByID(ctx, data.service.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var msgs, apps, reads int64
	require.NoError(t, db.Model(&domain.Message{}).Where("service_id = ?", data.service.ID).Count(&msgs).Error)
	require.NoError(t, db.Model(&domain.Application{}).Where("service_id = ?", data.service.ID).Count(&apps).Error)
	require.NoError(t, db.Model(&domain.MessageRead{}).Count(&reads).Error)
	assert.Zero(t, msgs)
	assert.Zero(t, apps)
	assert.Zero(t, reads)
}

func TestServiceRepository_DeleteRefusedPastOpen(t *testing.T) {
	db := newTestDB(t)
	data := seed(t, db)
	repo := NewServiceRepository(db)
	ctx := context.Background()

	require.NoError(t, db.Model(&domain.Service{}).Where("id = ?", data.service.ID).
		Update("status", domain.ServiceInProgress).Error)

	assert.ErrorIs(t, repo.Delete(ctx, data.service.ID), ErrConflict)

	_, err := repo.GetByID(ctx, data.service.ID)
	assert.NoError(t, err)
}

func TestMessageRepository_UnreadCounts(t *testing.T) {
	db := newTestDB(t)
	data := seed(t, db)
	repo := NewMessageRepository(db)
	ctx := context.Background()

	appRepo := NewApplicationRepository(db)
	require.NoError(t, appRepo.Create(ctx, &domain.Application{
		ServiceID: data.service.ID, AssemblerID: data.assembler.ID, Status: domain.ApplicationAccepted,
	}))

	require.NoError(t, repo.Create(ctx, &domain.Message{
		ServiceID: data.service.ID, SenderID: data.assemblerUser.ID, Content: "Olá", MessageType: domain.MessageTypeText,
	}))
	require.NoError(t, repo.Create(ctx, &domain.Message{
		ServiceID: data.service.ID, SenderID: data.assemblerUser.ID, Content: "Posso quinta?", MessageType: domain.MessageTypeText,
	}))
	require.NoError(t, repo.Create(ctx, &domain.Message{
		ServiceID: data.service.ID, SenderID: data.storeUser.ID, Content: "Pode", MessageType: domain.MessageTypeText,
	}))

	count, err := repo.CountUnreadForService(ctx, data.service.ID, data.storeUser.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	total, err := repo.CountTotalUnread(ctx, data.assemblerUser.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	require.NoError(t, repo.MarkRead(ctx, data.service.ID, data.storeUser.ID))
	count, err = repo.CountUnreadForService(ctx, data.service.ID, data.storeUser.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Re-reading is idempotent.
	require.NoError(t, repo.MarkRead(ctx, data.service.ID, data.storeUser.ID))
}

func TestBankAccountRepository_UpsertReplaces(t *testing.T) {
	db := newTestDB(t)
	data := seed(t, db)
	repo := NewBankAccountRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &domain.BankAccount{
		UserID: data.storeUser.ID, BankName: "Banco A", PixKey: "chave-1", Document: "123",
	}))
	require.NoError(t, repo.Upsert(ctx, &domain.BankAccount{
		UserID: data.storeUser.ID, BankName: "Banco B", PixKey: "chave-2", Document: "456",
	}))

	account, err := repo.GetByUserID(ctx, data.storeUser.ID)
	require.NoError(t, err)
	assert.Equal(t, "Banco B", account.BankName)
	assert.Equal(t, "chave-2", account.PixKey)

	var count int64
	require.NoError(t, db.Model(&domain.BankAccount{}).Where("user_id = ?", data.storeUser.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegistrationRepository_CreatesUserAndProfileTogether(t *testing.T) {
	db := newTestDB(t)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	user := &domain.User{Email: "nova@example.com", Role: domain.RoleStoreOwner, Name: "Ana"}
	store := &domain.Store{Name: "Loja Nova"}
	require.NoError(t, repo.CreateStoreOwner(ctx, user, store))

	var got domain.Store
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&got).Error)
	assert.Equal(t, "Loja Nova", got.Name)
}

func TestRegistrationRepository_RollsBackUserOnProfileFailure(t *testing.T) {
	db := newTestDB(t)
	data := seed(t, db)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	// The profile insert collides with an existing primary key; the user
	// insert from the same transaction must not survive it, or every retry
	// for this email would fail the uniqueness pre-check forever.
	user := &domain.User{Email: "nova@example.com", Role: domain.RoleStoreOwner, Name: "Ana"}
	store := &domain.Store{ID: data.store.ID, Name: "Loja Nova"}
	require.Error(t, repo.CreateStoreOwner(ctx, user, store))

	var count int64
	require.NoError(t, db.Model(&domain.User{}).Where("email = ?", "nova@example.com").Count(&count).Error)
	assert.Zero(t, count)

	// A retry with a clean profile now goes through.
	retryUser := &domain.User{Email: "nova@example.com", Role: domain.RoleStoreOwner, Name: "Ana"}
	require.NoError(t, repo.CreateStoreOwner(ctx, retryUser, &domain.Store{Name: "Loja Nova"}))
}

func TestRegistrationRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	data := seed(t, db)
	repo := NewRegistrationRepository(db)
	ctx := context.Background()

	user := &domain.User{Email: data.assemblerUser.Email, Role: domain.RoleAssembler}
	err := repo.CreateAssembler(ctx, user, &domain.Assembler{})
	assert.ErrorIs(t, err, ErrDuplicate)

	var count int64
	require.NoError(t, db.Model(&domain.Assembler{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
