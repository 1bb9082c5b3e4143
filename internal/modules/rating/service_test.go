package rating

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"montafacil/internal/domain"
	"montafacil/internal/repository"
)

// Mock repositories

type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Create(ctx context.Context, rating *domain.Rating) error {
	args := m.Called(ctx, rating)
	if rating != nil {
		rating.ID = 401 // simulate DB insert
	}
	return args.Error(0)
}

func (m *MockRatingRepository) Exists(ctx context.Context, serviceID, fromUserID, toUserID int64) (bool, error) {
	args := m.Called(ctx, serviceID, fromUserID, toUserID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRatingRepository) ListByService(ctx context.Context, serviceID int64) ([]domain.Rating, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Rating), args.Error(1)
}

func (m *MockRatingRepository) MeanForUser(ctx context.Context, toUserID int64) (float64, int, error) {
	args := m.Called(ctx, toUserID)
	return args.Get(0).(float64), args.Int(1), args.Error(2)
}

type MockServiceRepository struct {
	mock.Mock
}

func (m *MockServiceRepository) GetByID(ctx context.Context, id int64) (*domain.Service, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

func (m *MockServiceRepository) SetRatingCompleted(ctx context.Context, id int64, byStore bool) (*domain.Service, error) {
	args := m.Called(ctx, id, byStore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Service), args.Error(1)
}

type MockStoreReader struct {
	mock.Mock
}

func (m *MockStoreReader) GetByID(ctx context.Context, id int64) (*domain.Store, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Store), args.Error(1)
}

type MockAssemblerReader struct {
	mock.Mock
}

func (m *MockAssemblerReader) GetByID(ctx context.Context, id int64) (*domain.Assembler, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assembler), args.Error(1)
}

func (m *MockAssemblerReader) GetByUserID(ctx context.Context, userID int64) (*domain.Assembler, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Assembler), args.Error(1)
}

func (m *MockAssemblerReader) UpdateCachedRating(ctx context.Context, assemblerID int64, mean float64, count int) error {
	args := m.Called(ctx, assemblerID, mean, count)
	return args.Error(0)
}

type MockApplicationReader struct {
	mock.Mock
}

func (m *MockApplicationReader) GetAccepted(ctx context.Context, serviceID int64) (*domain.Application, error) {
	args := m.Called(ctx, serviceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}

type MockNotificationSender struct {
	mock.Mock
}

func (m *MockNotificationSender) NotifyRatingReceived(ctx context.Context, rateeUserID, serviceID int64, score int) error {
	args := m.Called(ctx, rateeUserID, serviceID, score)
	return args.Error(0)
}

type fixture struct {
	ratings      *MockRatingRepository
	services     *MockServiceRepository
	stores       *MockStoreReader
	assemblers   *MockAssemblerReader
	applications *MockApplicationReader
	notifs       *MockNotificationSender
	svc          *Service
}

func newFixture() *fixture {
	f := &fixture{
		ratings:      new(MockRatingRepository),
		services:     new(MockServiceRepository),
		stores:       new(MockStoreReader),
		assemblers:   new(MockAssemblerReader),
		applications: new(MockApplicationReader),
		notifs:       new(MockNotificationSender),
	}
	f.svc = NewService(f.ratings, f.services, f.stores, f.assemblers, f.applications, f.notifs, nil)
	return f
}

func completedService() *domain.Service {
	return &domain.Service{
		ID:             101,
		StoreID:        10,
		Status:         domain.ServiceCompleted,
		RatingRequired: true,
	}
}

func acceptedApplication() *domain.Application {
	return &domain.Application{
		ID:          201,
		ServiceID:   101,
		AssemblerID: 20,
		Status:      domain.ApplicationAccepted,
		Assembler:   &domain.Assembler{ID: 20, UserID: 2},
	}
}

func TestSubmit_StoreRatesAssembler(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.services.On("GetByID", ctx, int64(101)).Return(completedService(), nil)
	f.stores.On("GetByID", ctx, int64(10)).Return(&domain.Store{ID: 10, UserID: 1}, nil)
	f.applications.On("GetAccepted", ctx, int64(101)).Return(acceptedApplication(), nil)
	f.ratings.On("Exists", ctx, int64(101), int64(1), int64(2)).Return(false, nil)
	f.ratings.On("Create", ctx, mock.MatchedBy(func(r *domain.Rating) bool {
		return r.FromUserID == 1 && r.ToUserID == 2 && r.Score == 5
	})).Return(nil)
	f.assemblers.On("GetByUserID", ctx, int64(2)).Return(&domain.Assembler{ID: 20, UserID: 2}, nil)
	f.ratings.On("MeanForUser", ctx, int64(2)).Return(4.5, 4, nil)
	f.assemblers.On("UpdateCachedRating", ctx, int64(20), 4.5, 4).Return(nil)
	f.services.On("SetRatingCompleted", ctx, int64(101), true).Return(&domain.Service{
		ID: 101, Status: domain.ServiceCompleted, StoreRatingCompleted: true,
	}, nil)
	f.notifs.On("NotifyRatingReceived", ctx, int64(2), int64(101), 5).Return(nil)

	result, err := f.svc.Submit(ctx, 1, 101, SubmitRequest{Score: 5, Comment: "Excelente trabalho"})

	assert.NoError(t, err)
	assert.True(t, result.Service.StoreRatingCompleted)
	assert.False(t, result.Service.BothRatingsCompleted)
	f.assemblers.AssertExpectations(t)
	f.notifs.AssertExpectations(t)
}

func TestSubmit_SecondDirectionCompletesBoth(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	svc := completedService()
	svc.StoreRatingCompleted = true

	f.services.On("GetByID", ctx, int64(101)).Return(svc, nil)
	f.stores.On("GetByID", ctx, int64(10)).Return(&domain.Store{ID: 10, UserID: 1}, nil)
	f.applications.On("GetAccepted", ctx, int64(101)).Return(acceptedApplication(), nil)
	f.ratings.On("Exists", ctx, int64(101), int64(2), int64(1)).Return(false, nil)
	f.ratings.On("Create", ctx, mock.AnythingOfType("*domain.Rating")).Return(nil)
	f.services.On("SetRatingCompleted", ctx, int64(101), false).Return(&domain.Service{
		ID:                       101,
		Status:                   domain.ServiceCompleted,
		StoreRatingCompleted:     true,
		AssemblerRatingCompleted: true,
		BothRatingsCompleted:     true,
	}, nil)
	f.notifs.On("NotifyRatingReceived", ctx, int64(1), int64(101), 4).Return(nil)

	result, err := f.svc.Submit(ctx, 2, 101, SubmitRequest{Score: 4})

	assert.NoError(t, err)
	assert.True(t, result.Service.BothRatingsCompleted)
	// The assembler rating the store does not touch the cached score.
	f.assemblers.AssertNotCalled(t, "UpdateCachedRating", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_DuplicateRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.services.On("GetByID", ctx, int64(101)).Return(completedService(), nil)
	f.stores.On("GetByID", ctx, int64(10)).Return(&domain.Store{ID: 10, UserID: 1}, nil)
	f.applications.On("GetAccepted", ctx, int64(101)).Return(acceptedApplication(), nil)
	f.ratings.On("Exists", ctx, int64(101), int64(1), int64(2)).Return(true, nil)

	_, err := f.svc.Submit(ctx, 1, 101, SubmitRequest{Score: 3})

	assert.ErrorIs(t, err, ErrAlreadyRated)
	f.ratings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_DuplicateRace_ConstraintBackstop(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.services.On("GetByID", ctx, int64(101)).Return(completedService(), nil)
	f.stores.On("GetByID", ctx, int64(10)).Return(&domain.Store{ID: 10, UserID: 1}, nil)
	f.applications.On("GetAccepted", ctx, int64(101)).Return(acceptedApplication(), nil)
	f.ratings.On("Exists", ctx, int64(101), int64(1), int64(2)).Return(false, nil)
	f.ratings.On("Create", ctx, mock.AnythingOfType("*domain.Rating")).Return(repository.ErrDuplicate)

	_, err := f.svc.Submit(ctx, 1, 101, SubmitRequest{Score: 3})

	assert.ErrorIs(t, err, ErrAlreadyRated)
	f.services.AssertNotCalled(t, "SetRatingCompleted", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_ServiceNotCompleted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.services.On("GetByID", ctx, int64(101)).Return(&domain.Service{
		ID: 101, StoreID: 10, Status: domain.ServiceInProgress,
	}, nil)

	_, err := f.svc.Submit(ctx, 1, 101, SubmitRequest{Score: 5})

	assert.ErrorIs(t, err, ErrNotCompleted)
}

func TestSubmit_ScoreOutOfRange(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Submit(context.Background(), 1, 101, SubmitRequest{Score: 6})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.Submit(context.Background(), 1, 101, SubmitRequest{Score: 0})
	assert.ErrorIs(t, err, ErrValidation)

	bad := 7
	_, err = f.svc.Submit(context.Background(), 1, 101, SubmitRequest{Score: 4, Quality: &bad})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubmit_OutsiderRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.services.On("GetByID", ctx, int64(101)).Return(completedService(), nil)
	f.stores.On("GetByID", ctx, int64(10)).Return(&domain.Store{ID: 10, UserID: 1}, nil)
	f.applications.On("GetAccepted", ctx, int64(101)).Return(acceptedApplication(), nil)

	_, err := f.svc.Submit(ctx, 9, 101, SubmitRequest{Score: 5})

	assert.ErrorIs(t, err, ErrForbidden)
}
